package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drivesweep/drivesweep/internal/batch"
	"github.com/drivesweep/drivesweep/internal/clean"
	"github.com/drivesweep/drivesweep/internal/tree"
)

var (
	copyDest          string
	copyNewFolderName string
	copyRemove        string
	copySuffix        string
	copyYes           bool
)

var copyCmd = &cobra.Command{
	Use:   "copy <root-folder-id>",
	Short: "Copy a folder tree's files into a destination folder",
	Long: `Enumerate the tree under the given root and copy every file into a
newly created folder under --dest, regardless of whether the root would
allow direct edits. Folder structure is not preserved; all files land
directly in the destination folder.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), "Enumerating...")
		res, err := tree.NewEnumerator(client, cfg.Concurrency).Enumerate(ctx, args[0])
		if err != nil {
			return err
		}

		analysis := clean.Analyze(res.Items, cfg.PromoKeywords)
		transform := clean.NameTransform{Remove: copyRemove, Suffix: copySuffix}
		items := clean.Classify(res.Items, clean.ModeCopy, analysis, transform)

		if !copyYes && !confirm(fmt.Sprintf("Copy %d items into a new folder under %s?", len(items), copyDest)) {
			return fmt.Errorf("aborted")
		}

		out, err := runBatch(ctx, client, batch.Request{
			Root:                res.Root,
			Items:               items,
			Mode:                clean.ModeCopy,
			DestinationFolderID: copyDest,
			NewFolderName:       copyNewFolderName,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created folder %q (%s).\n", out.DestFolderName, out.CreatedFolderID)
		printOutcome(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
	copyCmd.Flags().StringVar(&copyDest, "dest", "",
		"parent folder id the new folder is created under")
	copyCmd.Flags().StringVar(&copyNewFolderName, "new-folder-name", "",
		"name of the created folder (default: root's name)")
	copyCmd.Flags().StringVar(&copyRemove, "remove", "",
		"substring to strip from copied names")
	copyCmd.Flags().StringVar(&copySuffix, "suffix", "",
		"suffix to insert before the file extension")
	copyCmd.Flags().BoolVarP(&copyYes, "yes", "y", false,
		"skip the confirmation prompt")
	_ = copyCmd.MarkFlagRequired("dest")
}
