package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drivesweep/drivesweep/internal/batch"
	"github.com/drivesweep/drivesweep/internal/clean"
	"github.com/drivesweep/drivesweep/internal/tree"
)

var (
	cleanRemove        string
	cleanSuffix        string
	cleanDest          string
	cleanNewFolderName string
	cleanDryRun        bool
	cleanYes           bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <root-folder-id>",
	Short: "Strip naming tags and promotional junk from a folder tree",
	Long: `Enumerate the tree under the given root, then either rename clean
items and delete promotional ones in place (when the account may edit the
tree directly) or copy the clean items into a destination folder.

Without --remove the tag to strip is taken from the longest common prefix
of the enumerated names.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stderr, "Enumerating...")
		res, err := tree.NewEnumerator(client, cfg.Concurrency).Enumerate(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Found %d items under %q.\n", len(res.Items), res.Root.Name)

		analysis := clean.Analyze(res.Items, cfg.PromoKeywords)
		remove := cleanRemove
		if !cmd.Flags().Changed("remove") && analysis.SuggestedTag != "" {
			remove = analysis.SuggestedTag
			fmt.Fprintf(os.Stderr, "Removing detected tag %q.\n", remove)
		}
		transform := clean.NameTransform{Remove: remove, Suffix: cleanSuffix}

		mode := clean.ModeForRoot(res.Root)
		if mode == clean.ModeCopy && cleanDest == "" {
			return fmt.Errorf("root %q is not directly editable; pass --dest to copy instead", res.Root.Name)
		}
		items := clean.Classify(res.Items, mode, analysis, transform)

		if cleanDryRun {
			printPlan(items, mode)
			return nil
		}
		if !cleanYes && !confirm(fmt.Sprintf("Run %s batch over %d items?", mode, len(items))) {
			return fmt.Errorf("aborted")
		}

		out, err := runBatch(ctx, client, batch.Request{
			Root:                res.Root,
			Items:               items,
			Mode:                mode,
			DestinationFolderID: cleanDest,
			NewFolderName:       cleanNewFolderName,
		})
		if err != nil {
			return err
		}
		printOutcome(out)
		return nil
	},
}

func printPlan(items []clean.ActionedItem, mode clean.Mode) {
	fmt.Printf("Mode: %s\n", mode)
	for _, it := range items {
		line := fmt.Sprintf("%-8s %s", it.Action, it.PathString())
		if it.Action == clean.ActionRename || it.Action == clean.ActionCopy {
			if it.NewName != it.Name {
				line += fmt.Sprintf(" -> %s", it.NewName)
			}
		}
		fmt.Println(line)
	}
}

func printOutcome(out *batch.Outcome) {
	if len(out.SuccessLog) > 0 {
		fmt.Printf("\nProcessed (%d):\n", len(out.SuccessLog))
		for _, e := range out.SuccessLog {
			printEntry(e)
		}
	}
	if len(out.SkipLog) > 0 {
		fmt.Printf("\nSkipped (%d):\n", len(out.SkipLog))
		for _, e := range out.SkipLog {
			printEntry(e)
		}
	}
	fmt.Println()
	fmt.Println(out.Summary)
}

func printEntry(e batch.LogEntry) {
	line := fmt.Sprintf("  %-28s %s", e.Status, e.Path)
	if e.NewName != "" && e.NewName != e.Name {
		line += fmt.Sprintf(" -> %s", e.NewName)
	}
	if e.DestPath != "" {
		line += fmt.Sprintf(" => %s", e.DestPath)
	}
	fmt.Println(line)
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&cleanRemove, "remove", "",
		"substring to strip from names (default: detected common prefix)")
	cleanCmd.Flags().StringVar(&cleanSuffix, "suffix", "",
		"suffix to insert before the file extension")
	cleanCmd.Flags().StringVar(&cleanDest, "dest", "",
		"destination folder id for copy mode")
	cleanCmd.Flags().StringVar(&cleanNewFolderName, "new-folder-name", "",
		"name of the created destination folder (default: root's name)")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false,
		"print the planned actions without executing")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false,
		"skip the confirmation prompt")
}
