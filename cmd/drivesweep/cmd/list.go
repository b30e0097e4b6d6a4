package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/drivesweep/drivesweep/internal/browse"
	"github.com/drivesweep/drivesweep/internal/tree"
)

var listRecursive bool

var listCmd = &cobra.Command{
	Use:   "list <folder-id>",
	Short: "List the contents of a remote folder",
	Long: `List the direct children of a folder, folders first and the
account's own items before shared ones. With --recursive the whole tree
is enumerated instead and every item is printed with its full path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		if listRecursive {
			res, err := tree.NewEnumerator(client, cfg.Concurrency).Enumerate(ctx, args[0])
			if err != nil {
				return err
			}
			for _, it := range res.Items {
				printItem(it, it.PathString())
			}
			fmt.Printf("\n%d items, %s total\n",
				len(res.Items), humanize.IBytes(uint64(res.TotalSizeBytes)))
			return nil
		}

		callerEmail := ""
		if info, err := browse.About(ctx, client); err == nil {
			callerEmail = info.UserEmail
		}
		items, err := browse.List(ctx, client, args[0], callerEmail)
		if err != nil {
			return err
		}
		for _, it := range items {
			printItem(it, it.Name)
		}
		return nil
	},
}

func printItem(it *tree.Item, name string) {
	size := ""
	if !it.IsFolder() {
		size = humanize.IBytes(uint64(it.SizeBytes))
	}
	fmt.Printf("%-8s %10s  %s\n", it.TypeLabel(), size, name)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listRecursive, "recursive", "r", false,
		"enumerate the full tree")
}
