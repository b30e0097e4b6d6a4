package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/drivesweep/drivesweep/internal/browse"
	"github.com/drivesweep/drivesweep/internal/remote"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show the account's identity and storage usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}
		info, err := browse.About(ctx, client)
		if err != nil {
			if errors.Is(err, remote.ErrNotSupported) {
				return fmt.Errorf("provider %s does not report account info", cfg.Provider)
			}
			return err
		}

		fmt.Printf("User:  %s <%s>\n", info.UserName, info.UserEmail)
		if info.LimitBytes > 0 {
			fmt.Printf("Usage: %s of %s\n",
				humanize.IBytes(uint64(info.UsageBytes)), humanize.IBytes(uint64(info.LimitBytes)))
		} else {
			fmt.Printf("Usage: %s (no fixed limit)\n", humanize.IBytes(uint64(info.UsageBytes)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}
