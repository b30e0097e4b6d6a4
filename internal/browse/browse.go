// Package browse provides the explorer-style view of a single folder:
// a fully paginated, shortcut-resolved child listing in display order.
package browse

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/drivesweep/drivesweep/internal/logging"
	"github.com/drivesweep/drivesweep/internal/remote"
	"github.com/drivesweep/drivesweep/internal/tree"
)

// List returns the direct children of folderID sorted for display:
// folders before files, the caller's own items before shared ones, then
// case-insensitive name order. Unresolvable shortcuts are skipped with a
// warning, like everywhere else in the engine.
func List(ctx context.Context, client remote.Client, folderID, callerEmail string) ([]*tree.Item, error) {
	var items []*tree.Item
	pageToken := ""
	for {
		page, err := client.ListChildren(ctx, folderID, pageToken)
		if err != nil {
			return nil, fmt.Errorf("list folder %s: %w", folderID, err)
		}
		for i := range page.Objects {
			item, err := tree.BuildItem(ctx, client, &page.Objects[i], nil)
			if err != nil {
				if errors.Is(err, tree.ErrMissingTarget) {
					logging.Warn("skipping unresolvable shortcut",
						zap.String("id", page.Objects[i].ID), zap.Error(err))
					continue
				}
				return nil, err
			}
			items = append(items, item)
		}
		if pageToken = page.NextPageToken; pageToken == "" {
			break
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		aOwned := callerEmail != "" && a.OwnerEmail == callerEmail
		bOwned := callerEmail != "" && b.OwnerEmail == callerEmail
		if aOwned != bOwned {
			return aOwned
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return items, nil
}

// About reports the account's identity and storage usage, when the
// provider supports it.
func About(ctx context.Context, client remote.Client) (*remote.AccountInfo, error) {
	p, ok := client.(remote.AccountInfoProvider)
	if !ok {
		return nil, remote.ErrNotSupported
	}
	return p.About(ctx)
}
