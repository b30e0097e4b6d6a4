// Package tree builds typed items from raw remote records and enumerates
// folder trees through the remote.Client contract.
package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/drivesweep/drivesweep/internal/remote"
)

// ErrMissingTarget is returned by BuildItem for a shortcut without a target
// id or whose target cannot be fetched. Callers treat it as non-fatal: the
// shortcut is skipped and enumeration continues.
var ErrMissingTarget = errors.New("tree: shortcut target unavailable")

// Capabilities are the resolved permission flags for one item. Defaults for
// flags the provider did not report are asymmetric on purpose: copying is
// assumed allowed, direct edits (rename/delete) are assumed forbidden.
type Capabilities struct {
	CanCopy   bool
	CanRename bool
	CanDelete bool
}

// resolveCapabilities applies the default rules to a raw capability payload.
func resolveCapabilities(c remote.Capabilities) Capabilities {
	out := Capabilities{CanCopy: true}
	if c.CanCopy != nil {
		out.CanCopy = *c.CanCopy
	}
	if c.CanRename != nil {
		out.CanRename = *c.CanRename
	}
	if c.CanDelete != nil {
		out.CanDelete = *c.CanDelete
	}
	return out
}

// Item is one enumerated remote object with its materialized path.
//
// For shortcuts, ID, Name and Path always describe the shortcut object
// itself, while EffectiveKind, owner and capabilities come from the target.
// Path is fixed at enumeration time; later renames never rewrite it.
type Item struct {
	ID            string
	Name          string
	Kind          remote.Kind // raw kind as listed
	EffectiveKind remote.Kind // target's kind for shortcuts, else == Kind
	TargetID      string
	SizeBytes     int64
	OwnerEmail    string
	OwnerName     string
	ModifiedAt    time.Time
	Link          string
	Capabilities  Capabilities
	Path          []string
}

// IsFolder reports whether the item behaves as a folder, following
// shortcuts.
func (it *Item) IsFolder() bool {
	return it.EffectiveKind == remote.KindFolder
}

// FolderID returns the id to list children under: the target for a folder
// shortcut, the item's own id otherwise.
func (it *Item) FolderID() string {
	if it.Kind == remote.KindShortcut {
		return it.TargetID
	}
	return it.ID
}

// PathString renders the materialized path with "/" separators.
func (it *Item) PathString() string {
	return strings.Join(it.Path, "/")
}

// Basename returns the last path segment.
func (it *Item) Basename() string {
	if len(it.Path) == 0 {
		return it.Name
	}
	return it.Path[len(it.Path)-1]
}

// TypeLabel returns "Folder" or "File" for display and logs.
func (it *Item) TypeLabel() string {
	if it.IsFolder() {
		return "Folder"
	}
	return "File"
}

// BuildItem normalizes one raw record into an Item with
// path = parentPath + [name]. Shortcuts cost one extra GetMetadata to
// resolve the target's kind, owner and capabilities; an unresolvable
// shortcut yields ErrMissingTarget.
func BuildItem(ctx context.Context, client remote.Client, obj *remote.Object, parentPath []string) (*Item, error) {
	path := make([]string, 0, len(parentPath)+1)
	path = append(path, parentPath...)
	path = append(path, obj.Name)

	it := &Item{
		ID:            obj.ID,
		Name:          obj.Name,
		Kind:          obj.Kind,
		EffectiveKind: obj.Kind,
		TargetID:      obj.TargetID,
		SizeBytes:     obj.SizeBytes,
		OwnerEmail:    obj.OwnerEmail,
		OwnerName:     obj.OwnerName,
		ModifiedAt:    obj.ModifiedAt,
		Link:          obj.Link,
		Capabilities:  resolveCapabilities(obj.Capabilities),
		Path:          path,
	}

	if obj.Kind != remote.KindShortcut {
		return it, nil
	}

	if obj.TargetID == "" {
		return nil, fmt.Errorf("%w: %s has no target id", ErrMissingTarget, obj.ID)
	}
	target, err := client.GetMetadata(ctx, obj.TargetID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching target of %s: %v", ErrMissingTarget, obj.ID, err)
	}

	it.EffectiveKind = target.Kind
	it.SizeBytes = target.SizeBytes
	it.OwnerEmail = target.OwnerEmail
	it.OwnerName = target.OwnerName
	it.Capabilities = resolveCapabilities(target.Capabilities)
	return it, nil
}
