package clean

import (
	"path"
	"strings"

	"github.com/drivesweep/drivesweep/internal/tree"
)

// Action is one terminal decision for an item in a batch.
type Action string

const (
	ActionRename  Action = "Rename"
	ActionDelete  Action = "Delete"
	ActionKeep    Action = "Keep"
	ActionCopy    Action = "Copy"
	ActionExclude Action = "Exclude"
)

// Mode is the action vocabulary for a whole batch. It is derived once from
// the root object's capabilities and never re-evaluated per item: direct
// mutation needs ownership-level rights, which one root grants uniformly.
type Mode int

const (
	// ModeDirect mutates the original objects in place (Rename/Delete/Keep).
	ModeDirect Mode = iota
	// ModeCopy copies into a destination instead (Copy/Exclude).
	ModeCopy
)

func (m Mode) String() string {
	if m == ModeDirect {
		return "direct-edit"
	}
	return "copy"
}

// ModeForRoot derives the batch mode from the root's capability flags.
func ModeForRoot(root *tree.Item) Mode {
	if root.Capabilities.CanDelete && root.Capabilities.CanRename {
		return ModeDirect
	}
	return ModeCopy
}

// Actions returns the valid action vocabulary for the mode.
func (m Mode) Actions() []Action {
	if m == ModeDirect {
		return []Action{ActionRename, ActionDelete, ActionKeep}
	}
	return []Action{ActionCopy, ActionExclude}
}

// NameTransform rewrites item names: first the literal Remove substring is
// stripped, then Suffix is inserted before the file extension. Either part
// is a no-op when empty.
type NameTransform struct {
	Remove string
	Suffix string
}

// Apply rewrites name according to the transform.
func (t NameTransform) Apply(name string) string {
	out := name
	if t.Remove != "" {
		out = strings.TrimSpace(strings.ReplaceAll(out, t.Remove, ""))
	}
	if t.Suffix != "" {
		ext := path.Ext(out)
		out = strings.TrimSuffix(out, ext) + " " + t.Suffix + ext
	}
	return out
}

// ActionedItem is an enumerated item plus the batch decision attached to
// it. Selected and Action stay mutable (caller overrides) until the
// executor consumes the set.
type ActionedItem struct {
	*tree.Item
	Selected bool
	NewName  string
	Action   Action
}

// Classify assigns each item its default action for the given mode.
//
// Direct-edit mode defaults to Delete for analyzer-flagged names and Rename
// otherwise; copy mode defaults to Exclude for flagged names and Copy
// otherwise. NewName is seeded with the transform applied to the current
// name.
func Classify(items []*tree.Item, mode Mode, analysis Analysis, transform NameTransform) []ActionedItem {
	out := make([]ActionedItem, 0, len(items))
	for _, it := range items {
		a := ActionedItem{
			Item:    it,
			NewName: transform.Apply(it.Name),
		}
		flagged := analysis.Excluded(it.Name)
		if mode == ModeDirect {
			if flagged {
				a.Action = ActionDelete
			} else {
				a.Action = ActionRename
			}
		} else {
			if flagged {
				a.Action = ActionExclude
			} else {
				a.Action = ActionCopy
			}
		}
		out = append(out, a)
	}
	return out
}
