// Package batch applies resolved action sets against a remote storage
// client with per-item failure isolation.
package batch

import (
	"fmt"
	"time"
)

// Statuses every log entry resolves to. Error statuses embed the remote
// reason and are produced through the status*Error helpers.
const (
	StatusDeleted        = "Deleted"
	StatusRenamed        = "Renamed"
	StatusCopied         = "Copied to Drive"
	StatusSkipped        = "Skipped"
	StatusCopyRestricted = "Skipped (Copy restricted)"
)

func statusDeleteError(err error) string {
	return fmt.Sprintf("Error Deleting: %v", err)
}

func statusRenameError(err error) string {
	return fmt.Sprintf("Error Renaming: %v", err)
}

func statusCopyError(err error) string {
	return fmt.Sprintf("Error Copying: %v", err)
}

// LogEntry records the outcome of one batch item.
//
// Path is the item's materialized source path as recorded at enumeration
// time — a successful rename does not rewrite it. DestPath is set only for
// successful copies.
type LogEntry struct {
	Status     string
	Name       string
	NewName    string
	Path       string
	DestPath   string
	SizeBytes  int64
	Link       string
	Owner      string
	ModifiedAt time.Time
	Type       string
}

// IsSuccess reports whether status belongs to the success log. The success
// set is exactly {Deleted, Renamed, Copied to Drive}; every skip and error
// variant is a skip-log entry.
func IsSuccess(status string) bool {
	switch status {
	case StatusDeleted, StatusRenamed, StatusCopied:
		return true
	}
	return false
}

// Partition splits entries into the success log and the skip log,
// preserving relative order.
func Partition(entries []LogEntry) (success, skipped []LogEntry) {
	for _, e := range entries {
		if IsSuccess(e.Status) {
			success = append(success, e)
		} else {
			skipped = append(skipped, e)
		}
	}
	return success, skipped
}
