package batch

import (
	"context"
	"fmt"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/drivesweep/drivesweep/internal/clean"
	"github.com/drivesweep/drivesweep/internal/logging"
	"github.com/drivesweep/drivesweep/internal/metrics"
	"github.com/drivesweep/drivesweep/internal/remote"
	"github.com/drivesweep/drivesweep/internal/tree"
)

// Request is one batch to execute.
type Request struct {
	// Root is the enumerated root the batch was built from; copy mode
	// falls back to its name when NewFolderName is empty.
	Root *tree.Item

	// Items is the resolved action set, in input order. When no item is
	// selected the whole set is treated as selected.
	Items []clean.ActionedItem

	Mode clean.Mode

	// DestinationFolderID is the parent the destination folder is created
	// under (copy mode only).
	DestinationFolderID string

	// NewFolderName overrides the destination folder's name.
	NewFolderName string
}

// Summary is the advisory throughput report for one batch.
type Summary struct {
	Duration    time.Duration
	BytesCopied int64
	Processed   int
}

func (s Summary) String() string {
	if s.BytesCopied > 0 && s.Duration > 0 {
		rate := float64(s.BytesCopied) / s.Duration.Seconds()
		return fmt.Sprintf("Processed %d items in %.2fs. Copied %s at %s/s.",
			s.Processed, s.Duration.Seconds(),
			humanize.IBytes(uint64(s.BytesCopied)), humanize.IBytes(uint64(rate)))
	}
	return fmt.Sprintf("Processed %d items in %.2fs.", s.Processed, s.Duration.Seconds())
}

// Outcome is the result of one batch: two logs (both possibly empty), the
// destination folder created in copy mode, and the throughput summary.
type Outcome struct {
	SuccessLog      []LogEntry
	SkipLog         []LogEntry
	CreatedFolderID string
	DestFolderName  string
	Summary         Summary
}

// Executor applies action sets against the remote client with a bounded
// worker pool. Item failures never abort the batch or cancel sibling work;
// each failure is attributed to its own log entry.
type Executor struct {
	client      remote.Client
	concurrency int
	progress    *Broadcaster
	log         *zap.Logger
}

// NewExecutor creates an Executor running at most concurrency remote calls
// at once. concurrency < 1 is treated as 1, the strictly sequential
// reference behavior.
func NewExecutor(client remote.Client, concurrency int) *Executor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Executor{
		client:      client,
		concurrency: concurrency,
		progress:    NewBroadcaster(),
		log:         logging.L(),
	}
}

// Progress returns the executor's progress broadcaster.
func (x *Executor) Progress() *Broadcaster {
	return x.progress
}

// Execute runs the batch.
//
// Batch preconditions — the select-nothing-selects-everything rule and the
// one-time destination folder creation — are resolved before any item work
// is dispatched. Destination folder creation failure is the one fatal
// error: without a destination no copy is valid. Everything after that is
// per-item: log entries are written into per-index slots keyed by input
// position, so the partitioned logs come out in input order regardless of
// completion order. Cancellation is honored between items, never mid-call.
func (x *Executor) Execute(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	selected := selectItems(req.Items)

	out := &Outcome{}
	destID := req.DestinationFolderID
	destName := ""
	if req.Mode == clean.ModeCopy {
		destName = req.NewFolderName
		if destName == "" && req.Root != nil {
			destName = req.Root.Name
		}
		folder, err := x.client.Create(ctx, destID, destName, true)
		if err != nil {
			return nil, fmt.Errorf("create destination folder %q: %w", destName, err)
		}
		destID = folder.ID
		out.CreatedFolderID = folder.ID
		out.DestFolderName = destName
		x.log.Info("created destination folder",
			zap.String("name", destName), zap.String("id", folder.ID))
	}

	entries := make([]LogEntry, len(selected))
	for i := range selected {
		entries[i] = baseEntry(&selected[i])
	}

	var bytesCopied, done atomic.Int64
	indices := make(chan int)
	var wg sync.WaitGroup
	workers := x.concurrency
	if workers > len(selected) {
		workers = len(selected)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				entry, copied := x.processItem(ctx, &selected[i], req.Mode, destID, destName)
				entries[i] = entry
				bytesCopied.Add(copied)
				outcome := "skipped"
				if IsSuccess(entry.Status) {
					outcome = "success"
				}
				metrics.RecordBatchItem(outcome)
				x.progress.Publish(Event{
					Done:   int(done.Add(1)),
					Total:  len(selected),
					Name:   entry.Name,
					Status: entry.Status,
				})
			}
		}()
	}

	for i := range selected {
		if ctx.Err() != nil {
			// Remaining items keep their Skipped base entries.
			break
		}
		indices <- i
	}
	close(indices)
	wg.Wait()

	out.SuccessLog, out.SkipLog = Partition(entries)
	out.Summary = Summary{
		Duration:    time.Since(start),
		BytesCopied: bytesCopied.Load(),
		Processed:   len(selected),
	}
	metrics.RecordBatch(out.Summary.BytesCopied, out.Summary.Duration)
	return out, nil
}

// selectItems applies the selection rule: an explicit selection narrows the
// batch; no selection at all means the entire batch is selected.
func selectItems(items []clean.ActionedItem) []clean.ActionedItem {
	any := false
	for i := range items {
		if items[i].Selected {
			any = true
			break
		}
	}
	if !any {
		return items
	}
	out := make([]clean.ActionedItem, 0, len(items))
	for i := range items {
		if items[i].Selected {
			out = append(out, items[i])
		}
	}
	return out
}

func baseEntry(it *clean.ActionedItem) LogEntry {
	return LogEntry{
		Status:     StatusSkipped,
		Name:       it.Name,
		NewName:    it.NewName,
		Path:       it.PathString(),
		SizeBytes:  it.SizeBytes,
		Link:       it.Link,
		Owner:      it.OwnerName,
		ModifiedAt: it.ModifiedAt,
		Type:       it.TypeLabel(),
	}
}

// processItem attempts one terminal action and returns the resulting log
// entry plus the number of bytes copied.
func (x *Executor) processItem(ctx context.Context, it *clean.ActionedItem, mode clean.Mode, destID, destName string) (LogEntry, int64) {
	entry := baseEntry(it)

	if mode == clean.ModeDirect {
		switch {
		case it.Action == clean.ActionDelete:
			if err := x.client.Delete(ctx, it.ID); err != nil {
				entry.Status = statusDeleteError(err)
			} else {
				entry.Status = StatusDeleted
				entry.NewName = ""
				entry.SizeBytes = 0
			}
		case it.Action == clean.ActionRename && it.NewName != it.Name:
			obj, err := x.client.Rename(ctx, it.ID, it.NewName)
			if err != nil {
				entry.Status = statusRenameError(err)
			} else {
				// Path stays the pre-rename path: the entry reports where
				// the item was, not where it would be under the new name.
				entry.Status = StatusRenamed
				entry.Link = obj.Link
				entry.SizeBytes = obj.SizeBytes
			}
		}
		// Keep, and renames whose new name matches the current one, fall
		// through as logged Skipped entries rather than vanishing.
		return entry, 0
	}

	if it.Action != clean.ActionCopy {
		return entry, 0
	}
	if !it.Capabilities.CanCopy {
		entry.Status = StatusCopyRestricted
		return entry, 0
	}
	obj, err := x.client.Copy(ctx, it.ID, it.NewName, destID)
	if err != nil {
		entry.Status = statusCopyError(err)
		return entry, 0
	}
	entry.Status = StatusCopied
	entry.NewName = obj.Name
	// Copies flatten: everything lands directly under the destination
	// folder no matter how deep the source was.
	entry.DestPath = path.Join(destName, it.Basename())
	entry.SizeBytes = obj.SizeBytes
	entry.Link = obj.Link
	if obj.OwnerName != "" {
		entry.Owner = obj.OwnerName
	}
	return entry, obj.SizeBytes
}
