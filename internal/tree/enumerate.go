package tree

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/drivesweep/drivesweep/internal/logging"
	"github.com/drivesweep/drivesweep/internal/metrics"
	"github.com/drivesweep/drivesweep/internal/remote"
)

// Result is one enumeration of a root object.
//
// Root is fetched separately and is not part of Items, except when the root
// is not a folder: then Items holds exactly the root itself.
// TotalSizeBytes is the sum of SizeBytes over all non-folder items.
type Result struct {
	Root           *Item
	Items          []*Item
	TotalSizeBytes int64
}

// Enumerator walks remote folder trees. Listing and shortcut-resolution
// calls across all branches share one semaphore, so at most `concurrency`
// remote calls are in flight regardless of tree shape.
type Enumerator struct {
	client remote.Client
	sem    chan struct{}
	log    *zap.Logger
}

// NewEnumerator creates an Enumerator issuing at most concurrency
// simultaneous remote calls. concurrency < 1 is treated as 1, which
// reproduces strictly sequential depth-first enumeration.
func NewEnumerator(client remote.Client, concurrency int) *Enumerator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enumerator{
		client: client,
		sem:    make(chan struct{}, concurrency),
		log:    logging.L(),
	}
}

// Enumerate walks the tree under rootID.
//
// A failing or unresolvable root is a structural error. Listing failures on
// sub-folders are warnings: the branch is simply absent from the result.
// Items appear in depth-first provider order — each child is followed by its
// subtree — and the order is stable regardless of which branches finished
// first.
func (e *Enumerator) Enumerate(ctx context.Context, rootID string) (*Result, error) {
	start := time.Now()

	obj, err := e.client.GetMetadata(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("fetch root %s: %w", rootID, err)
	}
	root, err := BuildItem(ctx, e.client, obj, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", rootID, err)
	}

	res := &Result{Root: root}
	if !root.IsFolder() {
		res.Items = []*Item{root}
		res.TotalSizeBytes = root.SizeBytes
	} else {
		top := &node{}
		var wg sync.WaitGroup
		wg.Add(1)
		go e.walkFolder(ctx, walkJob{
			folderID: root.FolderID(),
			path:     root.Path,
			anc:      &ancestry{id: root.FolderID()},
			node:     top,
		}, &wg)
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Items, res.TotalSizeBytes = flatten(top)
	}

	metrics.RecordEnumeration(len(res.Items), time.Since(start))
	return res, nil
}

// node is one folder's slot in the in-progress result tree. Children are
// recorded in page order while subtrees fill in concurrently; flattening
// after the walk yields the deterministic depth-first item sequence.
type node struct {
	children []*entry
}

type entry struct {
	item *Item
	sub  *node // non-nil when the walk descended into this child
}

type walkJob struct {
	folderID string
	path     []string
	anc      *ancestry
	node     *node
}

// ancestry is the chain of folder ids from the root to the current job.
// It guards against shortcut loops back into the current branch.
type ancestry struct {
	id     string
	parent *ancestry
}

func (a *ancestry) contains(id string) bool {
	for ; a != nil; a = a.parent {
		if a.id == id {
			return true
		}
	}
	return false
}

// walkFolder lists one folder, builds its items, and fans out one job per
// sub-folder. The semaphore is held only while remote calls are issued, so
// waiting on children never pins a slot.
func (e *Enumerator) walkFolder(ctx context.Context, job walkJob, wg *sync.WaitGroup) {
	defer wg.Done()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}

	pageToken := ""
	for {
		page, err := e.client.ListChildren(ctx, job.folderID, pageToken)
		if err != nil {
			e.log.Warn("could not access folder, skipping branch",
				zap.String("folder_id", job.folderID),
				zap.Strings("path", job.path),
				zap.Error(err))
			break
		}

		for i := range page.Objects {
			obj := &page.Objects[i]
			item, err := BuildItem(ctx, e.client, obj, job.path)
			if err != nil {
				if errors.Is(err, ErrMissingTarget) {
					e.log.Warn("skipping unresolvable shortcut",
						zap.String("id", obj.ID),
						zap.String("name", obj.Name),
						zap.Error(err))
					continue
				}
				e.log.Warn("skipping item", zap.String("id", obj.ID), zap.Error(err))
				continue
			}
			job.node.children = append(job.node.children, &entry{item: item})
		}

		if pageToken = page.NextPageToken; pageToken == "" {
			break
		}
	}
	<-e.sem

	for _, ent := range job.node.children {
		if !ent.item.IsFolder() {
			continue
		}
		folderID := ent.item.FolderID()
		if job.anc.contains(folderID) {
			e.log.Warn("folder already on ancestry path, not descending",
				zap.String("folder_id", folderID),
				zap.Strings("path", ent.item.Path))
			continue
		}
		ent.sub = &node{}
		wg.Add(1)
		go e.walkFolder(ctx, walkJob{
			folderID: folderID,
			path:     ent.item.Path,
			anc:      &ancestry{id: folderID, parent: job.anc},
			node:     ent.sub,
		}, wg)
	}
}

// flatten turns the node tree into the final item sequence and reduces the
// per-file sizes into the aggregate total.
func flatten(n *node) ([]*Item, int64) {
	var items []*Item
	var total int64
	for _, ent := range n.children {
		items = append(items, ent.item)
		if !ent.item.IsFolder() {
			total += ent.item.SizeBytes
		}
		if ent.sub != nil {
			sub, size := flatten(ent.sub)
			items = append(items, sub...)
			total += size
		}
	}
	return items, total
}
