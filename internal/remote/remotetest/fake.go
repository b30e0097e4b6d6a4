// Package remotetest provides an in-memory remote.Client for engine tests.
package remotetest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/drivesweep/drivesweep/internal/remote"
)

// RootID is the id of the pre-created root folder.
const RootID = "root"

// Fake is an in-memory remote.Client. Children keep insertion order so
// tests can assert on deterministic listings, and PageSize controls how
// many objects each ListChildren page carries.
type Fake struct {
	mu       sync.Mutex
	objects  map[string]*remote.Object
	children map[string][]string // parent id -> ordered child ids
	parent   map[string]string
	nextID   int

	// PageSize bounds ListChildren pages. Zero means everything in one page.
	PageSize int

	failures map[string]error
}

// NewFake creates a Fake holding only the root folder, owned by owner.
func NewFake(ownerEmail, ownerName string) *Fake {
	f := &Fake{
		objects:  make(map[string]*remote.Object),
		children: make(map[string][]string),
		parent:   make(map[string]string),
		failures: make(map[string]error),
	}
	f.objects[RootID] = &remote.Object{
		ID:           RootID,
		Name:         "root",
		Kind:         remote.KindFolder,
		OwnerEmail:   ownerEmail,
		OwnerName:    ownerName,
		Capabilities: allowAll(),
	}
	return f
}

func allowAll() remote.Capabilities {
	yes := true
	return remote.Capabilities{CanCopy: &yes, CanRename: &yes, CanDelete: &yes}
}

// Fail makes the next calls of op against id return err. op is one of
// get, list, create, rename, copy, delete.
func (f *Fake) Fail(op, id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op+":"+id] = err
}

func (f *Fake) failure(op, id string) error {
	return f.failures[op+":"+id]
}

func (f *Fake) genID() string {
	f.nextID++
	return "obj-" + strconv.Itoa(f.nextID)
}

func (f *Fake) attach(parentID string, obj *remote.Object) string {
	if obj.ID == "" {
		obj.ID = f.genID()
	}
	if obj.ModifiedAt.IsZero() {
		obj.ModifiedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	f.objects[obj.ID] = obj
	f.children[parentID] = append(f.children[parentID], obj.ID)
	f.parent[obj.ID] = parentID
	return obj.ID
}

// AddFolder adds a folder under parentID and returns its id.
func (f *Fake) AddFolder(parentID, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	root := f.objects[RootID]
	return f.attach(parentID, &remote.Object{
		Name:         name,
		Kind:         remote.KindFolder,
		OwnerEmail:   root.OwnerEmail,
		OwnerName:    root.OwnerName,
		Capabilities: allowAll(),
	})
}

// AddFile adds a file under parentID and returns its id.
func (f *Fake) AddFile(parentID, name string, size int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	root := f.objects[RootID]
	return f.attach(parentID, &remote.Object{
		Name:         name,
		Kind:         remote.KindFile,
		SizeBytes:    size,
		OwnerEmail:   root.OwnerEmail,
		OwnerName:    root.OwnerName,
		Link:         "https://fake.example/" + name,
		Capabilities: allowAll(),
	})
}

// AddShortcut adds a shortcut under parentID pointing at targetID.
func (f *Fake) AddShortcut(parentID, name, targetID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attach(parentID, &remote.Object{
		Name:     name,
		Kind:     remote.KindShortcut,
		TargetID: targetID,
	})
}

// SetCapabilities overrides an object's capability payload.
func (f *Fake) SetCapabilities(id string, caps remote.Capabilities) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if obj, ok := f.objects[id]; ok {
		obj.Capabilities = caps
	}
}

// SetOwner overrides an object's owner.
func (f *Fake) SetOwner(id, email, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if obj, ok := f.objects[id]; ok {
		obj.OwnerEmail = email
		obj.OwnerName = name
	}
}

// Exists reports whether id is still present.
func (f *Fake) Exists(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[id]
	return ok
}

// ChildNames returns the current child names of parentID in order.
func (f *Fake) ChildNames(parentID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, id := range f.children[parentID] {
		names = append(names, f.objects[id].Name)
	}
	return names
}

// GetMetadata implements remote.Client.
func (f *Fake) GetMetadata(ctx context.Context, id string) (*remote.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("get", id); err != nil {
		return nil, err
	}
	obj, ok := f.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, id)
	}
	cp := *obj
	return &cp, nil
}

// ListChildren implements remote.Client with PageSize-bounded pages.
func (f *Fake) ListChildren(ctx context.Context, parentID, pageToken string) (*remote.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("list", parentID); err != nil {
		return nil, err
	}
	if _, ok := f.objects[parentID]; !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, parentID)
	}

	ids := f.children[parentID]
	start := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil || n < 0 || n > len(ids) {
			return nil, fmt.Errorf("invalid page token %q", pageToken)
		}
		start = n
	}
	end := len(ids)
	if f.PageSize > 0 && start+f.PageSize < end {
		end = start + f.PageSize
	}

	page := &remote.Page{}
	for _, id := range ids[start:end] {
		cp := *f.objects[id]
		page.Objects = append(page.Objects, cp)
	}
	if end < len(ids) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

// Create implements remote.Client.
func (f *Fake) Create(ctx context.Context, parentID, name string, folder bool) (*remote.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("create", parentID); err != nil {
		return nil, err
	}
	if _, ok := f.objects[parentID]; !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, parentID)
	}
	kind := remote.KindFile
	if folder {
		kind = remote.KindFolder
	}
	root := f.objects[RootID]
	id := f.attach(parentID, &remote.Object{
		Name:         name,
		Kind:         kind,
		OwnerEmail:   root.OwnerEmail,
		OwnerName:    root.OwnerName,
		Capabilities: allowAll(),
	})
	cp := *f.objects[id]
	return &cp, nil
}

// Rename implements remote.Client.
func (f *Fake) Rename(ctx context.Context, id, newName string) (*remote.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("rename", id); err != nil {
		return nil, err
	}
	obj, ok := f.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, id)
	}
	obj.Name = newName
	cp := *obj
	return &cp, nil
}

// Copy implements remote.Client. Folders cannot be copied, matching the
// behavior of the real providers.
func (f *Fake) Copy(ctx context.Context, id, newName, parentID string) (*remote.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("copy", id); err != nil {
		return nil, err
	}
	obj, ok := f.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, id)
	}
	if obj.Kind == remote.KindFolder {
		return nil, fmt.Errorf("cannot copy folder %s", id)
	}
	if _, ok := f.objects[parentID]; !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, parentID)
	}
	cp := *obj
	cp.ID = ""
	cp.Name = newName
	root := f.objects[RootID]
	cp.OwnerEmail = root.OwnerEmail
	cp.OwnerName = root.OwnerName
	newID := f.attach(parentID, &cp)
	out := *f.objects[newID]
	return &out, nil
}

// Delete implements remote.Client.
func (f *Fake) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("delete", id); err != nil {
		return err
	}
	if _, ok := f.objects[id]; !ok {
		return fmt.Errorf("%w: %s", remote.ErrNotFound, id)
	}
	delete(f.objects, id)
	parentID := f.parent[id]
	delete(f.parent, id)
	kids := f.children[parentID]
	for i, kid := range kids {
		if kid == id {
			f.children[parentID] = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	delete(f.children, id)
	return nil
}
