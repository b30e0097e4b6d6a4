// Package remote defines the Client interface for remote storage providers.
// Implementations translate one provider's API (Google Drive, S3) into a
// common hierarchical object model: opaque ids, named children, paginated
// listings. Tree semantics (paths, enumeration, actions) are handled
// separately by the tree, clean, and batch packages.
package remote

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the requested object does not exist.
// All providers translate their native not-found errors to this sentinel.
var ErrNotFound = errors.New("remote: object not found")

// ErrNotSupported is returned for optional operations (such as About) the
// configured provider does not implement.
var ErrNotSupported = errors.New("remote: operation not supported by provider")

// Kind discriminates the three object shapes the engine understands.
type Kind string

const (
	KindFile     Kind = "file"
	KindFolder   Kind = "folder"
	KindShortcut Kind = "shortcut"
)

// Capabilities carries the per-object permission flags granted to the
// caller. Fields are pointers so that "not reported by the provider" is
// distinguishable from an explicit false; the tree package applies the
// default rules (copy permissive, direct edit restrictive).
type Capabilities struct {
	CanCopy   *bool
	CanRename *bool
	CanDelete *bool
}

// Object is one raw record as returned by a provider.
type Object struct {
	ID           string
	Name         string
	Kind         Kind
	TargetID     string // shortcut target id, set only when Kind == KindShortcut
	SizeBytes    int64  // 0 for folders or when the provider omits it
	OwnerEmail   string // first owner only
	OwnerName    string
	ModifiedAt   time.Time
	Link         string
	Capabilities Capabilities
}

// Page is one page of a paginated child listing.
type Page struct {
	Objects       []Object
	NextPageToken string // empty when this is the last page
}

// Client is the provider-neutral storage API the engine is built against.
// All calls are synchronous; implementations must be safe for concurrent
// use by multiple goroutines.
type Client interface {
	// GetMetadata fetches one object by id.
	GetMetadata(ctx context.Context, id string) (*Object, error)

	// ListChildren returns one page of the direct children of parentID.
	// Pass an empty pageToken for the first page and the previous page's
	// NextPageToken afterwards.
	ListChildren(ctx context.Context, parentID, pageToken string) (*Page, error)

	// Create makes a new (empty) object named name under parentID.
	Create(ctx context.Context, parentID, name string, folder bool) (*Object, error)

	// Rename changes an object's display name and returns the updated object.
	Rename(ctx context.Context, id, newName string) (*Object, error)

	// Copy duplicates the object into parentID under newName and returns
	// the newly created copy.
	Copy(ctx context.Context, id, newName, parentID string) (*Object, error)

	// Delete removes the object.
	Delete(ctx context.Context, id string) error
}

// AccountInfo describes the authenticated account's identity and storage use.
type AccountInfo struct {
	UserName   string
	UserEmail  string
	LimitBytes int64 // 0 when the provider reports no fixed limit
	UsageBytes int64
}

// AccountInfoProvider is implemented by clients that can report account
// storage usage. Providers without the concept simply don't implement it.
type AccountInfoProvider interface {
	About(ctx context.Context) (*AccountInfo, error)
}
