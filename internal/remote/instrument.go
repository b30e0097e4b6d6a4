package remote

import (
	"context"
	"time"

	"github.com/drivesweep/drivesweep/internal/metrics"
)

// instrumented wraps a Client with call pacing and Prometheus metrics.
// Every provider built through NewClient is wrapped; the engine layers above
// never see the decoration.
type instrumented struct {
	inner Client
	pacer *Pacer
}

// Instrument wraps c with the given pacer and per-call metrics.
func Instrument(c Client, p *Pacer) Client {
	return &instrumented{inner: c, pacer: p}
}

func (i *instrumented) call(ctx context.Context, op string, fn func() error) error {
	if err := i.pacer.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	metrics.RecordRemoteCall(op, err, time.Since(start))
	return err
}

func (i *instrumented) GetMetadata(ctx context.Context, id string) (*Object, error) {
	var obj *Object
	err := i.call(ctx, "get", func() (err error) {
		obj, err = i.inner.GetMetadata(ctx, id)
		return err
	})
	return obj, err
}

func (i *instrumented) ListChildren(ctx context.Context, parentID, pageToken string) (*Page, error) {
	var page *Page
	err := i.call(ctx, "list", func() (err error) {
		page, err = i.inner.ListChildren(ctx, parentID, pageToken)
		return err
	})
	return page, err
}

func (i *instrumented) Create(ctx context.Context, parentID, name string, folder bool) (*Object, error) {
	var obj *Object
	err := i.call(ctx, "create", func() (err error) {
		obj, err = i.inner.Create(ctx, parentID, name, folder)
		return err
	})
	return obj, err
}

func (i *instrumented) Rename(ctx context.Context, id, newName string) (*Object, error) {
	var obj *Object
	err := i.call(ctx, "rename", func() (err error) {
		obj, err = i.inner.Rename(ctx, id, newName)
		return err
	})
	return obj, err
}

func (i *instrumented) Copy(ctx context.Context, id, newName, parentID string) (*Object, error) {
	var obj *Object
	err := i.call(ctx, "copy", func() (err error) {
		obj, err = i.inner.Copy(ctx, id, newName, parentID)
		return err
	})
	return obj, err
}

func (i *instrumented) Delete(ctx context.Context, id string) error {
	return i.call(ctx, "delete", func() error {
		return i.inner.Delete(ctx, id)
	})
}

// About passes through when the wrapped client reports account info.
func (i *instrumented) About(ctx context.Context) (*AccountInfo, error) {
	p, ok := i.inner.(AccountInfoProvider)
	if !ok {
		return nil, ErrNotSupported
	}
	var info *AccountInfo
	err := i.call(ctx, "about", func() (err error) {
		info, err = p.About(ctx)
		return err
	})
	return info, err
}
