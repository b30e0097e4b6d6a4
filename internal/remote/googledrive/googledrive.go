// Package googledrive implements the remote.Client contract on the Google
// Drive v3 API.
package googledrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/drivesweep/drivesweep/internal/config"
	"github.com/drivesweep/drivesweep/internal/remote"
)

const (
	folderMimeType   = "application/vnd.google-apps.folder"
	shortcutMimeType = "application/vnd.google-apps.shortcut"

	// objectFields is requested on every call that returns file metadata.
	objectFields = "id, name, mimeType, size, webViewLink, modifiedTime, owners, shortcutDetails, capabilities"
	listFields   = "nextPageToken, files(" + objectFields + ")"
)

func init() {
	remote.Register("googledrive", func(ctx context.Context, cfg *config.Config) (remote.Client, error) {
		return New(ctx, Config{
			CredentialsFile: cfg.DriveCredentialsFile,
			TokenFile:       cfg.DriveTokenFile,
			PageSize:        cfg.PageSize,
		})
	})
}

// Config holds the Drive client settings. Exactly one of CredentialsFile
// (service account) or TokenFile (a stored user token, obtained by whatever
// OAuth flow the surrounding application runs) must be set.
type Config struct {
	CredentialsFile string
	TokenFile       string
	PageSize        int64
}

// Client is a Google Drive v3 remote client. Shared-drive items are always
// included; the caller's permissions decide what the API lets through.
type Client struct {
	svc      *drive.Service
	pageSize int64
}

// New creates a Drive client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.TokenFile != "":
		tok, err := tokenFromFile(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("load token: %w", err)
		}
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(drive.DriveScope))
	default:
		return nil, errors.New("googledrive: no credentials configured")
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}

	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = 200
	}
	return &Client{svc: svc, pageSize: pageSize}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// GetMetadata implements remote.Client.
func (c *Client) GetMetadata(ctx context.Context, id string) (*remote.Object, error) {
	f, err := c.svc.Files.Get(id).
		Fields(objectFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	obj := toObject(f)
	return &obj, nil
}

// ListChildren implements remote.Client. Trashed items are never listed.
func (c *Client) ListChildren(ctx context.Context, parentID, pageToken string) (*remote.Page, error) {
	call := c.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", parentID)).
		Fields(listFields).
		PageSize(c.pageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Do()
	if err != nil {
		return nil, translateError(err)
	}

	page := &remote.Page{NextPageToken: res.NextPageToken}
	for _, f := range res.Files {
		page.Objects = append(page.Objects, toObject(f))
	}
	return page, nil
}

// Create implements remote.Client.
func (c *Client) Create(ctx context.Context, parentID, name string, folder bool) (*remote.Object, error) {
	meta := &drive.File{
		Name:    name,
		Parents: []string{parentID},
	}
	if folder {
		meta.MimeType = folderMimeType
	}
	f, err := c.svc.Files.Create(meta).
		Fields(objectFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	obj := toObject(f)
	return &obj, nil
}

// Rename implements remote.Client.
func (c *Client) Rename(ctx context.Context, id, newName string) (*remote.Object, error) {
	f, err := c.svc.Files.Update(id, &drive.File{Name: newName}).
		Fields(objectFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	obj := toObject(f)
	return &obj, nil
}

// Copy implements remote.Client.
func (c *Client) Copy(ctx context.Context, id, newName, parentID string) (*remote.Object, error) {
	f, err := c.svc.Files.Copy(id, &drive.File{
		Name:    newName,
		Parents: []string{parentID},
	}).
		Fields(objectFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	obj := toObject(f)
	return &obj, nil
}

// Delete implements remote.Client. Drive deletes folders recursively.
func (c *Client) Delete(ctx context.Context, id string) error {
	err := c.svc.Files.Delete(id).
		SupportsAllDrives(true).
		Context(ctx).Do()
	return translateError(err)
}

// About implements remote.AccountInfoProvider.
func (c *Client) About(ctx context.Context) (*remote.AccountInfo, error) {
	about, err := c.svc.About.Get().
		Fields("storageQuota, user").
		Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	info := &remote.AccountInfo{}
	if about.User != nil {
		info.UserName = about.User.DisplayName
		info.UserEmail = about.User.EmailAddress
	}
	if about.StorageQuota != nil {
		info.LimitBytes = about.StorageQuota.Limit
		info.UsageBytes = about.StorageQuota.Usage
	}
	return info, nil
}

func toObject(f *drive.File) remote.Object {
	obj := remote.Object{
		ID:        f.Id,
		Name:      f.Name,
		Kind:      remote.KindFile,
		SizeBytes: f.Size,
		Link:      f.WebViewLink,
	}
	switch f.MimeType {
	case folderMimeType:
		obj.Kind = remote.KindFolder
		obj.SizeBytes = 0
	case shortcutMimeType:
		obj.Kind = remote.KindShortcut
		if f.ShortcutDetails != nil {
			obj.TargetID = f.ShortcutDetails.TargetId
		}
	}
	if len(f.Owners) > 0 {
		// First owner wins; multi-owner objects get no special handling.
		obj.OwnerEmail = f.Owners[0].EmailAddress
		obj.OwnerName = f.Owners[0].DisplayName
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			obj.ModifiedAt = t
		}
	}
	if f.Capabilities != nil {
		obj.Capabilities = remote.Capabilities{
			CanCopy:   &f.Capabilities.CanCopy,
			CanRename: &f.Capabilities.CanRename,
			CanDelete: &f.Capabilities.CanDelete,
		}
	}
	return obj
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s", remote.ErrNotFound, gerr.Message)
	}
	return err
}
