// Package s3 implements the remote.Client contract on an S3-compatible
// object store.
//
// S3 has no real hierarchy, so the adapter maps the engine's model onto
// keys: folder ids are key prefixes ending in "/" (the empty id is the
// bucket root), file ids are object keys, and children are resolved with
// delimited listings. There are no shortcuts and no per-object permission
// flags — the configured credentials either own the bucket or they don't —
// so every object reports full capabilities.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/drivesweep/drivesweep/internal/config"
	"github.com/drivesweep/drivesweep/internal/remote"
)

func init() {
	remote.Register("s3", func(ctx context.Context, cfg *config.Config) (remote.Client, error) {
		return New(ctx, Config{
			Endpoint:   cfg.S3Endpoint,
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			UseSSL:     cfg.S3UseSSL,
			OwnerEmail: cfg.S3OwnerEmail,
			OwnerName:  cfg.S3OwnerName,
			PageSize:   int32(cfg.PageSize),
		})
	})
}

// Config holds the S3 client settings.
type Config struct {
	Endpoint   string // empty = AWS endpoints
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	OwnerEmail string // reported as every object's owner
	OwnerName  string
	PageSize   int32
}

// Client is an S3 remote client scoped to one bucket.
type Client struct {
	api        *awss3.Client
	bucket     string
	ownerEmail string
	ownerName  string
	pageSize   int32
}

// New creates an S3 client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awscfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	api := awss3.NewFromConfig(awscfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.Contains(endpoint, "://") {
				scheme := "https"
				if !cfg.UseSSL {
					scheme = "http"
				}
				endpoint = scheme + "://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = 200
	}
	return &Client{
		api:        api,
		bucket:     cfg.Bucket,
		ownerEmail: cfg.OwnerEmail,
		ownerName:  cfg.OwnerName,
		pageSize:   pageSize,
	}, nil
}

func isFolderID(id string) bool {
	return id == "" || strings.HasSuffix(id, "/")
}

// baseName returns the last path segment of a key or prefix.
func baseName(id string) string {
	trimmed := strings.TrimSuffix(id, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// parentPrefix returns the prefix the key lives under, "" for top level.
func parentPrefix(key string) string {
	trimmed := strings.TrimSuffix(key, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[:i+1]
	}
	return ""
}

func (c *Client) folderObject(id string) remote.Object {
	name := baseName(id)
	if id == "" {
		name = c.bucket
	}
	return remote.Object{
		ID:           id,
		Name:         name,
		Kind:         remote.KindFolder,
		OwnerEmail:   c.ownerEmail,
		OwnerName:    c.ownerName,
		Link:         "s3://" + c.bucket + "/" + id,
		Capabilities: fullCapabilities(),
	}
}

func fullCapabilities() remote.Capabilities {
	yes := true
	return remote.Capabilities{CanCopy: &yes, CanRename: &yes, CanDelete: &yes}
}

// GetMetadata implements remote.Client.
func (c *Client) GetMetadata(ctx context.Context, id string) (*remote.Object, error) {
	if isFolderID(id) {
		if id != "" {
			out, err := c.api.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
				Bucket:  aws.String(c.bucket),
				Prefix:  aws.String(id),
				MaxKeys: aws.Int32(1),
			})
			if err != nil {
				return nil, translateError(err)
			}
			if len(out.Contents) == 0 && len(out.CommonPrefixes) == 0 {
				return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, id)
			}
		}
		obj := c.folderObject(id)
		return &obj, nil
	}

	head, err := c.api.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return nil, translateError(err)
	}
	obj := remote.Object{
		ID:           id,
		Name:         baseName(id),
		Kind:         remote.KindFile,
		SizeBytes:    aws.ToInt64(head.ContentLength),
		OwnerEmail:   c.ownerEmail,
		OwnerName:    c.ownerName,
		ModifiedAt:   aws.ToTime(head.LastModified),
		Link:         "s3://" + c.bucket + "/" + id,
		Capabilities: fullCapabilities(),
	}
	return &obj, nil
}

// ListChildren implements remote.Client using one delimited listing page.
func (c *Client) ListChildren(ctx context.Context, parentID, pageToken string) (*remote.Page, error) {
	in := &awss3.ListObjectsV2Input{
		Bucket:    aws.String(c.bucket),
		Prefix:    aws.String(parentID),
		Delimiter: aws.String("/"),
		MaxKeys:   aws.Int32(c.pageSize),
	}
	if pageToken != "" {
		in.ContinuationToken = aws.String(pageToken)
	}
	out, err := c.api.ListObjectsV2(ctx, in)
	if err != nil {
		return nil, translateError(err)
	}

	page := &remote.Page{}
	for _, p := range out.CommonPrefixes {
		page.Objects = append(page.Objects, c.folderObject(aws.ToString(p.Prefix)))
	}
	for _, o := range out.Contents {
		key := aws.ToString(o.Key)
		if key == parentID {
			// The folder's own zero-byte marker object.
			continue
		}
		page.Objects = append(page.Objects, remote.Object{
			ID:           key,
			Name:         baseName(key),
			Kind:         remote.KindFile,
			SizeBytes:    aws.ToInt64(o.Size),
			OwnerEmail:   c.ownerEmail,
			OwnerName:    c.ownerName,
			ModifiedAt:   aws.ToTime(o.LastModified),
			Link:         "s3://" + c.bucket + "/" + key,
			Capabilities: fullCapabilities(),
		})
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextPageToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// Create implements remote.Client. Folders become zero-byte prefix markers.
func (c *Client) Create(ctx context.Context, parentID, name string, folder bool) (*remote.Object, error) {
	if !isFolderID(parentID) {
		return nil, fmt.Errorf("s3: parent %q is not a folder", parentID)
	}
	key := parentID + name
	if folder {
		key += "/"
	}
	_, err := c.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return nil, translateError(err)
	}
	if folder {
		obj := c.folderObject(key)
		return &obj, nil
	}
	return c.GetMetadata(ctx, key)
}

// Rename implements remote.Client as copy-then-delete. Folder renames would
// mean rewriting every key under the prefix and are not supported.
func (c *Client) Rename(ctx context.Context, id, newName string) (*remote.Object, error) {
	if isFolderID(id) {
		return nil, errors.New("s3: folder rename is not supported")
	}
	newKey := parentPrefix(id) + newName
	if newKey == id {
		return c.GetMetadata(ctx, id)
	}
	if err := c.copyKey(ctx, id, newKey); err != nil {
		return nil, err
	}
	if _, err := c.api.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(id),
	}); err != nil {
		return nil, translateError(err)
	}
	return c.GetMetadata(ctx, newKey)
}

// Copy implements remote.Client.
func (c *Client) Copy(ctx context.Context, id, newName, parentID string) (*remote.Object, error) {
	if isFolderID(id) {
		return nil, errors.New("s3: folder copy is not supported")
	}
	if !isFolderID(parentID) {
		return nil, fmt.Errorf("s3: destination %q is not a folder", parentID)
	}
	newKey := parentID + newName
	if err := c.copyKey(ctx, id, newKey); err != nil {
		return nil, err
	}
	return c.GetMetadata(ctx, newKey)
}

func (c *Client) copyKey(ctx context.Context, from, to string) error {
	_, err := c.api.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		CopySource: aws.String(url.PathEscape(c.bucket + "/" + from)),
		Key:        aws.String(to),
	})
	return translateError(err)
}

// Delete implements remote.Client. Deleting a folder removes every key
// under its prefix, in batches.
func (c *Client) Delete(ctx context.Context, id string) error {
	if !isFolderID(id) {
		// HeadObject first: S3 deletes are silently idempotent, but the
		// engine's taxonomy wants not-found reported.
		if _, err := c.api.HeadObject(ctx, &awss3.HeadObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(id),
		}); err != nil {
			return translateError(err)
		}
		_, err := c.api.DeleteObject(ctx, &awss3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(id),
		})
		return translateError(err)
	}

	deleted := false
	var token *string
	for {
		out, err := c.api.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(id),
			ContinuationToken: token,
		})
		if err != nil {
			return translateError(err)
		}
		if len(out.Contents) > 0 {
			ids := make([]types.ObjectIdentifier, 0, len(out.Contents))
			for _, o := range out.Contents {
				ids = append(ids, types.ObjectIdentifier{Key: o.Key})
			}
			if _, err := c.api.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
				Bucket: aws.String(c.bucket),
				Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			}); err != nil {
				return translateError(err)
			}
			deleted = true
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	if !deleted {
		return fmt.Errorf("%w: %s", remote.ErrNotFound, id)
	}
	return nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return fmt.Errorf("%w: %v", remote.ErrNotFound, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return fmt.Errorf("%w: %s", remote.ErrNotFound, apiErr.ErrorMessage())
		}
	}
	return err
}
