// Package s3 stores the model artifact as a single S3 object.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"carprice/db/artifact"
)

// API is the subset of *s3.Client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store keeps the published artifact under one key.
type Store struct {
	client API
	bucket string
	key    string
}

// NewStore builds a client from the default AWS credential chain. A
// non-empty endpoint selects an S3-compatible server with path-style
// addressing.
func NewStore(ctx context.Context, bucket, key, region, endpoint string) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return NewStoreWithClient(client, bucket, key), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client API, bucket, key string) *Store {
	return &Store{client: client, bucket: bucket, key: key}
}

// Publish uploads to a temporary key and copies it over the published key,
// so readers never observe a partial object.
func (s *Store) Publish(ctx context.Context, blob []byte) error {
	tmp := fmt.Sprintf("%s.tmp-%s", s.key, uuid.NewString())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(tmp),
		Body:        bytes.NewReader(blob),
		ContentType: aws.String("application/json"),
		Metadata:    map[string]string{"sha256": artifact.Digest(blob)},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", tmp, err)
	}

	_, copyErr := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(s.key),
		CopySource: aws.String(s.bucket + "/" + escapeKey(tmp)),
	})

	_, delErr := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(tmp),
	})
	if copyErr != nil {
		return fmt.Errorf("failed to publish %s: %w", s.key, copyErr)
	}
	if delErr != nil {
		return fmt.Errorf("failed to remove %s: %w", tmp, delErr)
	}
	return nil
}

// Load downloads the published object.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, artifact.ErrNotFound
		}
		return nil, fmt.Errorf("failed to download %s: %w", s.key, err)
	}
	defer out.Body.Close()

	blob, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	return blob, nil
}

// Close is a no-op; the SDK client holds no connections that need release.
func (s *Store) Close() error {
	return nil
}

// escapeKey URL-escapes each path segment of an object key.
func escapeKey(key string) string {
	u := url.URL{Path: key}
	return u.EscapedPath()
}
