package s3

import (
	"bytes"
	"context"
	"errors"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/hupe1980/rangego/blobstore"
)

// ErrConflict is returned when a conditional write loses to an existing
// object.
var ErrConflict = errors.New("object already exists")

// ExpressStore implements blobstore.BlobStore on S3 Express One Zone.
//
// Express One Zone is the single-AZ storage class with single-digit
// millisecond access. Compared to standard S3 it uses directory buckets
// (names ending in --azid--x-s3), authenticates via CreateSession, and
// supports conditional writes (If-None-Match), which makes atomic
// create-if-absent possible without an external lock.
//
// Use it when search latency matters more than cross-AZ durability:
// Lambda-served indexes, ephemeral Kubernetes workloads, real-time
// filtering pipelines.
type ExpressStore struct {
	client Client
	bucket string
	prefix string
	upload UploadConfig
}

var _ blobstore.BlobStore = (*ExpressStore)(nil)

// NewExpressStore creates a store on a directory bucket. The bucket name
// must end with --azid--x-s3.
func NewExpressStore(client Client, bucket string, optFns ...Option) *ExpressStore {
	opts := applyOptions(optFns)
	return &ExpressStore{
		client: client,
		bucket: bucket,
		prefix: opts.Prefix,
		upload: opts.Upload,
	}
}

func (s *ExpressStore) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open returns a handle that reads via ranged GETs.
func (s *ExpressStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// Create starts a streaming upload.
func (s *ExpressStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	uploader := newUploader(s.client, s.upload)
	return newUploadBlob(ctx, uploader, s.bucket, s.key(name), !s.upload.DisableChecksum), nil
}

// Put writes a blob in a single request.
func (s *ExpressStore) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)
	if !s.upload.DisableChecksum {
		return putWithChecksum(ctx, s.client, s.bucket, key, data)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	return err
}

// PutIfNotExists writes a blob only when the key is absent, using the
// conditional write support of directory buckets. It returns ErrConflict
// when the object already exists.
func (s *ExpressStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "PreconditionFailed", "ConditionalRequestConflict":
				return ErrConflict
			}
		}
		return err
	}
	return nil
}

// Delete removes the object. Directory buckets treat deleting a missing
// key as success, matching the store contract.
func (s *ExpressStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns blob names under prefix in lexicographic order.
func (s *ExpressStore) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}
