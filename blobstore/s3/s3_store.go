package s3

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/rangego/blobstore"
)

// Options configure the stores in this package.
type Options struct {
	// Prefix is prepended to all blob names (e.g. "indexes/prices").
	Prefix string

	// Region overrides the AWS region. Only honored by New; NewStore
	// uses whatever the injected client is configured with.
	Region string

	// Upload tunes streaming uploads. Zero values pick defaults.
	Upload UploadConfig
}

// Option mutates Options.
type Option func(*Options)

// WithPrefix scopes all blob names under a key prefix.
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithRegion sets the AWS region for New.
func WithRegion(region string) Option {
	return func(o *Options) {
		o.Region = region
	}
}

// WithUploadConfig overrides the streaming upload tuning.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *Options) {
		o.Upload = cfg
	}
}

func applyOptions(optFns []Option) Options {
	var o Options
	for _, fn := range optFns {
		fn(&o)
	}
	o.Upload = o.Upload.withDefaults()
	return o
}

// Store implements blobstore.BlobStore on a standard S3 bucket.
type Store struct {
	client Client
	bucket string
	prefix string
	upload UploadConfig
}

var _ blobstore.BlobStore = (*Store)(nil)

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	opts := applyOptions(optFns)

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: opts.Prefix,
		upload: opts.Upload,
	}, nil
}

// NewStore creates a Store on an existing client.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	opts := applyOptions(optFns)
	return &Store{
		client: client,
		bucket: bucket,
		prefix: opts.Prefix,
		upload: opts.Upload,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens a blob for reading. Reads are served by HTTP range requests.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// Create starts a streaming upload. The object becomes visible when Close
// returns nil; S3 never exposes partial uploads.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	uploader := newUploader(s.client, s.upload)
	return newUploadBlob(ctx, uploader, s.bucket, s.key(name), !s.upload.DisableChecksum), nil
}

// Put writes a blob in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
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

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns blob names under prefix, relative to the store's root
// prefix, in lexicographic order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}
