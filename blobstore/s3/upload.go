package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/rangego/internal/hash"
)

// UploadConfig tunes streaming segment uploads. The zero value picks the
// defaults.
type UploadConfig struct {
	// PartSize is the part size for multipart uploads.
	// Default: 8MB (larger than the SDK default of 5MB; segments are big).
	PartSize int64

	// Concurrency is how many parts upload in parallel.
	// Default: 5 (the SDK default).
	Concurrency int

	// DisableChecksum turns off the CRC32C checksums that let S3 validate
	// each part on arrival.
	DisableChecksum bool

	// LeavePartsOnError keeps uploaded parts around after a failure
	// instead of aborting the multipart upload.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the settings used when none are given.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
	}
}

func (c UploadConfig) withDefaults() UploadConfig {
	def := DefaultUploadConfig()
	if c.PartSize <= 0 {
		c.PartSize = def.PartSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	return c
}

func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

// crc32cBase64 returns the checksum in the base64 big-endian form S3 expects.
func crc32cBase64(data []byte) string {
	sum := hash.CRC32C(data)
	b := []byte{byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum)}
	return base64.StdEncoding.EncodeToString(b)
}

// putWithChecksum uploads a small blob in one request with CRC32C
// integrity validation.
func putWithChecksum(ctx context.Context, client Client, bucket, key string, data []byte) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(bucket),
		Key:            aws.String(key),
		Body:           bytes.NewReader(data),
		ContentLength:  aws.Int64(int64(len(data))),
		ChecksumCRC32C: aws.String(crc32cBase64(data)),
	})
	return err
}

// uploadBlob implements blobstore.WritableBlob by piping writes into a
// background manager.Uploader. Small blobs become a single PutObject;
// larger ones a multipart upload. Nothing is visible until Close returns
// nil.
type uploadBlob struct {
	pw *io.PipeWriter

	done     chan error
	closed   atomic.Bool
	closeMu  sync.Mutex
	closeErr error
}

// newUploadBlob starts the background upload and returns the write handle.
func newUploadBlob(ctx context.Context, uploader *manager.Uploader, bucket, key string, enableChecksum bool) *uploadBlob {
	pr, pw := io.Pipe()

	b := &uploadBlob{
		pw:   pw,
		done: make(chan error, 1),
	}

	go func() {
		input := &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   pr,
		}
		if enableChecksum {
			input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
		}

		_, err := uploader.Upload(ctx, input)
		_ = pr.CloseWithError(err)
		b.done <- err
	}()

	return b
}

func (b *uploadBlob) Write(p []byte) (int, error) {
	if b.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	return b.pw.Write(p)
}

// Close signals EOF to the uploader and waits for the upload to finish.
func (b *uploadBlob) Close() error {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()

	if !b.closed.CompareAndSwap(false, true) {
		return b.closeErr
	}
	if err := b.pw.Close(); err != nil {
		b.closeErr = err
		return err
	}
	b.closeErr = <-b.done
	return b.closeErr
}

// Abort cancels an in-progress upload. The uploader aborts its own
// multipart upload unless LeavePartsOnError was set.
func (b *uploadBlob) Abort() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.pw.CloseWithError(context.Canceled)
}

// Sync is a no-op: S3 uploads are only durable once Close returns.
func (b *uploadBlob) Sync() error {
	return nil
}
