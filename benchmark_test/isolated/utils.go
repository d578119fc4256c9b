package isolated

import (
	"context"
	"testing"

	"github.com/hupe1980/rangego/blobstore"
	"github.com/hupe1980/rangego/model"
	"github.com/hupe1980/rangego/segment"
	"github.com/hupe1980/rangego/testutil"
)

// buildSegment returns an in-memory builder holding numDocs single-valued
// "price" documents, uniform over [0, 1_000_000].
func buildSegment(tb testing.TB, numDocs int) *segment.Builder {
	tb.Helper()
	builder := segment.NewBuilder(1)
	rng := testutil.NewRNG(42)
	for range numDocs {
		doc := model.NewDocument().WithNumeric("price", rng.Int63n(1_000_000)).Build()
		if _, err := builder.AddDocument(doc); err != nil {
			tb.Fatal(err)
		}
	}
	return builder
}

// writeSegment persists the builder to the store under its canonical name.
func writeSegment(tb testing.TB, store blobstore.BlobStore, builder *segment.Builder) {
	tb.Helper()
	ctx := context.Background()
	w, err := store.Create(ctx, segment.FileName(builder.ID()))
	if err != nil {
		tb.Fatal(err)
	}
	if err := builder.Write(ctx, w, segment.WriteOptions{}); err != nil {
		tb.Fatal(err)
	}
	if err := w.Close(); err != nil {
		tb.Fatal(err)
	}
}

// openSegment opens the named segment, failing the test on error.
func openSegment(tb testing.TB, store blobstore.BlobStore, id model.SegmentID) *segment.Reader {
	tb.Helper()
	r, err := segment.Open(context.Background(), store, segment.FileName(id))
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() { r.Close() })
	return r
}
