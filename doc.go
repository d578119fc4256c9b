// Package rangego provides an embedded range-filtering index for Go.
//
// Rangego indexes documents carrying numeric fields (timestamps, prices,
// sizes) and answers "which documents have a value inside [min, max]"
// over millions of documents without scanning them all. Documents are
// stored in immutable segment blobs on any BlobStore, from a local
// directory to S3.
//
// Open an engine on a local directory, index, and query:
//
//	ctx := context.Background()
//	eng, _ := rangego.OpenLocal(ctx, "./data")
//	defer eng.Close()
//
//	doc := model.NewDocument().WithNumeric("price", 1299).WithTerm("category", "monitor").Build()
//	eng.AddDocument(ctx, doc)
//	eng.Commit(ctx)
//
//	matches, _ := eng.Search("price").Between(1000, 2000).Execute(ctx)
//
// The same engine runs against object storage by handing Open a different
// store:
//
//	store, _ := s3.New(ctx, "search-indexes", s3.WithPrefix("prod/"))
//	eng, _ := rangego.Open(ctx, store)
//
// # Writes and Durability
//
// Added documents buffer in memory until a flush seals them into an
// immutable segment; segments join the index when a commit writes a new
// manifest generation:
//
//	eng.AddDocument(ctx, doc)  // buffered, not yet searchable
//	eng.Flush(ctx)             // searchable after this
//	eng.Commit(ctx)            // durable after this
//
// Commit implies Flush. There is no write-ahead log: a crash loses only
// what was never committed, and reopening always yields the last committed
// generation.
//
// # Search Model
//
// Searches run per segment, in parallel, using two-phase iteration: a
// cheap approximation proposes candidates and a per-document check
// confirms them against the range. A fast-match query can narrow the
// candidates before any value is read, and term filters intersect with
// the range:
//
//	matches, _ := eng.Search("latency_ms").
//	    MultiValued().
//	    Max(250).
//	    FilterTerm("region", "eu-west-1").
//	    Execute(ctx)
//
// Realized query plans are cached per segment, so repeating a query skips
// planning. Memory and IO ceilings come from resource.Config.
package rangego
