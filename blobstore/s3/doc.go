// Package s3 stores index blobs in Amazon S3.
//
// Store works against standard buckets. ExpressStore targets S3 Express
// One Zone directory buckets and adds conditional writes. DDBCommitStore
// layers a DynamoDB commit log over either, so concurrent writers can
// commit manifests without clobbering each other.
//
//	store, err := s3.New(ctx, "search-indexes",
//	    s3.WithPrefix("indexes/prices"),
//	    s3.WithRegion("eu-central-1"))
//
//	eng, err := rangego.Open(ctx, store)
//
// Reads use ranged GETs and paginate listings automatically. Writes
// stream through multipart uploads with CRC32C validation.
package s3
