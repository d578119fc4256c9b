// Package minio implements blobstore.BlobStore on MinIO and other
// S3-compatible object stores (Ceph, SeaweedFS, Garage) using the native
// MinIO client, so air-gapped deployments need no AWS SDK or credential
// chain.
//
//	client, err := minio.New("minio.internal:9000", &minio.Options{
//	    Creds:  credentials.NewEnvMinio(),
//	    Secure: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "search-indexes", "indexes/prices")
//	eng, err := rangego.Open(ctx, store)
//
// Blobs are read with ranged GETs and written as streaming multipart
// uploads, so segments are never buffered whole on either path.
package minio
