// Package storage wraps the MinIO Go client for snapshot uploads to AWS S3 or a
// self-hosted MinIO instance.
//
// The Client interface exposes only what snapshot persistence needs (bucket checks,
// PutObject and GetObject), which keeps core/storage/mocks small enough to stub in
// unit tests. Connections are lazy: NewClient never dials, so misconfiguration shows
// up on the first EnsureBucket or PutObject call.
//
//	client, err := storage.NewClient(cfg)
//	err = storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region)
package storage
