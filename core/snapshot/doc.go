// Package snapshot persists the record store so reconciliation state survives restarts.
//
// A Writer serializes the full record set as one JSON document and hands the bytes to
// every configured Sink after each mutation. Sink failures are joined and logged but
// never undo the mutation that triggered them.
//
// # Sinks
//
//   - FileSink writes to a temporary file in the target directory and renames it over
//     the snapshot, so a crash never leaves a half-written file behind.
//   - ObjectSink uploads to S3/MinIO through core/storage.
//
// Restore reads sinks in order and loads the first snapshot found into a records.Store.
package snapshot
