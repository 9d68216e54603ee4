package objectstore

import (
	"context"
	"time"
)

// Archiver is the payload-archival surface adapters depend on. It exists
// so an adapter needs only this narrow interface, not the full Client or
// this package's Config, and so tests can substitute a no-op or a
// recording fake without touching Minio at all.
type Archiver interface {
	// Archive uploads a raw upstream payload for later inspection.
	// The adapters in this module discard the returned error, so an
	// archival failure never changes how a fetch is classified.
	Archive(ctx context.Context, sourceName string, payload []byte) error
}

// archiver adapts a Client and bucket to the Archiver interface.
type archiver struct {
	client Client
	bucket string
}

// NewArchiver builds an Archiver over an already-constructed Client. It
// returns nil if client is nil, so callers can wire it unconditionally
// from a possibly-disabled Config and let adapters treat a nil Archiver
// as "archiving disabled".
func NewArchiver(client Client, bucket string) Archiver {
	if client == nil {
		return nil
	}
	return &archiver{client: client, bucket: bucket}
}

func (a *archiver) Archive(ctx context.Context, sourceName string, payload []byte) error {
	return ArchivePayload(ctx, a.client, a.bucket, sourceName, time.Now(), payload)
}
