package interfaces

import "context"

// Uploader stores image bytes and returns a public URL for them.
type Uploader interface {
	UploadBytes(ctx context.Context, folder string, filename string, b []byte) (string, error)
}
