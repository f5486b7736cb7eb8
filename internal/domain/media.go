package domain

import "context"

// MediaStore abstracts binary object storage for uploaded images.
// Put returns the public URL of the stored object.
type MediaStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// MediaObject is a stored blob with its content type.
type MediaObject struct {
	Key         string
	ContentType string
	Data        []byte
}
