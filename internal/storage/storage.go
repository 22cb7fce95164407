package storage

import "io"

// Upload carries one file received from a multipart request, decoupled
// from the HTTP layer so services can be exercised without gin.
type Upload struct {
	OriginalName string
	Content      io.Reader
}

// BlobStore abstracts where uploaded images live. Put generates a
// collision-resistant name from the prefix and the original extension
// and returns the stored reference. Delete is idempotent: removing an
// absent blob is not an error.
type BlobStore interface {
	Put(prefix, originalName string, r io.Reader) (string, error)
	Delete(ref string) error
	URL(baseURL, ref string) string
}
