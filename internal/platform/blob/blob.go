// Package blob abstracts file content storage. The dossier engine treats
// file references as opaque strings; only this package knows how to resolve
// them to bytes.
package blob

import "context"

// Store persists raw file content and hands back an opaque reference.
type Store interface {
	Put(ctx context.Context, filename, contentType string, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, string, error)
	Delete(ctx context.Context, ref string) error
}
