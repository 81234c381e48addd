// Package objectstore keeps uploaded source documents under
// tenant/subtenant/filename keys and hands back an address that can be
// fetched again by the ingestion pipeline.
package objectstore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var ErrInvalidAddress = errors.New("objectstore: address not owned by this store")

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, address string) ([]byte, error)
}

// Key builds "tenant/filename", or "tenant/subtenant/filename" when a
// subtenant is given. Only the base name of filename is kept.
func Key(tenant, subtenant, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if subtenant == "" {
		return tenant + "/" + name
	}
	return tenant + "/" + subtenant + "/" + name
}
