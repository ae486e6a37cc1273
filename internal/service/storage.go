package service

import (
	"context"
	"time"
)

// ObjectInfo describes one stored corpus object.
type ObjectInfo struct {
	Key          string
	ETag         string
	Size         int64
	LastModified time.Time
}

// ObjectStore defines the object storage operations used for corpus files
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}
