package admin

import (
	"context"

	"github.com/cloo-solutions/pmstd/internal/service"
	"github.com/cloo-solutions/pmstd/internal/storage"
)

type objectClient interface {
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectMetadata, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// S3StorageAdapter exposes the S3 client as a service.ObjectStore
type S3StorageAdapter struct {
	client objectClient
}

func NewS3StorageAdapter(client objectClient) *S3StorageAdapter {
	return &S3StorageAdapter{client: client}
}

func (a *S3StorageAdapter) ListObjects(ctx context.Context, prefix string) ([]service.ObjectInfo, error) {
	objects, err := a.client.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	infos := make([]service.ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		infos = append(infos, service.ObjectInfo{
			Key:          obj.Key,
			ETag:         obj.ETag,
			Size:         obj.ContentLength,
			LastModified: obj.LastModified,
		})
	}
	return infos, nil
}

func (a *S3StorageAdapter) GetObject(ctx context.Context, key string) ([]byte, error) {
	return a.client.GetObject(ctx, key)
}
