package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/pmstd/internal/service"
	"github.com/cloo-solutions/pmstd/internal/storage"
)

type MockObjectClient struct {
	mock.Mock
}

func (m *MockObjectClient) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectMetadata, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ObjectMetadata), args.Error(1)
}

func (m *MockObjectClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestS3StorageAdapter_ListObjects(t *testing.T) {
	modified := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	client := new(MockObjectClient)
	client.On("ListObjects", mock.Anything, "standards/").Return([]storage.ObjectMetadata{
		{Key: "standards/pmbok.json", ETag: "abc", ContentLength: 42, LastModified: modified},
	}, nil)

	infos, err := NewS3StorageAdapter(client).ListObjects(context.Background(), "standards/")

	require.NoError(t, err)
	assert.Equal(t, []service.ObjectInfo{
		{Key: "standards/pmbok.json", ETag: "abc", Size: 42, LastModified: modified},
	}, infos)
}

func TestS3StorageAdapter_ListObjects_Error(t *testing.T) {
	client := new(MockObjectClient)
	client.On("ListObjects", mock.Anything, "x/").Return(nil, errors.New("denied"))

	_, err := NewS3StorageAdapter(client).ListObjects(context.Background(), "x/")
	assert.EqualError(t, err, "denied")
}

func TestS3StorageAdapter_ServesObjectSource(t *testing.T) {
	client := new(MockObjectClient)
	client.On("ListObjects", mock.Anything, "standards/").Return([]storage.ObjectMetadata{
		{Key: "standards/prince2.json", ETag: "e1"},
		{Key: "standards/README.md", ETag: "e2"},
	}, nil)
	client.On("GetObject", mock.Anything, "standards/prince2.json").Return([]byte(`{}`), nil)

	src := service.ObjectSource{Store: NewS3StorageAdapter(client), Prefix: "standards/"}

	entries, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "standards/prince2.json", entries[0].Name)

	data, err := src.Read(context.Background(), entries[0])
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), data)
}

func TestCorpusSource(t *testing.T) {
	store := NewS3StorageAdapter(new(MockObjectClient))

	src, err := corpusSource("data/standards", "standards/", store)
	require.NoError(t, err)
	assert.Equal(t, service.DirSource{Dir: "data/standards"}, src)

	src, err = corpusSource("", "standards/", store)
	require.NoError(t, err)
	assert.Equal(t, "s3:standards/", src.Name())

	_, err = corpusSource("", "standards/", nil)
	assert.Error(t, err)

	_, err = corpusSource("", "", store)
	assert.Error(t, err)
}
