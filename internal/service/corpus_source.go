package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CorpusEntry names one corpus file within a source.
type CorpusEntry struct {
	Name string
	ETag string
}

// CorpusSource enumerates and reads corpus JSON files.
type CorpusSource interface {
	Name() string
	List(ctx context.Context) ([]CorpusEntry, error)
	Read(ctx context.Context, entry CorpusEntry) ([]byte, error)
}

// DirSource reads *.json files from a local directory.
type DirSource struct {
	Dir string
}

func (d DirSource) Name() string { return "dir:" + d.Dir }

func (d DirSource) List(ctx context.Context) ([]CorpusEntry, error) {
	matches, err := filepath.Glob(filepath.Join(d.Dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list corpus dir: %w", err)
	}
	if matches == nil {
		if _, err := os.Stat(d.Dir); err != nil {
			return nil, fmt.Errorf("list corpus dir: %w", err)
		}
	}
	sort.Strings(matches)

	entries := make([]CorpusEntry, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat corpus file: %w", err)
		}
		entries = append(entries, CorpusEntry{Name: m, ETag: fileETag(info)})
	}
	return entries, nil
}

// fileETag fingerprints a file by modification time and size.
func fileETag(info os.FileInfo) string {
	return fmt.Sprintf("%x-%x", info.ModTime().UnixNano(), info.Size())
}

func (d DirSource) Read(_ context.Context, entry CorpusEntry) ([]byte, error) {
	return os.ReadFile(entry.Name)
}

// ObjectSource reads *.json objects under a prefix of an ObjectStore.
type ObjectSource struct {
	Store  ObjectStore
	Prefix string
}

func (o ObjectSource) Name() string { return "s3:" + o.Prefix }

func (o ObjectSource) List(ctx context.Context) ([]CorpusEntry, error) {
	objects, err := o.Store.ListObjects(ctx, o.Prefix)
	if err != nil {
		return nil, fmt.Errorf("list corpus objects: %w", err)
	}
	entries := make([]CorpusEntry, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		entries = append(entries, CorpusEntry{Name: obj.Key, ETag: obj.ETag})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (o ObjectSource) Read(ctx context.Context, entry CorpusEntry) ([]byte, error) {
	return o.Store.GetObject(ctx, entry.Name)
}
