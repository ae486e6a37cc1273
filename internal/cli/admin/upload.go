package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/storage"
)

type objectPutter interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// UploadCmd returns the upload command
func UploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload corpus files to S3",
		Long:  "Validate every corpus JSON file in a directory and upload it under the configured S3 prefix",
		RunE:  runUpload,
	}

	cmd.Flags().String("dir", "", "Directory containing corpus JSON files (required)")
	cmd.Flags().String("prefix", "", "Target S3 prefix (default PMSTD_S3_PREFIX)")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dir, _ := cmd.Flags().GetString("dir")
	prefix, _ := cmd.Flags().GetString("prefix")
	if prefix == "" {
		prefix = cfg.S3Prefix
	}

	client, err := newS3Client(ctx, cfg, log)
	if err != nil {
		return err
	}

	keys, err := uploadDir(ctx, client, dir, prefix)
	for _, key := range keys {
		log.Info("uploaded corpus file", zap.String("bucket", client.Bucket()), zap.String("key", key))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d files to s3://%s/%s\n", len(keys), client.Bucket(), prefix)
	return nil
}

// uploadDir validates and uploads every *.json file in dir. Files are
// validated before any upload starts so a bad file uploads nothing.
func uploadDir(ctx context.Context, store objectPutter, dir, prefix string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no corpus files found in %s", dir)
	}
	sort.Strings(paths)

	payloads := make([][]byte, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var file domain.CorpusFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrInvalidCorpus)
		}
		if err := file.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		payloads[i] = data
	}

	keys := make([]string, 0, len(paths))
	for i, path := range paths {
		key := storage.ObjectKey(prefix, filepath.Base(path))
		if err := store.PutObject(ctx, key, payloads[i], "application/json"); err != nil {
			return keys, fmt.Errorf("failed to upload %s: %w", path, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
