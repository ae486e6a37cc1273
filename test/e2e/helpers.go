//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"

	"github.com/cloo-solutions/pmstd/internal/api/handlers"
	"github.com/cloo-solutions/pmstd/internal/cli/admin"
	"github.com/cloo-solutions/pmstd/internal/repository"
	"github.com/cloo-solutions/pmstd/internal/server"
	"github.com/cloo-solutions/pmstd/internal/service"
	"github.com/cloo-solutions/pmstd/internal/storage"
	"github.com/cloo-solutions/pmstd/internal/testutil"
	"github.com/cloo-solutions/pmstd/internal/topics"
)

const (
	adminKey     = "e2e-admin-key"
	corpusPrefix = "standards/"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	RustFSC    *testutil.RustFSContainer
	Pool       *pgxpool.Pool
	S3Client   *storage.S3Client
	Server     *httptest.Server
	HTTPClient *http.Client
}

// SetupE2EEnv starts postgres and RustFS and serves the full router
// against them. The corpus source is the S3 prefix.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "e2e-corpora",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	catalog, err := topics.Default()
	if err != nil {
		t.Fatalf("failed to load topics: %v", err)
	}

	standardRepo := repository.NewStandardRepository(pool)
	sectionRepo := repository.NewSectionRepository(pool)

	searchSvc := service.NewSearchService(standardRepo, sectionRepo,
		service.WithSearchRecorder(repository.NewSearchLogRepository(pool)),
		service.WithSearchLogger(log),
	)
	seedSvc := service.NewSeedService(repository.NewTxRunner(pool), searchSvc, 2, log)
	source := service.ObjectSource{Store: admin.NewS3StorageAdapter(s3Client), Prefix: corpusPrefix}

	router := server.NewRouter(server.RouterConfig{
		Logger:            log,
		AdminAPIKey:       adminKey,
		HealthHandler:     handlers.NewHealthHandler(map[string]handlers.Pinger{"database": pool}),
		StandardHandler:   handlers.NewStandardHandler(service.NewStandardService(standardRepo, sectionRepo)),
		SearchHandler:     handlers.NewSearchHandler(searchSvc),
		ComparisonHandler: handlers.NewComparisonHandler(service.NewComparisonService(standardRepo, sectionRepo, catalog, nil, log)),
		ProcessHandler:    handlers.NewProcessHandler(service.NewProcessService(standardRepo, sectionRepo, nil, log)),
		AdminHandler:      handlers.NewAdminHandler(seedSvc, source),
	})

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		Pool:       pool,
		S3Client:   s3Client,
		Server:     httptest.NewServer(router),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		_ = e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		_ = e.PostgresC.Terminate(e.Ctx)
	}
}

// UploadCorpus stores a corpus document under the corpus prefix.
func (e *E2ETestEnv) UploadCorpus(name string, corpus any) {
	data, err := json.Marshal(corpus)
	if err != nil {
		e.T.Fatalf("failed to marshal corpus: %v", err)
	}
	if err := e.S3Client.PutObject(e.Ctx, storage.ObjectKey(corpusPrefix, name), data, "application/json"); err != nil {
		e.T.Fatalf("failed to upload corpus %s: %v", name, err)
	}
}

// APIResponse is the response envelope.
type APIResponse struct {
	Status int
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

// Do sends a request and decodes the envelope.
func (e *E2ETestEnv) Do(method, path string, body any, headers map[string]string) *APIResponse {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.Server.URL+path, reader)
	if err != nil {
		e.T.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := &APIResponse{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		e.T.Fatalf("%s %s: failed to decode response: %v", method, path, err)
	}
	return out
}

func (e *E2ETestEnv) Get(path string) *APIResponse {
	return e.Do(http.MethodGet, path, nil, nil)
}

func (e *E2ETestEnv) Post(path string, body any) *APIResponse {
	return e.Do(http.MethodPost, path, body, nil)
}

// Seed triggers the admin seeding endpoint.
func (e *E2ETestEnv) Seed() *APIResponse {
	return e.Do(http.MethodPost, "/admin/seed", nil, map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", adminKey),
	})
}

// Decode unmarshals the response data into out.
func (r *APIResponse) Decode(t *testing.T, out any) {
	t.Helper()
	if err := json.Unmarshal(r.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v (%s)", err, r.Data)
	}
}
