package dataset

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultSlug is the Kaggle dataset this application is built around.
const DefaultSlug = "niharika41298/gym-exercise-data"

const kaggleBaseURL = "https://www.kaggle.com/api/v1"

// ErrUnavailable is returned when the dataset cannot be obtained from
// the cache or the network. Callers surface it as a structured error
// result; it never crashes the filter path.
var ErrUnavailable = errors.New("dataset: unavailable")

// Snapshotter persists a downloaded table so later runs can work
// without network access. Implemented by the sqlite store.
type Snapshotter interface {
	SaveExerciseSnapshot(ctx context.Context, columns []string, rows [][]string) error
}

// Provider downloads and caches the exercise dataset. It owns the
// process-wide in-memory handle to the most recently loaded table;
// construct one Provider per process and inject it where needed.
type Provider struct {
	slug     string
	baseURL  string
	cacheDir string
	username string
	key      string
	client   *http.Client
	logger   *slog.Logger
	snap     Snapshotter

	mu    sync.Mutex
	table *Table
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// WithBaseClientTimeout sets the download timeout on the default client.
func WithBaseClientTimeout(d time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = d }
}

// WithSnapshotter enables persisting refreshed data into the store.
func WithSnapshotter(s Snapshotter) Option {
	return func(p *Provider) { p.snap = s }
}

// WithSlug overrides the dataset slug.
func WithSlug(slug string) Option {
	return func(p *Provider) { p.slug = slug }
}

// WithBaseURL points downloads at a different API host, for tests.
func WithBaseURL(base string) Option {
	return func(p *Provider) { p.baseURL = base }
}

// NewProvider creates a Provider caching into cacheDir and
// authenticating with the two-part Kaggle credential pair.
func NewProvider(cacheDir, username, key string, logger *slog.Logger, opts ...Option) *Provider {
	p := &Provider{
		slug:     DefaultSlug,
		baseURL:  kaggleBaseURL,
		cacheDir: cacheDir,
		username: username,
		key:      key,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns the current dataset. Resolution order: in-memory handle,
// on-disk cache, network download. The first successful load wins for
// the remainder of the process unless Refresh is called.
func (p *Provider) Load(ctx context.Context) (*Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.table != nil {
		return p.table, nil
	}

	if table, err := p.loadFromCache(); err == nil {
		p.logger.Info("dataset loaded from cache", "rows", table.Len(), "dir", p.cacheDir)
		p.table = table
		return table, nil
	}

	table, err := p.download(ctx)
	if err != nil {
		return nil, err
	}
	p.table = table
	return table, nil
}

// Refresh forces a new download, replacing the in-memory handle and,
// when a Snapshotter is configured, the stored snapshot.
func (p *Provider) Refresh(ctx context.Context) (*Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	table, err := p.download(ctx)
	if err != nil {
		return nil, err
	}
	p.table = table

	if p.snap != nil {
		if err := p.snap.SaveExerciseSnapshot(ctx, table.Columns, table.Rows); err != nil {
			p.logger.Warn("dataset snapshot save failed", "error", err)
		}
	}
	return table, nil
}

func (p *Provider) loadFromCache() (*Table, error) {
	csvPath, err := findCSV(p.cacheDir)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

// download fetches the dataset zip from the Kaggle download API,
// extracts it into the cache dir and parses the first CSV found.
func (p *Provider) download(ctx context.Context) (*Table, error) {
	if p.username == "" || p.key == "" {
		return nil, fmt.Errorf("%w: credentials not configured, set KAGGLE_USERNAME and KAGGLE_KEY", ErrUnavailable)
	}

	url := fmt.Sprintf("%s/datasets/download/%s", p.baseURL, p.slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.SetBasicAuth(p.username, p.key)

	p.logger.Info("downloading dataset", "slug", p.slug)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: authentication failed (%s), check KAGGLE_USERNAME and KAGGLE_KEY", ErrUnavailable, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: download failed: %s", ErrUnavailable, resp.Status)
	}

	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create cache dir: %v", ErrUnavailable, err)
	}

	archivePath := filepath.Join(p.cacheDir, "dataset.zip")
	if err := writeFile(archivePath, resp.Body); err != nil {
		return nil, fmt.Errorf("%w: write archive: %v", ErrUnavailable, err)
	}

	if err := extractZip(archivePath, p.cacheDir); err != nil {
		return nil, fmt.Errorf("%w: extract archive: %v", ErrUnavailable, err)
	}

	table, err := p.loadFromCache()
	if err != nil {
		return nil, fmt.Errorf("%w: no data file found after download: %v", ErrUnavailable, err)
	}
	p.logger.Info("dataset downloaded", "rows", table.Len())
	return table, nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

// findCSV locates the first CSV file under dir, walking one level of
// subdirectories the way the dataset archives are laid out.
func findCSV(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if found == "" && !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no CSV files found in %s", dir)
	}
	return found, nil
}

func extractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, file := range zr.File {
		// Reject entries escaping the destination.
		dest := filepath.Join(destDir, filepath.Clean(file.Name))
		if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", file.Name)
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		rc, err := file.Open()
		if err != nil {
			return err
		}
		err = writeFile(dest, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
