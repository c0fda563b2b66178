// Package download persists product files referenced by query results. It
// speaks HTTP for the web endpoints and FTP for the archive's table mirror,
// and writes through temporary files so a failed transfer never leaves a
// truncated product behind.
package download

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/internal/httpclient"
	"github.com/tphakala/sxcat-go/internal/logging"
)

// Package-level logger specific to the download service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "download.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "download", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize download file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "download")
		closeLogger = func() error { return nil }
	}
}

const (
	defaultParallel = 4
	defaultTimeout  = 60 * time.Second
	ftpDefaultPort  = 21
)

// Outcome states what happened to one destination file.
type Outcome string

const (
	// OutcomeSaved: the file was fetched and written.
	OutcomeSaved Outcome = "saved"
	// OutcomeSkipped: the file already existed and clobber is off.
	OutcomeSkipped Outcome = "skipped"
)

// Item is one file to download.
type Item struct {
	URL     string // http(s):// or ftp:// source
	RelPath string // destination path relative to the manager's root
}

// SavedFile reports the result of saving one item.
type SavedFile struct {
	Item    Item
	Path    string // final path on disk
	Bytes   int64  // bytes written, zero when skipped
	Outcome Outcome
}

// Config holds download manager configuration.
type Config struct {
	DestDir  string
	Clobber  bool
	Parallel int
	Timeout  time.Duration
}

// ConfigFromSettings builds a manager config from the loaded settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	cfg := Config{DestDir: ".", Parallel: defaultParallel, Timeout: defaultTimeout}
	if settings == nil {
		return cfg
	}
	if settings.Download.DestDir != "" {
		cfg.DestDir = settings.Download.DestDir
	}
	if settings.Download.Parallel > 0 {
		cfg.Parallel = settings.Download.Parallel
	}
	cfg.Clobber = settings.Download.Clobber
	return cfg
}

// Manager downloads and saves product files.
type Manager struct {
	config Config
	http   *httpclient.Client
}

// NewManager creates a download manager.
func NewManager(config Config) *Manager {
	if config.DestDir == "" {
		config.DestDir = "."
	}
	if config.Parallel <= 0 {
		config.Parallel = defaultParallel
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &Manager{
		config: config,
		http: httpclient.New(&httpclient.Config{
			DefaultTimeout: config.Timeout,
		}),
	}
}

// DestDir returns the manager's destination root.
func (m *Manager) DestDir() string { return m.config.DestDir }

// Close releases the manager's resources.
func (m *Manager) Close() {
	m.http.Close()
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing download logger: %v", err)
		}
	}
}

// Fetch retrieves a file into memory.
func (m *Manager) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := m.open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Newf("reading %s: %w", rawURL, err).
			Category(errors.CategoryDownload).
			Context("url", rawURL).
			Component("download").
			Build()
	}
	return data, nil
}

// Save fetches one item and writes it below the destination root. A
// pre-existing file is skipped unless clobber is on; skipping is an
// outcome, not an error.
func (m *Manager) Save(ctx context.Context, item Item) (*SavedFile, error) {
	if item.RelPath == "" {
		return nil, errors.Newf("item has no destination path").
			Category(errors.CategoryValidation).
			Context("url", item.URL).
			Component("download").
			Build()
	}

	destPath := filepath.Join(m.config.DestDir, item.RelPath)
	destDir := filepath.Dir(destPath)
	// MkdirAll tolerates existing directories, so concurrent saves into
	// the same subdirectory do not race.
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("directory", destDir).
			Component("download").
			Build()
	}

	if !m.config.Clobber {
		if _, err := os.Stat(destPath); err == nil {
			logger.Debug("skipping existing file",
				"path", destPath,
				"url", item.URL)
			return &SavedFile{Item: item, Path: destPath, Outcome: OutcomeSkipped}, nil
		}
	}

	body, err := m.open(ctx, item.URL)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	written, err := writeAtomic(destPath, body)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("path", destPath).
			Context("url", item.URL).
			Component("download").
			Build()
	}

	logger.Debug("file saved",
		"path", destPath,
		"url", item.URL,
		"bytes", written)

	return &SavedFile{Item: item, Path: destPath, Bytes: written, Outcome: OutcomeSaved}, nil
}

// SaveAll saves items concurrently, bounded by the configured parallelism.
// The first failure cancels the remaining transfers and is returned;
// already-written files stay on disk. Results keep item order.
func (m *Manager) SaveAll(ctx context.Context, items []Item) ([]SavedFile, error) {
	results := make([]SavedFile, len(items))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Parallel)

	for i, item := range items {
		i, item := i, item // Capture loop variables
		g.Go(func() error {
			saved, err := m.Save(gCtx, item)
			if err != nil {
				return err
			}
			results[i] = *saved
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var saved, skipped int
	for i := range results {
		switch results[i].Outcome {
		case OutcomeSaved:
			saved++
		case OutcomeSkipped:
			skipped++
		}
	}
	logger.Info("batch download complete",
		"items", len(items),
		"saved", saved,
		"skipped", skipped,
		"dest_dir", m.config.DestDir)

	return results, nil
}

// open routes the URL to the matching transport and returns the content
// stream.
func (m *Manager) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		return m.openHTTP(ctx, rawURL)
	case strings.HasPrefix(rawURL, "ftp://"):
		return m.openFTP(ctx, rawURL)
	default:
		return nil, errors.Newf("unsupported URL scheme: %s", rawURL).
			Category(errors.CategoryValidation).
			Context("url", rawURL).
			Component("download").
			Build()
	}
}

func (m *Manager) openHTTP(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := m.http.Get(ctx, rawURL)
	if err != nil {
		return nil, errors.Newf("fetching %s: %w", rawURL, err).
			Category(errors.CategoryDownload).
			Context("url", rawURL).
			Component("download").
			Build()
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		category := errors.CategoryDownload
		if resp.StatusCode == http.StatusNotFound {
			category = errors.CategoryNotFound
		}
		return nil, errors.Newf("fetching %s: status %d", rawURL, resp.StatusCode).
			Category(category).
			Context("url", rawURL).
			Context("status_code", resp.StatusCode).
			Component("download").
			Build()
	}
	return resp.Body, nil
}

// ftpFile couples an FTP data stream with its control connection so both
// close together.
type ftpFile struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (f *ftpFile) Read(p []byte) (int, error) { return f.resp.Read(p) }

func (f *ftpFile) Close() error {
	err := f.resp.Close()
	if quitErr := f.conn.Quit(); quitErr != nil && err == nil {
		err = quitErr
	}
	return err
}

func (m *Manager) openFTP(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Newf("invalid FTP URL %s: %w", rawURL, err).
			Category(errors.CategoryValidation).
			Component("download").
			Build()
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = fmt.Sprintf("%d", ftpDefaultPort)
	}
	user := "anonymous"
	pass := "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}

	// The ftp package has no context support on the data path, so dial in
	// a goroutine and race it against the context.
	type dialResult struct {
		file *ftpFile
		err  error
	}
	resultChan := make(chan dialResult, 1)

	go func() {
		conn, dialErr := ftp.Dial(fmt.Sprintf("%s:%s", host, port), ftp.DialWithTimeout(m.config.Timeout))
		if dialErr != nil {
			resultChan <- dialResult{err: errors.Newf("ftp dial %s: %w", host, dialErr).
				Category(errors.CategoryDownload).
				Context("url", rawURL).
				Component("download").
				Build()}
			return
		}
		if loginErr := conn.Login(user, pass); loginErr != nil {
			_ = conn.Quit()
			resultChan <- dialResult{err: errors.Newf("ftp login %s: %w", host, loginErr).
				Category(errors.CategoryDownload).
				Context("url", rawURL).
				Component("download").
				Build()}
			return
		}
		resp, retrErr := conn.Retr(strings.TrimPrefix(u.Path, "/"))
		if retrErr != nil {
			_ = conn.Quit()
			resultChan <- dialResult{err: errors.Newf("ftp retrieve %s: %w", u.Path, retrErr).
				Category(errors.CategoryDownload).
				Context("url", rawURL).
				Component("download").
				Build()}
			return
		}
		resultChan <- dialResult{file: &ftpFile{resp: resp, conn: conn}}
	}()

	select {
	case <-ctx.Done():
		// The goroutine cleans its connection up when the dial returns.
		go func() {
			if r := <-resultChan; r.file != nil {
				_ = r.file.Close()
			}
		}()
		return nil, errors.New(ctx.Err()).
			Category(errors.CategoryCancellation).
			Context("url", rawURL).
			Component("download").
			Build()
	case r := <-resultChan:
		return r.file, r.err
	}
}

// writeAtomic streams the body into a temporary file next to the target and
// renames it into place.
func writeAtomic(destPath string, body io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".sxcat-*")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	return written, nil
}
