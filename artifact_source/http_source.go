package artifact_source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dsa-lake/data-lander/archive"
	"github.com/dsa-lake/data-lander/types"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	HttpSourceIdentifier = "http"

	defaultDownloadRetries = 4

	// defaultArchiveName names a download whose URL has no final path segment
	defaultArchiveName = "archive.zip"
	// archiveSuffix is appended to a final path segment without a known archive extension
	archiveSuffix = ".archive.zip"
)

type HttpSourceOption func(*HttpSource)

func WithRetries(retries int) HttpSourceOption {
	return func(s *HttpSource) {
		s.client.RetryMax = retries
	}
}

func WithRetryWait(min, max time.Duration) HttpSourceOption {
	return func(s *HttpSource) {
		s.client.RetryWaitMin = min
		s.client.RetryWaitMax = max
	}
}

// WithArchiveExtensions sets the extensions a downloaded file name may keep as is
func WithArchiveExtensions(extensions ...string) HttpSourceOption {
	return func(s *HttpSource) {
		s.archives = types.NewExtensionSet(extensions...)
	}
}

// WithDownloadTimeout bounds a whole download, including the body; zero means no limit
func WithDownloadTimeout(timeout time.Duration) HttpSourceOption {
	return func(s *HttpSource) {
		s.client.HTTPClient.Timeout = timeout
	}
}

// HttpSource downloads archives over HTTP(S), retrying transport failures and server errors
type HttpSource struct {
	client   *retryablehttp.Client
	archives *types.ExtensionSet
}

func NewHttpSource(opts ...HttpSourceOption) *HttpSource {
	client := retryablehttp.NewClient()
	client.RetryMax = defaultDownloadRetries
	client.Logger = slog.Default()
	// a response which is not 2xx once retries are exhausted is returned to the caller
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	s := &HttpSource{
		client:   client,
		archives: types.NewExtensionSet(archive.NewExtractor().Extensions()...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HttpSource) Identifier() string {
	return HttpSourceIdentifier
}

func (s *HttpSource) Fetch(ctx context.Context, location, destDir string) (*types.DownloadedArtifactInfo, error) {
	info := types.NewArtifactInfo(location)
	slog.Info("downloading archive", "url", location)
	start := time.Now()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s: %w", location, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("error downloading %s: unexpected status %s", location, resp.Status)
	}

	localPath := filepath.Join(destDir, s.fileName(location))
	f, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("error creating %s: %w", localPath, err)
	}
	size, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("error writing download of %s: %w", location, err)
	}

	slog.Info("downloaded archive", "url", location, "path", localPath, "bytes", size, "duration", time.Since(start))
	return types.NewDownloadedArtifactInfo(info, localPath, size), nil
}

// fileName returns the final path segment of the URL, with a zip extension added when the
// segment has no known archive extension so that the download can be extracted
func (s *HttpSource) fileName(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return defaultArchiveName
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == ".." || name == "" {
		return defaultArchiveName
	}
	if !s.archives.Contains(name) {
		name += archiveSuffix
	}
	return name
}
