package artifact_source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dsa-lake/data-lander/constants"
	"github.com/dsa-lake/data-lander/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveLayout_DerivePrefix(t *testing.T) {
	layout, err := NewArchiveLayout(constants.DefaultArchiveLayout)
	require.NoError(t, err)

	tests := []struct {
		name     string
		location string
		style    PrefixStyle
		want     string
		wantErr  bool
	}{
		{
			name:     "url dashed",
			location: "https://example.com/data/sor-global-2024-01-31-full.zip",
			style:    PrefixStyleDashed,
			want:     "global-full/2024-01-31/",
		},
		{
			name:     "url nested",
			location: "https://example.com/data/sor-global-2024-01-31-light.zip?token=x",
			style:    PrefixStyleNested,
			want:     "global-light/2024/01/31/",
		},
		{
			name:     "local path",
			location: "/tmp/archives/sor-global-2023-09-25-full.zip",
			style:    PrefixStyleDashed,
			want:     "global-full/2023-09-25/",
		},
		{
			name:     "unknown variant",
			location: "sor-global-2024-01-31-partial.zip",
			style:    PrefixStyleDashed,
			wantErr:  true,
		},
		{
			name:     "unrelated name",
			location: "https://example.com/archive.zip",
			style:    PrefixStyleDashed,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := layout.DerivePrefix(tt.location, tt.style)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArchiveLayout_Parse(t *testing.T) {
	layout, err := NewArchiveLayout(constants.DefaultArchiveLayout)
	require.NoError(t, err)

	info, ok, err := layout.Parse("sor-global-2024-02-29-light.zip")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), info.Date)
	assert.Equal(t, "light", info.Variant)
}

func TestNewArchiveLayout_MissingDateFields(t *testing.T) {
	_, err := NewArchiveLayout(`dump-%{YEAR:year}-%{MONTHNUM:month}.zip`)
	assert.ErrorContains(t, err, "day")
}

func TestPrefixStyle_Validate(t *testing.T) {
	assert.NoError(t, PrefixStyleDashed.Validate())
	assert.NoError(t, PrefixStyleNested.Validate())
	assert.Error(t, PrefixStyle("flat").Validate())
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.zip"))
	assert.True(t, IsURL("HTTP://example.com/a.zip"))
	assert.False(t, IsURL("/tmp/a.zip"))
	assert.False(t, IsURL("s3://bucket/a.zip"))
	assert.False(t, IsURL("C:\\archives\\a.zip"))
}

func TestHttpSource_Fetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch r.URL.Path {
		case "/flaky/sor-global-2024-01-31-full.zip":
			if n == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("PK-archive"))
		case "/ok/sor-global-2024-01-31-full.zip", "/download":
			_, _ = w.Write([]byte("PK-archive"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewHttpSource(WithRetries(2), WithRetryWait(time.Millisecond, 5*time.Millisecond))

	t.Run("success", func(t *testing.T) {
		dest := t.TempDir()
		info, err := s.Fetch(context.Background(), srv.URL+"/ok/sor-global-2024-01-31-full.zip", dest)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dest, "sor-global-2024-01-31-full.zip"), info.LocalName)
		assert.Equal(t, int64(len("PK-archive")), info.Size)
		assert.Equal(t, srv.URL+"/ok/sor-global-2024-01-31-full.zip", info.OriginalName)

		data, err := os.ReadFile(info.LocalName)
		require.NoError(t, err)
		assert.Equal(t, "PK-archive", string(data))
	})

	t.Run("extensionless name is saved as a zip", func(t *testing.T) {
		dest := t.TempDir()
		info, err := s.Fetch(context.Background(), srv.URL+"/download?id=1", dest)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dest, "download.archive.zip"), info.LocalName)
		assert.FileExists(t, info.LocalName)
	})

	t.Run("server error is retried", func(t *testing.T) {
		calls.Store(0)
		_, err := s.Fetch(context.Background(), srv.URL+"/flaky/sor-global-2024-01-31-full.zip", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Fetch(context.Background(), srv.URL+"/missing.zip", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestHttpSource_FileName(t *testing.T) {
	s := NewHttpSource()
	tests := []struct {
		location string
		want     string
	}{
		{location: "https://example.com/sor-global-2024-01-31-full.zip", want: "sor-global-2024-01-31-full.zip"},
		{location: "https://example.com/daily.CSV.GZ?sig=abc", want: "daily.CSV.GZ"},
		{location: "https://example.com/download?id=1", want: "download.archive.zip"},
		{location: "https://example.com/files/report.csv", want: "report.csv.archive.zip"},
		{location: "https://example.com/", want: "archive.zip"},
		{location: "https://example.com", want: "archive.zip"},
		{location: "https://example.com/a/..", want: "archive.zip"},
		{location: "://bad", want: "archive.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, s.fileName(tt.location))
		})
	}

	zipOnly := NewHttpSource(WithArchiveExtensions(".zip"))
	assert.Equal(t, "daily.csv.gz.archive.zip", zipOnly.fileName("https://example.com/daily.csv.gz"))
}

func TestFileSystemSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sor-global-2024-01-31-full.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0o644))

	info, err := NewFileSystemSource().Fetch(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, path, info.LocalName)
	assert.Equal(t, int64(2), info.Size)

	_, err = NewFileSystemSource().Fetch(context.Background(), filepath.Join(dir, "missing.zip"), "")
	assert.Error(t, err)

	_, err = NewFileSystemSource().Fetch(context.Background(), dir, "")
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.zip", "b.ZIP", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	got, err := Discover([]string{"https://example.com/x.zip", dir, "/some/file.zip"}, types.NewExtensionSet(".zip"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/x.zip",
		filepath.Join(dir, "a.zip"),
		filepath.Join(dir, "b.ZIP"),
		"/some/file.zip",
	}, got)
}

func TestForLocation(t *testing.T) {
	h := NewHttpSource()
	assert.Equal(t, HttpSourceIdentifier, ForLocation("https://example.com/a.zip", h).Identifier())
	assert.Equal(t, FileSystemSourceIdentifier, ForLocation("/tmp/a.zip", h).Identifier())
}
