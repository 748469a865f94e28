package artifact_source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dsa-lake/data-lander/types"
	"github.com/mitchellh/go-homedir"
)

const FileSystemSourceIdentifier = "file_system"

// FileSystemSource reads archives which are already on the local filesystem
type FileSystemSource struct{}

func NewFileSystemSource() *FileSystemSource {
	return &FileSystemSource{}
}

func (s *FileSystemSource) Identifier() string {
	return FileSystemSourceIdentifier
}

// Fetch returns the info for a local archive; the file is used in place
func (s *FileSystemSource) Fetch(_ context.Context, location, _ string) (*types.DownloadedArtifactInfo, error) {
	path, err := homedir.Expand(location)
	if err != nil {
		return nil, fmt.Errorf("error expanding %s: %w", location, err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error reading archive %s: %w", path, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("archive %s is a directory", path)
	}
	info := types.NewArtifactInfo(location)
	return types.NewDownloadedArtifactInfo(info, path, stat.Size()), nil
}

// Discover expands each location which is a directory into the files below it with one of the
// given extensions. URLs and plain files are returned unchanged. Order is preserved.
func Discover(locations []string, extensions *types.ExtensionSet) ([]string, error) {
	var res []string
	var errList []error
	for _, location := range locations {
		if IsURL(location) {
			res = append(res, location)
			continue
		}
		path, err := homedir.Expand(location)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		stat, err := os.Stat(path)
		if err != nil || !stat.IsDir() {
			res = append(res, location)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if extensions.Contains(p) {
				res = append(res, p)
			}
			return nil
		})
		if err != nil {
			errList = append(errList, err)
		}
	}
	if len(errList) > 0 {
		return nil, errors.Join(errList...)
	}
	slog.Debug("discovered archives", "count", len(res))
	return res, nil
}
