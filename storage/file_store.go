package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/mitchellh/go-homedir"
)

const FileStoreIdentifier = "file"

// FileStore writes objects below a local root directory, as <root>/<bucket>/<key>
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("file store root is required")
	}
	expanded, err := homedir.Expand(root)
	if err != nil {
		return nil, fmt.Errorf("error expanding file store root %s: %w", root, err)
	}
	return &FileStore{root: expanded}, nil
}

func (s *FileStore) Identifier() string {
	return FileStoreIdentifier
}

func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return newError(0, "", err)
	}
	rel := filepath.Join(bucket, filepath.FromSlash(key))
	if !filepath.IsLocal(rel) {
		return &Error{Kind: lander_error.TransmissionMalformed, Err: fmt.Errorf("key %s escapes the store root", key)}
	}
	target := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return classifyFileError(err)
	}
	// write then rename so a failed put never leaves a partial object
	tmp, err := os.CreateTemp(filepath.Dir(target), ".put-*")
	if err != nil {
		return classifyFileError(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return classifyFileError(err)
	}
	if err := tmp.Close(); err != nil {
		return classifyFileError(err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return classifyFileError(err)
	}
	return nil
}

func classifyFileError(err error) *Error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return &Error{Kind: lander_error.TransmissionAuth, Err: err}
	case errors.Is(err, fs.ErrNotExist):
		return &Error{Kind: lander_error.TransmissionNotFound, Err: err}
	default:
		return &Error{Kind: lander_error.TransmissionUnknown, Err: err}
	}
}
