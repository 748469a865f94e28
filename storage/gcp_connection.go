package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
)

// GcpConnection holds the credentials used for Google Cloud Storage
type GcpConnection struct {
	Credentials  *string `hcl:"credentials"`
	QuotaProject *string `hcl:"quota_project"`
	Impersonate  *string `hcl:"impersonate"`
	// Endpoint overrides the storage API endpoint, e.g. for an emulator
	Endpoint *string `hcl:"endpoint"`
}

func (c *GcpConnection) GetClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	var opts []option.ClientOption

	if c.Credentials != nil {
		contents, err := pathOrContents(*c.Credentials)
		if err != nil {
			return opts, fmt.Errorf("error reading credentials file: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON([]byte(contents)))
	}

	qp := os.Getenv("GOOGLE_CLOUD_QUOTA_PROJECT")
	if c.QuotaProject != nil {
		qp = *c.QuotaProject
	}
	if qp != "" {
		opts = append(opts, option.WithQuotaProject(qp))
	}

	if c.Impersonate != nil {
		ts, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
			TargetPrincipal: *c.Impersonate,
			Scopes:          []string{"https://www.googleapis.com/auth/devstorage.read_write"},
		})
		if err != nil {
			return opts, fmt.Errorf("error impersonating %s: %w", *c.Impersonate, err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}

	if c.Endpoint != nil {
		opts = append(opts, option.WithEndpoint(*c.Endpoint), option.WithoutAuthentication())
	}
	return opts, nil
}

// pathOrContents returns the contents of the file at in, if it exists, otherwise in itself
func pathOrContents(in string) (string, error) {
	if len(in) == 0 {
		return "", nil
	}

	filePath, err := homedir.Expand(in)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(filePath); err == nil {
		contents, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(contents), nil
	}

	if len(filePath) > 1 && (filePath[0] == '/' || filePath[0] == '\\') {
		return "", fmt.Errorf("%s: no such file or dir", filePath)
	}
	return in, nil
}
