// Package storage holds the places a downloaded submission can be written to.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/csg33k/code-portal/internal/ports"
)

// StorageType selects the download store backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds the settings of every store type.
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string
	S3Prefix     string
	S3Endpoint   string // Optional, for S3-compatible services
	AWSAccessKey string
	AWSSecretKey string
}

// New creates the store described by cfg.
func New(cfg StorageConfig) (ports.DownloadStore, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET is required for S3 storage")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// sanitizeFilename keeps the last path element of a server-supplied name so
// it cannot escape the target directory or key prefix.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base("/" + name)
	if name == "/" || name == "." || name == ".." {
		return "download"
	}
	return name
}
