// Package artifacts stores the geometry texts read and written by the
// pipeline commands. Keys are slash separated names such as
// "run1/FoamCells.geo"; drivers map them onto a directory, an S3 bucket
// prefix, or process memory.
package artifacts

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// Info describes a stored artifact. Fingerprint is empty when the driver
// cannot report it without reading the content.
type Info struct {
	Key          string
	Size         int64
	Fingerprint  string
	LastModified time.Time
}

type Store interface {
	// Put writes data under key, replacing an earlier artifact.
	Put(ctx context.Context, key string, data []byte) (Info, error)
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns the artifacts whose key starts with prefix, by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

var ErrNotFound = errors.New("artifact not found")

// Fingerprint is the hex BLAKE2b-256 digest of data.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty artifact key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("artifact key %q is absolute", key)
	}
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("artifact key %q leaves the store", key)
	}
	return clean, nil
}

/*
Open selects a driver from a location:

	mem://                  process memory
	s3://bucket/prefix      S3 or an S3 compatible endpoint
	file://dir, dir         a local directory, created if needed

The S3 driver reads its region from AWS_REGION, an optional endpoint from
GOFOAM_S3_ENDPOINT and falls back to the default AWS credential chain.
*/
func Open(ctx context.Context, location string) (Store, error) {
	switch {
	case location == "mem://":
		return NewMemory(), nil
	case strings.HasPrefix(location, "s3://"):
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
		return NewS3(ctx, S3Config{
			Bucket:    bucket,
			Prefix:    prefix,
			Region:    os.Getenv("AWS_REGION"),
			Endpoint:  os.Getenv("GOFOAM_S3_ENDPOINT"),
			PathStyle: os.Getenv("GOFOAM_S3_ENDPOINT") != "",
		})
	default:
		return NewFilesystem(strings.TrimPrefix(location, "file://"))
	}
}
