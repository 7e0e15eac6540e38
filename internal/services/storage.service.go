package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"linkpage/config"

	"cloud.google.com/go/storage"
	logger "github.com/Bparsons0904/goLogger"
)

const LocalUploadsPath = "/uploads"

// ObjectStore persists uploaded media and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Close() error
}

// NewObjectStore uses Cloud Storage when a bucket is configured and the local
// upload directory otherwise.
func NewObjectStore(ctx context.Context, cfg config.Config) (ObjectStore, error) {
	if cfg.StorageBucket != "" {
		return NewGCSStore(ctx, cfg.StorageBucket, cfg.StoragePublicBaseURL)
	}
	return NewLocalStore(cfg.UploadDir)
}

type GCSStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	log           logger.Logger
}

func NewGCSStore(ctx context.Context, bucket, publicBaseURL string) (*GCSStore, error) {
	log := logger.New("storageService").File("gcs")

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, log.Err("failed to create storage client", err, "bucket", bucket)
	}

	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://storage.googleapis.com/%s", bucket)
	}

	log.Info("Using Cloud Storage for uploads", "bucket", bucket)
	return &GCSStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		log:           log,
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	log := s.log.TraceFromContext(ctx).Function("Put")

	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		return "", log.Err("failed to write object", err, "object", name)
	}
	if err := writer.Close(); err != nil {
		return "", log.Err("failed to finalize object", err, "object", name)
	}

	return s.publicBaseURL + "/" + url.PathEscape(name), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

// LocalStore writes uploads to disk; the router serves them under LocalUploadsPath.
type LocalStore struct {
	dir string
	log logger.Logger
}

func NewLocalStore(dir string) (*LocalStore, error) {
	log := logger.New("storageService").File("local")

	if dir == "" {
		dir = config.DefaultUploadDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, log.Err("failed to create upload directory", err, "dir", dir)
	}

	log.Info("Using local disk for uploads", "dir", dir)
	return &LocalStore{dir: dir, log: log}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	log := s.log.TraceFromContext(ctx).Function("Put")

	name = filepath.Base(name)
	file, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", log.Err("failed to create upload file", err, "name", name)
	}

	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		return "", log.Err("failed to write upload file", err, "name", name)
	}
	if err := file.Close(); err != nil {
		return "", log.Err("failed to close upload file", err, "name", name)
	}

	return LocalUploadsPath + "/" + url.PathEscape(name), nil
}

func (s *LocalStore) Close() error {
	return nil
}
