package storage

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Service mirrors the media cache into an S3-compatible bucket. It
// satisfies media.Store, so the prefetcher can write straight to it.
type S3Service struct {
	client  *minio.Client
	bucket  string
	prefix  string
	tempDir string
}

// S3Config holds the connection settings for the MinIO endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string // skips the bucket location lookup when set
	Bucket    string
	Prefix    string
}

// NewS3Service connects to the MinIO server described by cfg. Downloads are
// staged under tempDir before upload.
func NewS3Service(cfg S3Config, tempDir string) (*S3Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("missing one or more required settings: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MEDIA_BUCKET")
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	log.Println("Successfully connected to MinIO endpoint:", cfg.Endpoint)
	return &S3Service{client: minioClient, bucket: cfg.Bucket, prefix: cfg.Prefix, tempDir: tempDir}, nil
}

// EnsureBucket creates the media bucket when it does not exist yet.
func (s *S3Service) EnsureBucket(ctx context.Context, location string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: location})
}

func (s *S3Service) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, ObjectKey(s.prefix, name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("failed to check for existing object: %w", err)
}

// Commit uploads the staged file and removes it locally.
func (s *S3Service) Commit(ctx context.Context, tmpPath, name string) error {
	key := ObjectKey(s.prefix, name)
	_, err := s.client.FPutObject(ctx, s.bucket, key, tmpPath, minio.PutObjectOptions{
		ContentType: ContentType(name),
	})
	if err != nil {
		return fmt.Errorf("failed to store object in S3: %w", err)
	}
	if err := os.Remove(tmpPath); err != nil {
		log.Printf("Failed to remove staged file %s: %v", tmpPath, err)
	}
	log.Printf("Successfully stored media '%s' in bucket '%s' with key '%s'", name, s.bucket, key)
	return nil
}

func (s *S3Service) TempDir() string {
	return s.tempDir
}

// ObjectKey is the bucket key for a cached media file.
func ObjectKey(prefix, name string) string {
	if prefix == "" {
		return path.Join("media", name)
	}
	return path.Join(prefix, "media", name)
}

func ContentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
