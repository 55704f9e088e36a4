// Package services - binary object storage for gallery photos and blog cover
// images. Uploads return a retrievable URL that is stored on the document;
// production uses S3, local runs fall back to a directory under ./static.
// File: services/objectstore.go
package services

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"athproof/logger"
)

// ObjectStore stores uploaded binaries and returns their public URL.
type ObjectStore interface {
	Put(name string, contentType string, data []byte) (string, error)
}

// ------------------- S3 -------------------

// S3Store uploads into a bucket and returns the public object URL.
type S3Store struct {
	client *s3.S3
	bucket string
}

// NewS3Store builds an S3-backed object store using the ambient AWS config.
func NewS3Store(bucket string) *S3Store {
	return &S3Store{
		client: s3.New(session.Must(session.NewSession())),
		bucket: bucket,
	}
}

// Put uploads the object under uploads/<uuid>-<name>.
func (s *S3Store) Put(name, contentType string, data []byte) (string, error) {
	key := "uploads/" + uuid.NewString() + "-" + path.Base(name)
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	logger.Info.Printf("[S3Store.Put] Uploaded %s", url)
	return url, nil
}

// ------------------- local disk -------------------

// DiskStore writes uploads under a directory served by the static file
// route. Used for local development and tests.
type DiskStore struct {
	Dir     string // filesystem directory, e.g. ./static/uploads
	BaseURL string // URL prefix, e.g. /static/uploads
}

// Put writes the object to disk under a collision-free name.
func (d *DiskStore) Put(name, contentType string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	fileName := uuid.NewString() + "-" + filepath.Base(name)
	if err := os.WriteFile(filepath.Join(d.Dir, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return d.BaseURL + "/" + fileName, nil
}
