// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pdiddy/paperlens/internal/convert"
	"github.com/pdiddy/paperlens/pkg/types"
)

// S3Store reads documents from an S3-compatible bucket.
type S3Store struct {
	client *minio.Client
	bucket string
	region string
	conv   convert.Converter

	initOnce sync.Once
	initErr  error
}

// NewS3Store connects to the bucket described by cfg. The bucket is
// checked lazily on first read.
func NewS3Store(cfg types.S3Config, conv convert.Converter) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: bucket, region: region, conv: conv}, nil
}

// checkBucket fails once, and then for every later call, when the bucket
// is missing. Documents are never written, so the bucket is not created.
func (s *S3Store) checkBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		switch {
		case err != nil:
			s.initErr = fmt.Errorf("checking bucket %s: %w", s.bucket, err)
		case !exists:
			s.initErr = fmt.Errorf("bucket %s: %w", s.bucket, ErrNotFound)
		}
	})
	return s.initErr
}

func (s *S3Store) ReadDocumentText(ctx context.Context, ref string) (string, error) {
	key, err := cleanRef(ref)
	if err != nil {
		return "", err
	}
	if err := s.checkBucket(ctx); err != nil {
		return "", err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", classify(ref, err)
	}
	defer obj.Close()

	if isPDF(key) {
		return s.convertObject(ctx, ref, obj)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, obj); err != nil {
		return "", classify(ref, err)
	}
	return b.String(), nil
}

// convertObject spools a PDF object to a temp file for the converter.
func (s *S3Store) convertObject(ctx context.Context, ref string, obj io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "paperlens-*.pdf")
	if err != nil {
		return "", fmt.Errorf("spooling %s: %w", ref, err)
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, obj)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", classify(ref, err)
	}
	return s.conv.Convert(ctx, tmp.Name())
}

// List returns every supported object in the bucket, sorted by key.
func (s *S3Store) List(ctx context.Context) ([]Document, error) {
	if err := s.checkBucket(ctx); err != nil {
		return nil, err
	}
	var docs []Document
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", s.bucket, obj.Err)
		}
		if obj.Key == "" || !supported(obj.Key) {
			continue
		}
		docs = append(docs, Document{Ref: obj.Key, ModTime: obj.LastModified})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Ref < docs[j].Ref })
	return docs, nil
}

// classify maps missing-object responses to ErrNotFound.
func classify(ref string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	return fmt.Errorf("reading %s: %w", ref, err)
}
