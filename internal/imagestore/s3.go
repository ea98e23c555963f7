// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package imagestore

import (
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// S3Config describes an S3 or S3-compatible (MinIO) bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL is the base under which uploaded keys are served.
	PublicURL string
	Prefix    string
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores images as objects in a bucket.
type S3 struct {
	client s3API
	cfg    S3Config
	newKey func() string
}

// NewS3 builds a client from cfg. Static credentials are used when set,
// otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, oops.Code("IMAGESTORE_INIT_FAILED").With("provider", "s3").Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3(client, cfg), nil
}

func newS3(client s3API, cfg S3Config) *S3 {
	return &S3{client: client, cfg: cfg, newKey: func() string { return ulid.Make().String() }}
}

func (s *S3) key(ext string) string {
	return path.Join(s.cfg.Prefix, s.newKey()+ext)
}

// Upload puts the file at p into the bucket under a fresh key.
func (s *S3) Upload(ctx context.Context, p string) (identity.Image, error) {
	f, err := os.Open(p) //nolint:gosec // path comes from the upload handler's temp file
	if err != nil {
		return identity.Image{}, oops.Code("IMAGE_UPLOAD_FAILED").With("provider", "s3").Wrap(err)
	}
	defer f.Close() //nolint:errcheck // read-only

	ext := strings.ToLower(filepath.Ext(p))
	key := s.key(ext)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return identity.Image{}, oops.Code("IMAGE_UPLOAD_FAILED").
			With("provider", "s3").
			With("bucket", s.cfg.Bucket).
			With("key", key).
			Wrap(err)
	}
	return identity.Image{URL: strings.TrimRight(s.cfg.PublicURL, "/") + "/" + key, ExternalID: key}, nil
}

// Remove deletes the object stored under externalID.
func (s *S3) Remove(ctx context.Context, externalID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(externalID),
	})
	if err != nil {
		return oops.Code("IMAGE_REMOVE_FAILED").
			With("provider", "s3").
			With("key", externalID).
			Wrap(err)
	}
	return nil
}

var _ identity.ImageStore = (*S3)(nil)
