// Package storage uploads exported documents to an S3-compatible object
// store (AWS S3, Cloudflare R2, MinIO).
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pkordes/dayplanner/internal/domain"
)

// S3Config configures an S3Uploader.
type S3Config struct {
	Bucket        string
	Endpoint      string // empty means AWS
	Region        string // "auto" for R2
	AccessKey     string // empty falls back to the default credential chain
	SecretKey     string
	PublicBaseURL string // prefix of returned URLs; defaults to Endpoint/Bucket
}

// putter is the part of *s3.Client the uploader uses.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader writes objects to one bucket.
type S3Uploader struct {
	client  putter
	bucket  string
	baseURL string
}

// NewS3Uploader builds an S3 client for cfg. Path-style addressing is used so
// any S3-compatible endpoint works without DNS-style bucket hosts.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage.NewS3Uploader: missing bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewS3Uploader: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})
	return newS3Uploader(client, cfg), nil
}

func newS3Uploader(client putter, cfg S3Config) *S3Uploader {
	base := cfg.PublicBaseURL
	if base == "" {
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = "https://s3.amazonaws.com"
		}
		base = strings.TrimRight(endpoint, "/") + "/" + cfg.Bucket
	}
	return &S3Uploader{client: client, bucket: cfg.Bucket, baseURL: strings.TrimRight(base, "/")}
}

// Upload stores body under key and returns its public URL.
// Failures wrap domain.ErrUpstream.
func (u *S3Uploader) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("storage.S3Uploader.Upload: %w: %w", domain.ErrUpstream, err)
	}
	return u.baseURL + "/" + key, nil
}
