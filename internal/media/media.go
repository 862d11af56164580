// Package media hands report photos off to object storage. The engine only
// ever sees the resulting URL.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"vendzone/internal/config"
)

var (
	ErrUploadsDisabled = errors.New("photo uploads are not configured")
	ErrTooLarge        = errors.New("photo exceeds the size limit")
	ErrContentType     = errors.New("unsupported photo content type")
)

// Uploader stores one photo and returns where it lives.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Enabled() bool
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// objectPutter is the slice of the S3 client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	client   objectPutter
	bucket   string
	prefix   string
	maxBytes int64
	now      func() time.Time
}

// New returns an S3 uploader when a bucket is configured and a disabled one
// otherwise.
func New(ctx context.Context, cfg config.Media) (Uploader, error) {
	if cfg.S3Bucket == "" {
		return Disabled{}, nil
	}
	region := cfg.AWSRegion
	if region == "" {
		region = "ap-south-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newS3Uploader(s3.NewFromConfig(awsCfg), cfg), nil
}

func newS3Uploader(client objectPutter, cfg config.Media) *S3Uploader {
	return &S3Uploader{
		client:   client,
		bucket:   cfg.S3Bucket,
		prefix:   cfg.Prefix,
		maxBytes: cfg.MaxBytes,
		now:      time.Now,
	}
}

func (u *S3Uploader) Enabled() bool { return u != nil && u.client != nil && u.bucket != "" }

func (u *S3Uploader) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if !u.Enabled() {
		return "", ErrUploadsDisabled
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := extensions[ct]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrContentType, contentType)
	}
	data, err := readLimited(body, u.maxBytes)
	if err != nil {
		return "", err
	}
	key := u.key(name, ext)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ct),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}

// key lays photos out by upload day: <prefix>2025/03/14/<uuid>-<name><ext>.
func (u *S3Uploader) key(name, ext string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	base = sanitize(base)
	id := uuid.NewString()
	if base != "" {
		id += "-" + base
	}
	return u.prefix + u.now().UTC().Format("2006/01/02") + "/" + id + ext
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	out := b.String()
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrUploadsDisabled
}
