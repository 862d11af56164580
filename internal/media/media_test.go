package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendzone/internal/config"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func testUploader(p objectPutter, max int64) *S3Uploader {
	u := newS3Uploader(p, config.Media{S3Bucket: "vendzone-photos", Prefix: "hygiene-reports/", MaxBytes: max})
	u.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	return u
}

func TestNewWithoutBucketIsDisabled(t *testing.T) {
	u, err := New(context.Background(), config.Media{})
	require.NoError(t, err)
	assert.False(t, u.Enabled())
	_, err = u.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}

func TestUploadPutsObject(t *testing.T) {
	p := &fakePutter{}
	url, err := testUploader(p, 1024).Upload(context.Background(), "Stall Photo.JPG", "image/jpeg; charset=binary", strings.NewReader("jpegdata"))
	require.NoError(t, err)

	require.NotNil(t, p.in)
	assert.Equal(t, "vendzone-photos", *p.in.Bucket)
	assert.Equal(t, "image/jpeg", *p.in.ContentType)
	assert.True(t, strings.HasPrefix(*p.in.Key, "hygiene-reports/2025/03/14/"), *p.in.Key)
	assert.True(t, strings.HasSuffix(*p.in.Key, "-stall-photo.jpg"), *p.in.Key)
	assert.Equal(t, "jpegdata", p.body)
	assert.Equal(t, "s3://vendzone-photos/"+*p.in.Key, url)
}

func TestUploadRejects(t *testing.T) {
	p := &fakePutter{}
	u := testUploader(p, 4)

	_, err := u.Upload(context.Background(), "a.gif", "image/gif", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrContentType)

	_, err = u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("too big"))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Nil(t, p.in, "nothing reaches storage")

	p.err = errors.New("access denied")
	_, err = u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("ok"))
	assert.ErrorContains(t, err, "access denied")
}
