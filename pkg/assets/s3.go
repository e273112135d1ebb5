package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// GetObjectAPI is the part of *s3.Client an S3Source uses.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// DefaultMaxObjectSize bounds how much of one object is buffered.
const DefaultMaxObjectSize = 32 << 20

// S3Source serves assets from an S3 bucket. Object bodies are buffered so
// range requests and conditional GETs work through http.ServeContent.
type S3Source struct {
	client  GetObjectAPI
	bucket  string
	prefix  string
	maxSize int64
}

// NewS3Source creates a source for bucket. Keys are prefix + asset name.
//
// Example:
//
//	client := assets.NewS3Client(assets.S3ClientConfig{Region: "us-east-1"})
//	src := assets.NewS3Source(client, "my-bucket", "canvas/")
func NewS3Source(client GetObjectAPI, bucket, prefix string) *S3Source {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Source{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		maxSize: DefaultMaxObjectSize,
	}
}

// WithMaxObjectSize sets the buffering limit.
func (s *S3Source) WithMaxObjectSize(n int64) *S3Source {
	s.maxSize = n
	return s
}

// Open fetches the object for name.
func (s *S3Source) Open(ctx context.Context, name string) (io.ReadSeekCloser, time.Time, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + name),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, time.Time{}, fmt.Errorf("assets: s3://%s/%s%s: %w", s.bucket, s.prefix, name, fs.ErrNotExist)
		}
		return nil, time.Time{}, fmt.Errorf("assets: s3 get failed: %w", err)
	}
	defer out.Body.Close()

	data, err := readLimited(out.Body, s.maxSize)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("assets: reading s3://%s/%s%s: %w", s.bucket, s.prefix, name, err)
	}
	return nopCloser{strings.NewReader(string(data))}, aws.ToTime(out.LastModified), nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// S3ClientConfig configures NewS3Client.
type S3ClientConfig struct {
	Region string

	// Endpoint overrides the service endpoint, e.g. for MinIO.
	Endpoint string

	// UsePathStyle addresses buckets as endpoint/bucket instead of
	// bucket.endpoint.
	UsePathStyle bool
}

// NewS3Client creates an anonymous S3 client, suitable for public buckets.
func NewS3Client(cfg S3ClientConfig) *s3.Client {
	return s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  aws.AnonymousCredentials{},
		UsePathStyle: cfg.UsePathStyle,
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
}
