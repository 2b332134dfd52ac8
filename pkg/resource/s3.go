package resource

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the part of *s3.Client the cache uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// WithS3 serves s3://bucket/key URLs from client. Without it such URLs fail.
//
//	client := s3.New(s3.Options{Region: "eu-west-1", Credentials: creds})
//	cache := resource.NewCache(resource.WithS3(client))
//	cache.Get(ctx, "s3://assets/greeting.txt")
func WithS3(client ObjectGetter) Option {
	return func(c *Cache) {
		c.objects = client
	}
}

// parseS3URL splits s3://bucket/key. ok is false for other schemes.
func parseS3URL(url string) (bucket, key string, ok bool, err error) {
	rest, found := strings.CutPrefix(url, "s3://")
	if !found {
		return "", "", false, nil
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", true, fmt.Errorf("invalid object URL %q: want s3://bucket/key", url)
	}
	return bucket, key, true, nil
}

func (c *Cache) getObject(ctx context.Context, url, bucket, key string) (string, error) {
	if c.objects == nil {
		return "", fmt.Errorf("GET %s: no S3 client configured", url)
	}
	out, err := c.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}

// S3Config configures NewS3Client.
type S3Config struct {
	Region string

	// Endpoint overrides the service endpoint, e.g. for MinIO.
	Endpoint string

	// PathStyle addresses buckets as endpoint/bucket instead of
	// bucket.endpoint.
	PathStyle bool

	// Credentials signs requests. nil sends anonymous requests.
	Credentials aws.CredentialsProvider
}

// NewS3Client creates an S3 client for WithS3.
func NewS3Client(config S3Config) *s3.Client {
	opts := s3.Options{
		Region:       config.Region,
		UsePathStyle: config.PathStyle,
		Credentials:  config.Credentials,
	}
	if opts.Credentials == nil {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	if config.Endpoint != "" {
		opts.BaseEndpoint = aws.String(config.Endpoint)
	}
	return s3.New(opts)
}
