package templates

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	ierrors "github.com/iqwerty/iq/internal/errors"
)

// S3 fetches templates from an S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	src := templates.NewS3(s3.NewFromConfig(cfg), "my-bucket", "templates/")
//	markup, err := src.Fetch(ctx, "ticker-clock.html")
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates an S3 source.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: key prefix templates live under (e.g. "templates/")
func NewS3(client *s3.Client, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// Fetch implements Source.
func (s *S3) Fetch(ctx context.Context, name string) (string, error) {
	key := s.prefix + strings.TrimLeft(name, "/")
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", ierrors.Wrap("E202", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return "", ierrors.Wrap("E202", err)
	}
	return string(body), nil
}
