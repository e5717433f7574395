package main

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/palikaops/survey-pipeline/processor"
)

type SourceAdapter interface {
	Run(context.Context) error
	Subscribe(processor.Processor)
}

// withRetry runs fn up to limit times with linearly growing waits. Used for
// the platform's HTTP calls; an exhausted retry aborts only the operation it
// wraps, never the whole page.
func withRetry(ctx context.Context, limit int, wait time.Duration, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= limit; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt < limit {
			log.Printf("%s failed (attempt %d/%d): %v", op, attempt, limit, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait * time.Duration(attempt)):
			}
		}
	}
	return errors.Wrapf(err, "%s failed after %d attempts", op, limit)
}

// BlobStore stores fetched submission attachments (photos, audio).
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
}

// S3BlobStore writes attachments to an S3 bucket.
type S3BlobStore struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3BlobStore(config map[string]interface{}) (*S3BlobStore, error) {
	bucket, ok := config["bucket"].(string)
	if !ok {
		return nil, errors.New("bucket must be specified")
	}

	region, ok := config["region"].(string)
	if !ok {
		region = "us-east-1"
	}

	prefix, _ := config["prefix"].(string)

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "error loading AWS config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint, ok := config["endpoint"].(string); ok && endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3BlobStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *S3BlobStore) Put(ctx context.Context, name, contentType string, data []byte) error {
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Wrapf(err, "error storing attachment %s", key)
	}
	return nil
}
