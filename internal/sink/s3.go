package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/livinlefevreloca/fakeout/internal/synth"
)

// S3Sink writes batch exports as objects in an S3 bucket and deletes them
// when the retention sweep asks. Object keys are
// folder_path/<pipeline>_<timestamp>.<filetype>.
type S3Sink struct {
	client   *s3.Client
	bucket   string
	folder   string
	pipeline string
	filetype string
}

// NewS3Sink builds an S3 client from the connection config. Static
// credentials and a custom endpoint are optional; absent, the default AWS
// credential chain applies.
func NewS3Sink(ctx context.Context, cfg Config, pipeline, filetype string) (*S3Sink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Sink{
		client:   client,
		bucket:   cfg.BucketName,
		folder:   cfg.FolderPath,
		pipeline: pipeline,
		filetype: filetype,
	}, nil
}

// Deliver uploads the encoded batch as one object and returns its key
func (s *S3Sink) Deliver(ctx context.Context, at time.Time, batch []synth.Record) (string, error) {
	payload, err := Encode(s.filetype, batch)
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}

	key := path.Join(s.folder, artifactName(s.pipeline, at, s.filetype))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType(s.filetype)),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}

	return key, nil
}

// Delete removes the object. S3 DeleteObject succeeds for absent keys, which
// gives the idempotency the retention sweep relies on.
func (s *S3Sink) Delete(ctx context.Context, location string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(location),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", s.bucket, location, err)
	}
	return nil
}

func (s *S3Sink) Close() error {
	return nil
}
