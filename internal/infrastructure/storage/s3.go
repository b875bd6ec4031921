package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/config"
	"cloudflix/services/streaming-api/internal/utils/storagekey"
)

// keyFolder is the logical folder prefix applied to object-store keys.
const keyFolder = "videos/"

// S3 stores objects in an S3-compatible bucket and issues pre-signed GET
// URLs with a configured expiry.
type S3 struct {
	bucket    string
	client    *s3.Client
	presigner *s3.PresignClient
	ttl       time.Duration
	log       zerolog.Logger
}

// NewS3 creates the S3 backend from static credentials, honoring a custom
// endpoint for S3-compatible services.
func NewS3(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3, error) {
	logger := log.With().Str("component", "s3-storage").Logger()

	if cfg.S3Bucket == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("VIDEO_S3_BUCKET and credentials are required for the s3 backend")
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	logger.Info().
		Str("bucket", cfg.S3Bucket).
		Str("region", cfg.S3Region).
		Dur("presign_ttl", cfg.S3PresignTTL).
		Msg("s3 storage initialized")

	return &S3{
		bucket:    cfg.S3Bucket,
		client:    client,
		presigner: s3.NewPresignClient(client),
		ttl:       cfg.S3PresignTTL,
		log:       logger,
	}, nil
}

func (s *S3) Store(ctx context.Context, content io.Reader, size int64, title, originalFilename, contentType string) (key string, err error) {
	defer func(start time.Time) { observe("s3", "store", start, err) }(time.Now())

	if size <= 0 {
		return "", ErrEmptyContent
	}

	key = keyFolder + storagekey.New(title, originalFilename)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          content,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", ErrUnavailable, key, err)
	}

	s.log.Debug().
		Str("key", key).
		Int64("bytes", size).
		Str("content_type", contentType).
		Msg("object stored in s3")

	return key, nil
}

func (s *S3) Open(ctx context.Context, key string) (res Resource, err error) {
	defer func(start time.Time) { observe("s3", "open", start, err) }(time.Now())

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: head %s: %v", ErrUnavailable, key, err)
	}

	return &s3Resource{
		backend: s,
		key:     key,
		length:  aws.ToInt64(head.ContentLength),
	}, nil
}

// GetURL checks existence first so a deleted key surfaces as not-found
// rather than a signing failure.
func (s *S3) GetURL(ctx context.Context, key string) (string, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("%w: head %s: %v", ErrUnavailable, key, err)
	}

	signed, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("%w: presign %s: %v", ErrSigning, key, err)
	}
	return signed.URL, nil
}

// Delete is idempotent: S3 treats deleting an absent key as success.
func (s *S3) Delete(ctx context.Context, key string) (removed bool, err error) {
	defer func(start time.Time) { observe("s3", "delete", start, err) }(time.Now())

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return true, nil
		}
		return false, fmt.Errorf("%w: delete %s: %v", ErrUnavailable, key, err)
	}
	return true, nil
}

// Health performs a HeadBucket request.
func (s *S3) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

type s3Resource struct {
	backend *S3
	key     string
	length  int64
}

func (r *s3Resource) Length() int64 {
	return r.length
}

func (r *s3Resource) ReadRange(ctx context.Context, start, end int64) (io.ReadCloser, error) {
	out, err := r.backend.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.backend.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, r.key)
		}
		return nil, fmt.Errorf("%w: get %s: %v", ErrUnavailable, r.key, err)
	}
	return out.Body, nil
}

func (r *s3Resource) Close() error {
	return nil
}

func isS3NotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return strings.EqualFold(code, "NotFound") || strings.EqualFold(code, "NoSuchKey")
	}
	return false
}
