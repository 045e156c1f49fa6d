package export

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/samonya/pkg/observability"
)

// Location says where a stored artifact can be fetched
type Location struct {
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Kind     Kind   `json:"kind"`
	Size     int    `json:"size"`
	// Data is the base64 body for inline delivery
	Data string `json:"data,omitempty"`
	Key  string `json:"key,omitempty"`
	URL  string `json:"url,omitempty"`
}

func locationFor(a Artifact) Location {
	return Location{Filename: a.Filename, MIME: a.MIME, Kind: a.Kind, Size: len(a.Data)}
}

// Store persists artifacts
type Store interface {
	Put(ctx context.Context, sessionID string, a Artifact) (Location, error)
}

// InlineStore keeps nothing and returns artifacts in the response body
type InlineStore struct{}

// Put implements Store
func (InlineStore) Put(_ context.Context, _ string, a Artifact) (Location, error) {
	loc := locationFor(a)
	loc.Data = base64.StdEncoding.EncodeToString(a.Data)
	return loc, nil
}

// S3Config configures S3Store
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	// PresignTTL, when positive, makes Put return a presigned GET URL
	PresignTTL time.Duration
}

// s3API is the subset of *s3.Client used by S3Store
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

type presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store uploads artifacts to an S3 compatible bucket
type S3Store struct {
	client     s3API
	presign    presigner
	bucket     string
	presignTTL time.Duration
	tracer     trace.Tracer
}

// NewS3Store connects to S3 and makes sure the bucket exists
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		// static keys for MinIO or explicit AWS credentials
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	if err := ensureBucket(ctx, client, cfg.Bucket); err != nil {
		return nil, err
	}

	store := newS3Store(client, cfg.Bucket)
	if cfg.PresignTTL > 0 {
		store.presign = s3.NewPresignClient(client)
		store.presignTTL = cfg.PresignTTL
	}
	return store, nil
}

func newS3Store(client s3API, bucket string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		tracer: observability.Tracer("export"),
	}
}

// ObjectKey is where an artifact of sessionID lands in the bucket
func ObjectKey(sessionID, filename string) string {
	return path.Join("exports", sessionID, filename)
}

// Put implements Store
func (s *S3Store) Put(ctx context.Context, sessionID string, a Artifact) (Location, error) {
	key := ObjectKey(sessionID, a.Filename)

	ctx, span := s.tracer.Start(ctx, "S3.PutObject",
		trace.WithAttributes(
			attribute.String("s3.bucket", s.bucket),
			attribute.String("s3.key", key),
			attribute.String("content.type", a.MIME),
			attribute.Int("content.size", len(a.Data)),
		),
	)
	defer span.End()

	sum := sha256.Sum256(a.Data)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(a.Data),
		ContentType:        aws.String(a.MIME),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", a.Filename)),
		Metadata: map[string]string{
			"checksum-sha256": hex.EncodeToString(sum[:]),
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload to s3")
		return Location{}, fmt.Errorf("failed to upload %s: %w", a.Filename, err)
	}

	loc := locationFor(a)
	loc.Key = key
	loc.URL = fmt.Sprintf("s3://%s/%s", s.bucket, key)
	if s.presign != nil {
		req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(s.presignTTL))
		if err != nil {
			span.RecordError(err)
			return Location{}, fmt.Errorf("failed to presign %s: %w", a.Filename, err)
		}
		loc.URL = req.URL
	}
	return loc, nil
}

func ensureBucket(ctx context.Context, client s3API, bucket string) error {
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}
	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil && !isBucketOwned(err) {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func isBucketOwned(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "BucketAlreadyExists") || strings.Contains(msg, "BucketAlreadyOwnedByYou")
}
