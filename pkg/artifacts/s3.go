package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/langreg/pkg/registration"
)

var s3Tracer = otel.Tracer("langreg/artifacts/s3")

// S3Config configures the S3 sink
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// s3API is the subset of the S3 client the sink uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads artifacts to an S3 bucket under an optional key prefix
type S3Sink struct {
	client s3API
	bucket string
	prefix string
}

var _ registration.Sink = (*S3Sink)(nil)

// NewS3Sink creates an S3 sink from cfg
func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var awsConfig aws.Config
	var err error

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		// static credentials for MinIO or explicit keys
		awsConfig, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		awsConfig, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	return newS3Sink(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Sink(client s3API, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key for an artifact path
func (s *S3Sink) Key(p string) string {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if s.prefix == "" {
		return p
	}
	return s.prefix + "/" + p
}

// Create returns a buffering writer. Close uploads the content.
func (s *S3Sink) Create(ctx context.Context, p string) (io.WriteCloser, error) {
	return &s3Writer{ctx: ctx, sink: s, key: s.Key(p)}, nil
}

type s3Writer struct {
	ctx  context.Context
	sink *S3Sink
	key  string
	buf  bytes.Buffer
	done bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.done {
		return 0, ErrWriterClosed
	}
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	if w.done {
		return ErrWriterClosed
	}
	w.done = true

	ctx, span := s3Tracer.Start(w.ctx, "S3.PutObject",
		trace.WithAttributes(
			attribute.String("s3.operation", "PutObject"),
			attribute.String("s3.bucket", w.sink.bucket),
			attribute.String("s3.key", w.key),
			attribute.Int("s3.size", w.buf.Len()),
		),
	)
	defer span.End()

	_, err := w.sink.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.sink.bucket),
		Key:         aws.String(w.key),
		Body:        bytes.NewReader(w.buf.Bytes()),
		ContentType: aws.String("text/plain; charset=ISO-8859-1"),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put object failed")
		return fmt.Errorf("%w: s3://%s/%s: %v", ErrUploadFailed, w.sink.bucket, w.key, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (w *s3Writer) Abort() error {
	w.done = true
	w.buf.Reset()
	return nil
}
