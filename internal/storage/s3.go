package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// S3Config holds connection settings for an S3-compatible endpoint.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL prefixes public object URLs; defaults to Endpoint.
	PublicBaseURL string
	UsePathStyle  bool
}

type s3API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Store implements ObjectStore with aws-sdk-go-v2.
type S3Store struct {
	client     s3API
	publicBase string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = cfg.Endpoint
	}

	return &S3Store{client: client, publicBase: base}, nil
}

func (s *S3Store) List(ctx context.Context, bucket, prefix string, limit int) ([]Object, error) {
	in := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		in.Prefix = aws.String(prefix)
	}
	if limit > 0 {
		in.MaxKeys = aws.Int32(int32(limit))
	}

	out, err := s.client.ListObjectsV2(ctx, in)
	if err != nil {
		return nil, wrap("list", bucket, classifyS3(err), err)
	}
	return toObjects(out.Contents), nil
}

func (s *S3Store) ListFolder(ctx context.Context, bucket, folder string) ([]Object, error) {
	in := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if folder != "" {
		in.Prefix = aws.String(folder + "/")
	}

	var result []Object
	p := s3.NewListObjectsV2Paginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, wrap("list_folder", bucket, classifyS3(err), err)
		}
		result = append(result, toObjects(page.Contents)...)
	}
	return result, nil
}

func (s *S3Store) Upload(ctx context.Context, bucket, path string, data []byte, opts UploadOptions) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if !opts.Upsert {
		in.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return wrap("upload", bucket, classifyS3(err), err)
	}
	return nil
}

func (s *S3Store) PublicURL(bucket, path string) string {
	return publicURL(s.publicBase, bucket, path)
}

// classifyS3 trusts service error codes over message text: a response from
// the service is never a connectivity failure.
func classifyS3(err error) Kind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "NoSuchBucket" {
			return KindBucketNotFound
		}
		return KindOther
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return KindNetwork
	}

	return Classify(err)
}

func toObjects(contents []types.Object) []Object {
	objs := make([]Object, 0, len(contents))
	for _, c := range contents {
		o := Object{Key: aws.ToString(c.Key), Size: aws.ToInt64(c.Size)}
		if c.LastModified != nil {
			o.LastModified = *c.LastModified
		}
		objs = append(objs, o)
	}
	return objs
}

var _ ObjectStore = (*S3Store)(nil)
