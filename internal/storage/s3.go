package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/dmitrijs2005/draftkeeper/internal/autosave"
	"github.com/dmitrijs2005/draftkeeper/internal/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

const defaultS3Region = "us-east-1"

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Documents saves every document as one object under a key prefix.
// Works with AWS and with S3-compatible servers such as MinIO.
type S3Documents struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Documents builds the client from cfg. optFns are applied after the
// endpoint settings.
func NewS3Documents(ctx context.Context, cfg config.S3Config, optFns ...func(*s3.Options)) (*S3Documents, error) {
	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	opts := []func(*s3.Options){func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	}}
	opts = append(opts, optFns...)

	return &S3Documents{
		client: newS3ClientFromConfig(awsCfg, opts...),
		bucket: cfg.Bucket,
		prefix: cfg.Key,
	}, nil
}

func (s *S3Documents) objectKey(id string) string {
	if s.prefix == "" {
		return id
	}
	return path.Join(s.prefix, id)
}

func (s *S3Documents) SaveDocument(ctx context.Context, doc Document) error {
	key := s.objectKey(doc.ID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(doc.Content),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata: map[string]string{
			"digest":     fmt.Sprintf("%x", doc.Digest),
			"word-count": strconv.Itoa(doc.WordCount),
			"saved-at":   doc.SavedAt.Format(time.RFC3339Nano),
			"revision":   uuid.NewString(),
		},
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, classifyS3(err))
	}
	return nil
}

// classifyS3 marks errors where the request could not be sent.
func classifyS3(err error) error {
	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) || autosave.IsConnectivityError(err) {
		return fmt.Errorf("%w: %w", autosave.ErrConnectivity, err)
	}
	return err
}
