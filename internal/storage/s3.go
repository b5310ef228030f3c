package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is the base under which the bucket's objects are served.
	PublicURL string
}

// S3Images stores profile images in a bucket under uploads/. References are
// absolute URLs rooted at PublicURL.
type S3Images struct {
	api       objectAPI
	bucket    string
	publicURL string
}

func NewS3Images(ctx context.Context, cfg S3Config) (*S3Images, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Images(client, cfg.Bucket, cfg.PublicURL), nil
}

func newS3Images(api objectAPI, bucket, publicURL string) *S3Images {
	return &S3Images{api: api, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *S3Images) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	up, err := readUpload(fh)
	if err != nil {
		return "", err
	}

	key := path.Join("uploads", up.name)
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(up.body),
		ContentType:   aws.String(up.contentType),
		ContentLength: aws.Int64(int64(len(up.body))),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *S3Images) Remove(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(strings.TrimPrefix(ref, s.publicURL), "/")
	if key == "" {
		return nil
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
