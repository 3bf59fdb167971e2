package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API S3Store가 사용하는 S3 클라이언트 메서드
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options S3 연결 설정
type S3Options struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// Endpoint MinIO 등 S3 호환 저장소 주소, 비어 있으면 AWS
	Endpoint string
	// PublicBaseURL 공개 URL 기본 주소, 비어 있으면 버킷 가상 호스트 주소
	PublicBaseURL string
	Prefix        string
}

// NewS3Client S3 클라이언트 생성
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				opts.AccessKey,
				opts.SecretKey,
				"",
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Store S3 버킷 저장소. 객체 키는 <prefix><scheme>/<path> 입니다.
type S3Store struct {
	client  S3API
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Store S3Store 생성
func NewS3Store(client S3API, opts S3Options) *S3Store {
	baseURL := strings.TrimRight(opts.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return &S3Store{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  opts.Prefix,
		baseURL: baseURL,
	}
}

func (s *S3Store) key(uri string) (string, error) {
	scheme, p, err := ParseURI(uri)
	if err != nil {
		return "", err
	}
	return s.prefix + scheme + "/" + p, nil
}

func (s *S3Store) Put(ctx context.Context, uri string, r io.Reader, size int64, contentType string) error {
	key, err := s.key(uri)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPrivate,
		// 조건부 쓰기: 같은 키가 있으면 412
		IfNoneMatch: aws.String("*"),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		if isConditionalWriteConflict(err) {
			return fmt.Errorf("%w: %s", ErrObjectExists, uri)
		}
		return fmt.Errorf("failed to upload file to s3: %w", err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, uri string) (bool, error) {
	key, err := s.key(uri)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check s3 object: %w", err)
}

func (s *S3Store) Delete(ctx context.Context, uri string) error {
	key, err := s.key(uri)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from s3: %w", err)
	}
	return nil
}

func (s *S3Store) PublicURL(uri string) string {
	key, err := s.key(uri)
	if err != nil {
		return ""
	}
	return s.baseURL + "/" + key
}

// isConditionalWriteConflict If-None-Match 조건 실패(412) 또는 동시 조건부 쓰기 충돌(409)
func isConditionalWriteConflict(err error) bool {
	var respErr *awshttp.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	switch respErr.HTTPStatusCode() {
	case http.StatusPreconditionFailed, http.StatusConflict:
		return true
	}
	return false
}
