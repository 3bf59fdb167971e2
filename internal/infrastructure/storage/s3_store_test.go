package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockS3API is a mock implementation
type MockS3API struct {
	mock.Mock
}

func (m *MockS3API) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3API) HeadObject(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func (m *MockS3API) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func newTestS3Store(client S3API) *S3Store {
	return NewS3Store(client, S3Options{Region: "ap-northeast-2", Bucket: "semo-files", Prefix: "uploads/"})
}

func TestS3Store_Put(t *testing.T) {
	client := new(MockS3API)
	store := newTestS3Store(client)

	var body []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "semo-files" &&
			aws.ToString(in.Key) == "uploads/public/2026-10/photo.png" &&
			aws.ToString(in.ContentType) == "image/png" &&
			aws.ToInt64(in.ContentLength) == 4 &&
			in.ACL == s3types.ObjectCannedACLPrivate &&
			aws.ToString(in.IfNoneMatch) == "*"
	})).Run(func(args mock.Arguments) {
		body, _ = io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
	}).Return(&s3.PutObjectOutput{}, nil)

	err := store.Put(context.Background(), "public://2026-10/photo.png", strings.NewReader("data"), 4, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "data", string(body))
	client.AssertExpectations(t)
}

func s3ResponseError(status int) error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
			Err:      errors.New(http.StatusText(status)),
		},
		RequestID: "req-1",
	}
}

func TestS3Store_PutConflict(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantExists bool
	}{
		{name: "precondition failed", err: s3ResponseError(http.StatusPreconditionFailed), wantExists: true},
		{name: "concurrent conditional write", err: s3ResponseError(http.StatusConflict), wantExists: true},
		{name: "forbidden", err: s3ResponseError(http.StatusForbidden)},
		{name: "transport", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockS3API)
			client.On("PutObject", mock.Anything, mock.Anything).Return(nil, tt.err)

			err := newTestS3Store(client).Put(context.Background(), "public://a.png", strings.NewReader("x"), 1, "image/png")
			require.Error(t, err)
			assert.Equal(t, tt.wantExists, errors.Is(err, ErrObjectExists))
			// 기존 객체를 지우지 않음
			client.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
		})
	}
}

func TestS3Store_Exists(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
		wantErr  bool
	}{
		{name: "found", expected: true},
		{name: "not found", err: &s3types.NotFound{}, expected: false},
		{name: "other error", err: errors.New("throttled"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockS3API)
			if tt.err != nil {
				client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, tt.err)
			} else {
				client.On("HeadObject", mock.Anything, mock.Anything).Return(&s3.HeadObjectOutput{}, nil)
			}

			exists, err := newTestS3Store(client).Exists(context.Background(), "public://a.png")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

func TestS3Store_DeleteAndPublicURL(t *testing.T) {
	client := new(MockS3API)
	store := newTestS3Store(client)
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "uploads/private/a.png"
	})).Return(&s3.DeleteObjectOutput{}, nil)

	require.NoError(t, store.Delete(context.Background(), "private://a.png"))
	assert.Equal(t, "https://semo-files.s3.ap-northeast-2.amazonaws.com/uploads/public/a.png", store.PublicURL("public://a.png"))

	custom := NewS3Store(client, S3Options{Bucket: "b", PublicBaseURL: "https://cdn.test/"})
	assert.Equal(t, "https://cdn.test/public/a.png", custom.PublicURL("public://a.png"))
}
