package backend

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Xensen008/Pixify/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage implements the Storage binding over an S3-compatible bucket.
type S3Storage struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

// NewS3Storage creates a Storage binding backed by an S3-compatible
// bucket. endpoint may be empty for stock AWS; publicBase is the base URL
// direct view links are built from.
func NewS3Storage(ctx context.Context, region, bucket, accessKey, secretKey, endpoint, publicBase string) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Storage{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// CreateFile uploads a file under the given id.
func (s *S3Storage) CreateFile(ctx context.Context, fileID, name, mimeType string, content []byte) (*models.FileInfo, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fileID),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file %s: %w", fileID, err)
	}

	return &models.FileInfo{
		ID:       fileID,
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(content)),
	}, nil
}

// GetFileView returns the direct public URL of a stored file. No
// transformation parameters are ever appended.
func (s *S3Storage) GetFileView(fileID string) string {
	return s.publicBase + "/" + fileID
}

// DeleteFile removes a stored file.
func (s *S3Storage) DeleteFile(ctx context.Context, fileID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}
	return nil
}
