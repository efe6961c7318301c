// server/internal/storage/s3.go
package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"fleetlog-api-server/config"
	"fleetlog-api-server/internal/apperror"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Store is the bucket-backed alternative to DiskStore, selected with
// storage.backend=s3. References are full object URLs (CloudFront when
// a domain is configured).
type S3Store struct {
	client           *s3.Client
	bucket           string
	region           string
	cloudFrontDomain string
	maxBytes         int64
}

func NewS3Store(cfg config.S3Config, maxSizeMB int64) (*S3Store, error) {
	sdkConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Store{
		client:           s3.NewFromConfig(sdkConfig),
		bucket:           cfg.Bucket,
		region:           cfg.Region,
		cloudFrontDomain: cfg.CloudFrontDomain,
		maxBytes:         maxSizeMB << 20,
	}, nil
}

func (s *S3Store) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ext, contentType, err := checkFile(file, s.maxBytes)
	if err != nil {
		return "", err
	}

	src, err := openUpload(file)
	if err != nil {
		return "", err
	}
	defer src.Close()

	objectKey := billSubdir + "/" + uuid.New().String() + ext
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        src,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", apperror.Storage("failed to upload expense bill to S3", err)
	}

	if s.cloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cloudFrontDomain, objectKey), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey), nil
}

func (s *S3Store) Remove(ctx context.Context, ref string) error {
	// The object key is everything after the domain.
	idx := strings.Index(ref, billSubdir+"/")
	if idx < 0 {
		return apperror.Validation("invalid expense bill reference")
	}
	objectKey := ref[idx:]

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return apperror.Storage("failed to delete expense bill from S3", err)
	}
	return nil
}
