// Package objects hands out presigned S3 URLs for user avatars. Uploads and
// downloads go straight to the object store; the server only signs.
package objects

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/gatekeeper/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Presigned is a URL the client can use without further credentials.
type Presigned struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
	now     func() time.Time
}

// New builds the S3 client once. No request is sent to the store.
func New(ctx context.Context, cfg *sc.Config) (*Service, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &Service{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
		ttl:     cfg.PresignTTL,
		now:     time.Now,
	}, nil
}

// AvatarKey is the object key of a user's avatar.
func AvatarKey(userID string) string {
	return "avatars/" + userID
}

// AvatarUpload signs a PUT for the caller's own avatar.
func (s *Service) AvatarUpload(ctx context.Context, userID string) (*Presigned, error) {
	key := AvatarKey(userID)
	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}
	return &Presigned{Key: key, URL: req.URL, Method: req.Method, ExpiresAt: s.now().Add(s.ttl)}, nil
}

// AvatarDownload signs a GET for any user's avatar.
func (s *Service) AvatarDownload(ctx context.Context, userID string) (*Presigned, error) {
	key := AvatarKey(userID)
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign get %s: %w", key, err)
	}
	return &Presigned{Key: key, URL: req.URL, Method: req.Method, ExpiresAt: s.now().Add(s.ttl)}, nil
}
