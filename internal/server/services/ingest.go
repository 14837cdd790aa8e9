package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/lingvera/lingvera/internal/common"
	"github.com/lingvera/lingvera/internal/logging"
	"github.com/lingvera/lingvera/internal/netx"
	sc "github.com/lingvera/lingvera/internal/server/config"
	"github.com/lingvera/lingvera/internal/server/models"
)

const stagedURLValidity = 15 * time.Minute

// Seams for unit tests: the AWS SDK constructors and presign calls are
// package variables so tests can substitute fakes without a live endpoint.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteStagedObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}

	fetchStagedObject = netx.DownloadFromPresignedURL
)

// originalAttacher is the part of ProjectService staged ingestion feeds into.
type originalAttacher interface {
	AttachOriginal(ctx context.Context, userID, id string, content []byte, filename, mimeType string) (*models.Project, error)
}

// StagedUploadService handles very large originals: the client PUTs the raw
// document to an S3-compatible staging bucket via a presigned URL, then asks
// the server to complete the upload. Completion pulls the staged object,
// pushes it through the normal policy/vault path, and removes the staging
// copy. The staging bucket only ever holds transient plaintext uploads;
// durable storage stays in the vault.
type StagedUploadService struct {
	config   *sc.Config
	projects originalAttacher
	logger   logging.Logger
}

// NewStagedUploadService constructs a StagedUploadService.
func NewStagedUploadService(cfg *sc.Config, projects originalAttacher, logger logging.Logger) *StagedUploadService {
	return &StagedUploadService{
		config:   cfg,
		projects: projects,
		logger:   logger.With("module", "staged_uploads"),
	}
}

// Enabled reports whether an S3 staging endpoint is configured.
func (s *StagedUploadService) Enabled() bool {
	return s.config.StagedUploadsEnabled()
}

func makeStagingKey() string {
	d := time.Now()
	return fmt.Sprintf("staging/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *StagedUploadService) getClients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, newS3PresignClient(client), nil
}

// PresignStagedUpload issues a staging key and a presigned PUT URL the
// client uploads the raw document to.
func (s *StagedUploadService) PresignStagedUpload(ctx context.Context) (string, string, error) {
	if !s.Enabled() {
		return "", "", fmt.Errorf("%w: staged uploads are not configured", common.ErrConfiguration)
	}

	_, presignClient, err := s.getClients(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := makeStagingKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(stagedURLValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// CompleteStagedUpload pulls the staged object, attaches it to the project
// through the standard policy/vault path, and deletes the staging copy.
// Validation failures leave the staged object in place so the client can
// retry completion without re-uploading.
func (s *StagedUploadService) CompleteStagedUpload(ctx context.Context, userID, projectID, key, filename, mimeType string) (*models.Project, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: staged uploads are not configured", common.ErrConfiguration)
	}

	client, presignClient, err := s.getClients(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(stagedURLValidity))
	if err != nil {
		return nil, err
	}

	content, err := fetchStagedObject(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: staged object unavailable", common.ErrorNotFound)
	}

	project, err := s.projects.AttachOriginal(ctx, userID, projectID, content, filename, mimeType)
	if err != nil {
		return nil, err
	}

	if _, err := deleteStagedObject(client, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		s.logger.Warn(ctx, "failed to delete staged object", "key", key, "error", err.Error())
	}

	return project, nil
}
