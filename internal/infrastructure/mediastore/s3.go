package mediastore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/config"
	domain "chapel-server/media-api/internal/domain/media"
	"chapel-server/media-api/internal/infrastructure/metrics"
	"chapel-server/media-api/internal/utils/assetid"
	"chapel-server/media-api/internal/utils/platformerrors"
)

// S3Store stores originals in an S3-compatible bucket and derives variant
// URLs from a CDN URL template instead of eager transcoding results. This is
// the second derived-URL pattern the service supports: the edge constructs
// each variant on first request from the content id.
type S3Store struct {
	bucket      string
	client      *s3.Client
	urlTemplate string
	log         zerolog.Logger
}

func NewS3Store(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Store, error) {
	if cfg.S3Bucket == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("MEDIA_S3_BUCKET and credentials are required for the s3 backend")
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return &S3Store{
		bucket:      cfg.S3Bucket,
		client:      client,
		urlTemplate: cfg.CDNURLTemplate,
		log:         log.With().Str("component", "s3-store").Logger(),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, body io.Reader, size int64, opts domain.UploadOptions) (*domain.MediaAsset, error) {
	publicID := opts.PublicID
	if publicID == "" {
		publicID = opts.Folder + "/" + assetid.NewAsset()
	}

	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(publicID),
		Body:        body,
		ContentType: aws.String(opts.Mime),
	})
	if err != nil {
		metrics.RecordRemoteOperation("upload", "error", time.Since(start).Seconds())
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream, "s3 put object failed", err,
			"3f7c91a5-d2e8-4b60-8c14-a95d0e7f2b83")
	}
	metrics.RecordRemoteOperation("upload", "success", time.Since(start).Seconds())

	variants := make([]domain.Variant, 0, len(opts.Plan))
	for _, t := range opts.Plan {
		variants = append(variants, domain.Variant{
			Format: t.Format,
			URL:    s.variantURL(publicID, t.Format),
		})
	}

	return &domain.MediaAsset{
		PublicID: publicID,
		Kind:     opts.Kind,
		URL:      s.variantURL(publicID, formatFromMime(opts.Mime)),
		Variants: variants,
		Bytes:    size,
		Format:   formatFromMime(opts.Mime),
	}, nil
}

// Delete removes the object. S3 deletes are idempotent, so already-gone
// content needs no special handling.
func (s *S3Store) Delete(ctx context.Context, publicID string, kind domain.Kind) error {
	start := time.Now()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		metrics.RecordRemoteOperation("delete", "error", time.Since(start).Seconds())
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream, "s3 delete object failed", err,
			"c18e4a72-09f5-4d3b-ae67-52b9d0c3f814")
	}
	metrics.RecordRemoteOperation("delete", "success", time.Since(start).Seconds())
	return nil
}

// variantURL fills the CDN template. Supported placeholders: {id}, {format}.
func (s *S3Store) variantURL(publicID, format string) string {
	url := strings.ReplaceAll(s.urlTemplate, "{id}", publicID)
	return strings.ReplaceAll(url, "{format}", format)
}

func formatFromMime(mime string) string {
	if idx := strings.IndexByte(mime, '/'); idx >= 0 && idx+1 < len(mime) {
		return mime[idx+1:]
	}
	return "bin"
}
