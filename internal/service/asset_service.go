package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/shintaro-0909/omnipost/configs"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

// AssetService uploads post media to Cloudflare R2 and hands back the
// public URL callers put into a MediaItem.
type AssetService struct {
	config cfg.Config
}

func NewAssetService(cfg cfg.Config) *AssetService {
	return &AssetService{config: cfg}
}

func (s *AssetService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.R2.AccessKey, s.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.config.R2.AccountID))
	}), nil
}

// Upload stores file in the bucket and returns a MediaItem describing
// it. The mime type is sniffed from the file bytes, not trusted from the
// file name.
func (s *AssetService) Upload(ctx context.Context, fileName string, file []byte) (*transfer.MediaItem, error) {
	kind, err := filetype.Match(file)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	mediaType, err := mediaTypeFor(kind.MIME.Value)
	if err != nil {
		return nil, err
	}

	key, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	key = key + filepath.Ext(fileName)

	client, err := s.r2Client(ctx)
	if err != nil {
		return nil, err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(kind.MIME.Value),
	}

	_, err = client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &transfer.MediaItem{
		Type:     mediaType,
		URL:      fmt.Sprintf("%s/%s", strings.TrimRight(s.config.R2.PublicURL, "/"), key),
		MimeType: kind.MIME.Value,
	}, nil
}

func mediaTypeFor(mime string) (transfer.MediaType, error) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return transfer.MediaTypeImage, nil
	case strings.HasPrefix(mime, "video/"):
		return transfer.MediaTypeVideo, nil
	default:
		return "", fmt.Errorf("unsupported file type %q", mime)
	}
}
