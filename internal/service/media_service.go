package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	cfg "github.com/jhshakil/kocialpilot/configs"
)

// MediaService uploads inline image payloads to Cloudflare R2 so the Graph
// adapters get a public URL to work with.
type MediaService struct {
	config cfg.Config
}

func NewMediaService(config cfg.Config) *MediaService {
	return &MediaService{config: config}
}

// Enabled reports whether R2 is fully configured. When it is not, inline
// images stay inline and the adapters apply their documented fallbacks.
func (m *MediaService) Enabled() bool {
	r2 := m.config.R2
	return r2.AccountID != "" && r2.AccessKey != "" && r2.SecretKey != "" &&
		r2.BucketName != "" && r2.PublicURL != ""
}

func (m *MediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(m.config.R2.AccessKey, m.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", m.config.R2.AccountID))
	}), nil
}

// UploadImage decodes a data URI, verifies it is an image and uploads it,
// returning the public URL.
func (m *MediaService) UploadImage(ctx context.Context, dataURI string) (string, error) {
	payload, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	kind, err := filetype.Match(payload)
	if err != nil || !filetype.IsImage(payload) {
		return "", errors.New("inline data is not a supported image")
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	key = key + "." + kind.Extension

	client, err := m.r2Client(ctx)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(m.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(kind.MIME.Value),
	}
	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("%s/%s", strings.TrimSuffix(m.config.R2.PublicURL, "/"), key), nil
}

func decodeDataURI(dataURI string) ([]byte, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return nil, errors.New("not a data URI")
	}
	idx := strings.Index(dataURI, ";base64,")
	if idx < 0 {
		return nil, errors.New("data URI is not base64 encoded")
	}

	payload, err := base64.StdEncoding.DecodeString(dataURI[idx+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode inline image data: %w", err)
	}
	return payload, nil
}
