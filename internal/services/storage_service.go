// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vendora/marketplace-backend/internal/config"
)

// StorageService stores uploaded assets (service images, badge icons, seller
// avatars) on S3, falling back to local disk when no bucket is configured.
type StorageService struct {
	config   *config.Config
	s3Client *s3.S3
	localDir string
}

type UploadOptions struct {
	// Folder is the key prefix, e.g. "services" or "badges".
	Folder string
	// MaxSize caps the upload in bytes; 0 means the 10MB default.
	MaxSize int64
	// ContentTypes restricts accepted MIME types; empty means images only.
	ContentTypes []string
}

type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

const defaultMaxUploadSize = 10 << 20

var imageContentTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	svc := &StorageService{
		config:   cfg,
		localDir: "uploads",
	}

	if cfg.AWS.S3Bucket != "" {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWS.Region),
			Credentials: credentials.NewStaticCredentials(
				cfg.AWS.AccessKeyID,
				cfg.AWS.SecretAccessKey,
				"",
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		svc.s3Client = s3.New(sess)
	} else {
		if err := os.MkdirAll(svc.localDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
		logrus.Warn("No S3 bucket configured, storing uploads on local disk")
	}

	return svc, nil
}

// Upload validates the file and writes it under a generated key. The key is
// <folder>/<yyyy/mm>/<uuid><ext> so objects shard by month.
func (s *StorageService) Upload(fileHeader *multipart.FileHeader, opts UploadOptions) (*UploadResult, error) {
	maxSize := opts.MaxSize
	if maxSize == 0 {
		maxSize = defaultMaxUploadSize
	}
	if fileHeader.Size > maxSize {
		return nil, fmt.Errorf("%w: file exceeds maximum size of %d bytes", ErrValidation, maxSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	data := buf.Bytes()

	contentType := http.DetectContentType(data)
	allowed := opts.ContentTypes
	if len(allowed) == 0 {
		allowed = imageContentTypes
	}
	if !contentTypeAllowed(contentType, allowed) {
		return nil, fmt.Errorf("%w: content type %q is not allowed", ErrValidation, contentType)
	}

	folder := opts.Folder
	if folder == "" {
		folder = "misc"
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("%s/%s/%s%s", folder, time.Now().Format("2006/01"), uuid.New().String(), ext)

	if s.s3Client != nil {
		return s.uploadToS3(key, data, contentType)
	}
	return s.uploadToDisk(key, data, contentType)
}

func (s *StorageService) Delete(key string) error {
	if s.s3Client != nil {
		_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.config.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete object: %w", err)
		}
		return nil
	}

	path := filepath.Join(s.localDir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *StorageService) uploadToS3(key string, data []byte, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.AWS.S3Bucket, s.config.AWS.Region, key)
	if s.config.AWS.CloudFrontURL != "" {
		url = fmt.Sprintf("%s/%s", strings.TrimRight(s.config.AWS.CloudFrontURL, "/"), key)
	}

	return &UploadResult{
		URL:         url,
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *StorageService) uploadToDisk(key string, data []byte, contentType string) (*UploadResult, error) {
	path := filepath.Join(s.localDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &UploadResult{
		URL:         "/" + filepath.ToSlash(path),
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func contentTypeAllowed(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if t == contentType {
			return true
		}
	}
	return false
}
