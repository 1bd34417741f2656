package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
)

var minioTracer = otel.Tracer("resume-parser-go/storage/minio")

// MinIO 对象存储：原始文档桶 + 解析结果JSON桶
type MinIO struct {
	client          *minio.Client
	originalsBucket string
	recordsBucket   string
}

// NewMinIO 创建客户端并确保两个桶存在
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:          client,
		originalsBucket: valueOr(cfg.OriginalsBucket, "resume-originals"),
		recordsBucket:   valueOr(cfg.RecordsBucket, "resume-records"),
	}
	for _, bucket := range []string{m.originalsBucket, m.recordsBucket} {
		if err := m.ensureBucketExists(bucket, cfg.Location); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	ctx := context.Background()
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 失败: %w", bucketName, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		logger.Info().Str("bucket", bucketName).Msg("存储桶已创建")
	}
	return nil
}

// PutOriginal 上传原始文档，对象名为 {submissionUUID}/{filename}
func (m *MinIO) PutOriginal(ctx context.Context, submissionUUID, filename string, data []byte, contentType string) (string, error) {
	ctx, span := minioTracer.Start(ctx, "minio.PutOriginal")
	defer span.End()

	objectName := fmt.Sprintf("%s/%s", submissionUUID, filename)
	_, err := m.client.PutObject(ctx, m.originalsBucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: valueOr(contentType, "application/octet-stream")})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		return "", fmt.Errorf("上传原始文档失败: %w", err)
	}
	return objectName, nil
}

// PutRecordJSON 上传解析结果JSON，对象名为 {submissionUUID}.json
func (m *MinIO) PutRecordJSON(ctx context.Context, submissionUUID string, recordJSON []byte) (string, error) {
	ctx, span := minioTracer.Start(ctx, "minio.PutRecordJSON")
	defer span.End()

	objectName := submissionUUID + ".json"
	_, err := m.client.PutObject(ctx, m.recordsBucket, objectName,
		bytes.NewReader(recordJSON), int64(len(recordJSON)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		return "", fmt.Errorf("上传解析结果JSON失败: %w", err)
	}
	return objectName, nil
}

// GetRecordJSON 下载解析结果JSON
func (m *MinIO) GetRecordJSON(ctx context.Context, submissionUUID string) ([]byte, error) {
	ctx, span := minioTracer.Start(ctx, "minio.GetRecordJSON")
	defer span.End()

	obj, err := m.client.GetObject(ctx, m.recordsBucket, submissionUUID+".json", minio.GetObjectOptions{})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		return nil, fmt.Errorf("下载解析结果JSON失败: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取解析结果JSON失败: %w", err)
	}
	return data, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
