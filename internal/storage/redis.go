package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = redis.Nil

var redisTracer = otel.Tracer("resume-parser-go/storage/redis")

// Redis 原文MD5去重缓存与解析结果缓存
type Redis struct {
	Client    *redis.Client
	md5TTL    time.Duration
	recordTTL time.Duration
}

// NewRedis 创建Redis适配器并验证连通性
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("Redis配置不能为空")
	}

	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		DialTimeout:     time.Duration(defaultSeconds(cfg.DialTimeoutSeconds, 5)) * time.Second,
		ReadTimeout:     time.Duration(defaultSeconds(cfg.ReadTimeoutSeconds, 3)) * time.Second,
		WriteTimeout:    time.Duration(defaultSeconds(cfg.WriteTimeoutSeconds, 3)) * time.Second,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Warn().Err(err).Msg("Redis追踪钩子安装失败")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接测试失败: %w", err)
	}

	md5Days := cfg.MD5RecordExpireDays
	if md5Days <= 0 {
		md5Days = 30
	}
	return &Redis{
		Client:    client,
		md5TTL:    time.Duration(md5Days) * 24 * time.Hour,
		recordTTL: 24 * time.Hour,
	}, nil
}

// LookupMD5 查询原文MD5对应的既有提交UUID
// 未命中返回 ("", nil)
func (r *Redis) LookupMD5(ctx context.Context, md5sum string) (string, error) {
	ctx, span := redisTracer.Start(ctx, "redis.LookupMD5")
	defer span.End()

	key := fmt.Sprintf(constants.KeyRawTextMD5ToUUID, md5sum)
	span.SetAttributes(attribute.String("redis.key", tracing.SafeRedisKey(key)))
	uuid, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return "", fmt.Errorf("查询MD5去重缓存失败: %w", err)
	}
	return uuid, nil
}

// RegisterMD5 记录原文MD5到提交UUID的映射
func (r *Redis) RegisterMD5(ctx context.Context, md5sum, submissionUUID string) error {
	ctx, span := redisTracer.Start(ctx, "redis.RegisterMD5")
	defer span.End()

	key := fmt.Sprintf(constants.KeyRawTextMD5ToUUID, md5sum)
	if err := r.Client.Set(ctx, key, submissionUUID, r.md5TTL).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入MD5去重缓存失败: %w", err)
	}
	return nil
}

// CacheRecord 缓存解析结果JSON
func (r *Redis) CacheRecord(ctx context.Context, submissionUUID string, recordJSON []byte) error {
	ctx, span := redisTracer.Start(ctx, "redis.CacheRecord")
	defer span.End()

	key := fmt.Sprintf(constants.KeyParsedRecord, submissionUUID)
	if err := r.Client.Set(ctx, key, recordJSON, r.recordTTL).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("缓存解析结果失败: %w", err)
	}
	return nil
}

// GetCachedRecord 读取缓存的解析结果JSON，未命中返回 ErrCacheMiss
func (r *Redis) GetCachedRecord(ctx context.Context, submissionUUID string) ([]byte, error) {
	ctx, span := redisTracer.Start(ctx, "redis.GetCachedRecord")
	defer span.End()

	key := fmt.Sprintf(constants.KeyParsedRecord, submissionUUID)
	data, err := r.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, fmt.Errorf("读取解析结果缓存失败: %w", err)
	}
	return data, nil
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.Client.Close()
}
