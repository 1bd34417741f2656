package storage

import (
	"context"
	"fmt"
	"strings"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
)

// Storage 存储管理器，聚合所有已配置的存储后端
// 各后端按配置独立初始化：单个后端失败降级为警告，
// 全部失败才视为错误
type Storage struct {
	// 关系型数据库
	MySQL *MySQL
	// 键值缓存
	Redis *Redis
	// 对象存储
	MinIO *MinIO
	// 消息队列
	RabbitMQ *RabbitMQ
}

// NewStorage 按配置创建存储管理器
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var initErrors []string

	if cfg.MySQL.Host != "" {
		mysql, err := NewMySQL(&cfg.MySQL)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化MySQL失败")
			initErrors = append(initErrors, fmt.Sprintf("MySQL: %v", err))
		} else {
			storage.MySQL = mysql
			logger.Info().Msg("MySQL初始化成功")
		}
	}

	if cfg.Redis.Address != "" {
		redis, err := NewRedis(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化Redis失败")
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		} else {
			storage.Redis = redis
			logger.Info().Str("address", cfg.Redis.Address).Msg("Redis初始化成功")
		}
	}

	if cfg.MinIO.Endpoint != "" {
		minio, err := NewMinIO(&cfg.MinIO)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化MinIO失败")
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		} else {
			storage.MinIO = minio
			logger.Info().Msg("MinIO初始化成功")
		}
	}

	if cfg.RabbitMQ.URL != "" {
		mq, err := NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化RabbitMQ失败")
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		} else {
			storage.RabbitMQ = mq
			logger.Info().Msg("RabbitMQ初始化成功")
		}
	}

	configured := cfg.MySQL.Host != "" || cfg.Redis.Address != "" || cfg.MinIO.Endpoint != "" || cfg.RabbitMQ.URL != ""
	if configured && storage.MySQL == nil && storage.Redis == nil && storage.MinIO == nil && storage.RabbitMQ == nil {
		return nil, fmt.Errorf("所有存储组件初始化失败: %s", strings.Join(initErrors, "; "))
	}
	if len(initErrors) > 0 {
		logger.Warn().Strs("errors", initErrors).Msg("部分存储组件初始化失败")
	}
	return storage, nil
}

// Close 释放所有后端连接
func (s *Storage) Close() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.RabbitMQ != nil {
		_ = s.RabbitMQ.Close()
	}
}
