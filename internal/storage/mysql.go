package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
)

var mysqlTracer = otel.Tracer("resume-parser-go/storage/mysql")

// ErrRecordNotFound 查询的解析结果不存在
var ErrRecordNotFound = gorm.ErrRecordNotFound

// MySQL 解析结果的关系型存储
type MySQL struct {
	db *gorm.DB
}

// NewMySQL 连接MySQL并完成解析结果表迁移
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		defaultSeconds(cfg.ConnectTimeoutSeconds, 10),
		defaultSeconds(cfg.ReadTimeoutSeconds, 30),
		defaultSeconds(cfg.WriteTimeoutSeconds, 30))

	var logLevel gormlogger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = gormlogger.Silent
	case 2:
		logLevel = gormlogger.Error
	case 3:
		logLevel = gormlogger.Warn
	default:
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(defaultSeconds(cfg.ConnMaxLifetimeMinutes, 60)) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(defaultSeconds(cfg.ConnMaxIdleTimeMinutes, 10)) * time.Minute)

	if err := db.AutoMigrate(&models.ParseResult{}, &models.OutboxMessage{}); err != nil {
		return nil, fmt.Errorf("迁移数据表失败: %w", err)
	}
	return &MySQL{db: db}, nil
}

// GetParseResult 按提交UUID查询解析结果
func (m *MySQL) GetParseResult(ctx context.Context, submissionUUID string) (*models.ParseResult, error) {
	ctx, span := mysqlTracer.Start(ctx, "mysql.GetParseResult")
	defer span.End()
	span.SetAttributes(attribute.String("submission_uuid", submissionUUID))

	var result models.ParseResult
	err := m.db.WithContext(ctx).
		Where("submission_uuid = ?", submissionUUID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, fmt.Errorf("查询解析结果失败: %w", err)
	}
	return &result, nil
}

// FindByRawTextMD5 按原文MD5查询既有解析结果
func (m *MySQL) FindByRawTextMD5(ctx context.Context, md5sum string) (*models.ParseResult, error) {
	ctx, span := mysqlTracer.Start(ctx, "mysql.FindByRawTextMD5")
	defer span.End()

	var result models.ParseResult
	err := m.db.WithContext(ctx).
		Where("raw_text_md5 = ?", md5sum).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, fmt.Errorf("按MD5查询解析结果失败: %w", err)
	}
	return &result, nil
}

// SaveParseResultWithOutbox 在同一事务中写入解析结果和发件箱事件
// 事件随业务数据一起提交，由中继异步发布
func (m *MySQL) SaveParseResultWithOutbox(ctx context.Context, result *models.ParseResult, message *models.OutboxMessage) error {
	ctx, span := mysqlTracer.Start(ctx, "mysql.SaveParseResultWithOutbox")
	defer span.End()
	span.SetAttributes(attribute.String("submission_uuid", result.SubmissionUUID))

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(result).Error; err != nil {
			return err
		}
		if message != nil {
			if err := tx.Create(message).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存解析结果与发件箱事件失败: %w", err)
	}
	return nil
}

// DB 暴露底层gorm连接，供维护性操作使用
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

func defaultSeconds(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
