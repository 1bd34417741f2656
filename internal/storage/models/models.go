package models

import (
	"time"

	"gorm.io/datatypes"
)

// ParseResult 解析结果表
// 每个提交的文档对应一行，记录JSON整体存储
type ParseResult struct {
	SubmissionUUID string `gorm:"type:varchar(36);primaryKey"`
	// Source 文档来源（上传文件名或路径）
	Source string `gorm:"type:varchar(512);not null"`
	// RawTextMD5 原文MD5，用于跨提交去重
	RawTextMD5 string `gorm:"type:varchar(32);index:idx_raw_text_md5"`
	// RecordJSON 结构化简历记录
	RecordJSON datatypes.JSON `gorm:"type:json"`
	// Status 处理状态: PARSED / REFINED / REFINE_REJECTED / REFINE_UNAVAILABLE
	Status string `gorm:"type:varchar(32);not null;index:idx_status"`
	// ParserVersion 产出该记录的解析器版本标识
	ParserVersion string `gorm:"type:varchar(64)"`
	// WarningCount 宽容校验产生的告警数
	WarningCount int `gorm:"not null;default:0"`
	// SourceChannel 提交渠道: web_upload / cli
	SourceChannel string `gorm:"type:varchar(32)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 指定表名
func (ParseResult) TableName() string {
	return "parse_results"
}

// 发件箱消息状态
const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// OutboxMessage 发件箱表
// 解析事件先随解析结果落库，再由中继异步发布到消息队列
type OutboxMessage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	// AggregateID 关联的提交UUID
	AggregateID string `gorm:"type:varchar(36);not null;index"`
	// EventType 事件类型，例如 resume.parsed
	EventType        string     `gorm:"type:varchar(255);not null"`
	Payload          string     `gorm:"type:json;not null"`
	TargetExchange   string     `gorm:"type:varchar(255);not null"`
	TargetRoutingKey string     `gorm:"type:varchar(255);not null"`
	Status           string     `gorm:"type:varchar(20);default:'PENDING';not null;index:idx_outbox_status_created_at"`
	RetryCount       int        `gorm:"default:0"`
	CreatedAt        time.Time  `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_outbox_status_created_at,sort:asc"`
	ProcessedAt      *time.Time `gorm:"type:datetime(6);null"`
	ErrorMessage     string     `gorm:"type:text"`
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "outbox_messages"
}
