package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
)

// ParsedEvent 解析完成事件
type ParsedEvent struct {
	SubmissionUUID string `json:"submission_uuid"`
	Source         string `json:"source"`
	Status         string `json:"status"`
	WarningCount   int    `json:"warning_count"`
	ParserVersion  string `json:"parser_version"`
	ParsedAt       string `json:"parsed_at"`
}

// RabbitMQ 解析事件发布器
type RabbitMQ struct {
	conn     *amqp.Connection
	exchange string
	// 解析完成事件的路由键
	parsedKey string

	mu sync.Mutex
	ch *amqp.Channel
}

// NewRabbitMQ 建立连接并声明事件交换机
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	mq := &RabbitMQ{
		conn:      conn,
		exchange:  valueOr(cfg.ParseEventsExchange, "resume.events"),
		parsedKey: valueOr(cfg.ParsedRoutingKey, "resume.parsed"),
	}

	ch, err := mq.channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(mq.exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("声明事件交换机失败: %w", err)
	}
	return mq, nil
}

// channel 获取发布通道，连接内复用
func (r *RabbitMQ) channel() (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil && !r.ch.IsClosed() {
		return r.ch, nil
	}
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("打开RabbitMQ通道失败: %w", err)
	}
	r.ch = ch
	return ch, nil
}

// PublishMessage 发布消息到指定交换机
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchange, routingKey string, body []byte, persistent bool) error {
	ch, err := r.channel()
	if err != nil {
		return err
	}

	deliveryMode := amqp.Transient
	if persistent {
		deliveryMode = amqp.Persistent
	}
	err = ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: deliveryMode,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("发布消息失败 (exchange=%s, key=%s): %w", exchange, routingKey, err)
	}
	return nil
}

// PublishParsedEvent 直接发布解析完成事件，不经发件箱
func (r *RabbitMQ) PublishParsedEvent(ctx context.Context, event *ParsedEvent) error {
	body, err := MarshalParsedEvent(event)
	if err != nil {
		return err
	}
	if err := r.PublishMessage(ctx, r.exchange, r.parsedKey, body, true); err != nil {
		return fmt.Errorf("发布解析事件失败: %w", err)
	}

	logger.Debug().
		Str("submission_uuid", event.SubmissionUUID).
		Str("routing_key", r.parsedKey).
		Msg("解析事件已发布")
	return nil
}

// MarshalParsedEvent 序列化解析事件，补齐解析时间戳
func MarshalParsedEvent(event *ParsedEvent) ([]byte, error) {
	if event.ParsedAt == "" {
		event.ParsedAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("序列化解析事件失败: %w", err)
	}
	return body, nil
}

// Exchange 解析事件交换机名
func (r *RabbitMQ) Exchange() string { return r.exchange }

// ParsedRoutingKey 解析完成事件的路由键
func (r *RabbitMQ) ParsedRoutingKey() string { return r.parsedKey }

// Close 关闭通道与连接
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil {
		_ = r.ch.Close()
	}
	return r.conn.Close()
}
