// Package mq 提供基于RabbitMQ的领域事件发布
//
// 写命令提交成功后发布事件（stock.replenished、wishlist.added），
// 供库存同步、推荐等下游进程消费。事件发布在事务之外：
// 发布失败只记日志，不回滚已提交的写入，也不影响HTTP响应。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher 消息发布者接口
// 设计说明：接口化便于在MQ未启用时注入NoopPublisher，以及测试时Mock
type Publisher interface {
	// Publish 将message序列化为JSON后按routingKey发布
	Publish(ctx context.Context, routingKey string, message interface{}) error

	// Close 释放连接
	Close() error
}

// AMQPPublisher 基于amqp091的发布者实现
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher 连接RabbitMQ并声明topic类型的持久化Exchange
func NewPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Durable=true：RabbitMQ重启后Exchange不丢失
	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	return &AMQPPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Publish 发布消息
// DeliveryMode=Persistent，确保RabbitMQ重启后消息不丢失
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish %q: %w", routingKey, err)
	}
	return nil
}

// Close 关闭发布者
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// NoopPublisher MQ未启用时的占位实现
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }
