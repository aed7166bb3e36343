// Package mq 提供基于 Kafka 的跨实例转发
// 所有实例共用一个主题，消息 key 为目标用户 id
// 每个实例使用独立的消费组读取全部消息，只处理本实例订阅了的用户
package mq

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"cluster_chat_server/internal/config"
	"cluster_chat_server/pkg/constants"
	"cluster_chat_server/pkg/errorx"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter kafka.Writer 中用到的方法
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader kafka.Reader 中用到的方法
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRelay 基于 Kafka 主题的跨实例转发
// Kafka 无法得知某个 key 是否有实例在消费，Publish 写入成功即视为投递成功
// 取消订阅时记录时间，此前写入但尚未消费的消息仍交给回调，由回调落离线存储
type KafkaRelay struct {
	conf       config.KafkaConfig
	instanceID string

	writer messageWriter
	reader messageReader

	mu         sync.RWMutex
	subscribed map[int64]struct{}
	tombstones map[int64]time.Time // 用户 id -> 取消订阅时间
	handler    func(userID int64, payload []byte)

	done      chan struct{}
	closeOnce sync.Once
}

func NewKafkaRelay(conf config.KafkaConfig, instanceID string) *KafkaRelay {
	return &KafkaRelay{
		conf:       conf,
		instanceID: instanceID,
		subscribed: make(map[int64]struct{}),
		tombstones: make(map[int64]time.Time),
		done:       make(chan struct{}),
	}
}

// GroupID 本实例的消费组
func (k *KafkaRelay) GroupID() string {
	return k.conf.GroupPrefix + k.instanceID
}

// Connect 初始化 Writer 和 Reader，按配置先创建主题
func (k *KafkaRelay) Connect(ctx context.Context) error {
	if k.conf.AutoCreateTopic {
		k.CreateTopic()
	}
	if k.writer == nil {
		k.writer = &kafka.Writer{
			Addr:                   kafka.TCP(k.conf.HostPort),
			Topic:                  k.conf.RelayTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           k.conf.Timeout * time.Second,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: false,
		}
	}
	if k.reader == nil {
		k.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{k.conf.HostPort},
			Topic:          k.conf.RelayTopic,
			CommitInterval: k.conf.Timeout * time.Second,
			GroupID:        k.GroupID(),
			StartOffset:    kafka.LastOffset,
		})
	}
	return nil
}

// CreateTopic 创建转发主题，主题已存在时只记日志
func (k *KafkaRelay) CreateTopic() {
	// 连接至任意kafka节点
	conn, err := kafka.Dial("tcp", k.conf.HostPort)
	if err != nil {
		zap.L().Error("kafka dial failed", zap.String("addr", k.conf.HostPort), zap.Error(err))
		return
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             k.conf.RelayTopic,
		NumPartitions:     k.conf.Partition,
		ReplicationFactor: 1,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		zap.L().Error("kafka create topic failed", zap.String("topic", k.conf.RelayTopic), zap.Error(err))
	}
}

// Start 消费循环，读取出错时间隔重试，Close 或 ctx 取消后退出
func (k *KafkaRelay) Start(ctx context.Context) {
	if k.reader == nil {
		zap.L().Error("kafka relay started before connect")
		return
	}
	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || k.closed() || errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("kafka fetch message failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-k.done:
				return
			case <-time.After(constants.RELAY_RETRY_PERIOD):
			}
			continue
		}

		k.dispatch(msg)
		if err := k.reader.CommitMessages(ctx, msg); err != nil {
			zap.L().Warn("kafka commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (k *KafkaRelay) dispatch(msg kafka.Message) {
	userID, err := strconv.ParseInt(string(msg.Key), 10, 64)
	if err != nil {
		zap.L().Warn("kafka relay got message with bad key", zap.ByteString("key", msg.Key))
		return
	}
	if !k.accepts(userID, msg.Time) {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("kafka relay handler panic", zap.Any("error", rec), zap.Int64("user_id", userID))
		}
	}()
	k.mu.RLock()
	handler := k.handler
	k.mu.RUnlock()
	if handler != nil {
		handler(userID, msg.Value)
	}
}

func (k *KafkaRelay) Close() error {
	var err error
	k.closeOnce.Do(func() {
		close(k.done)
		if k.reader != nil {
			if e := k.reader.Close(); e != nil {
				err = e
			}
		}
		if k.writer != nil {
			if e := k.writer.Close(); e != nil && err == nil {
				err = e
			}
		}
	})
	return err
}

func (k *KafkaRelay) Subscribe(ctx context.Context, userID int64) error {
	if k.closed() {
		return errorx.ErrRelayClosed
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.subscribed[userID] = struct{}{}
	delete(k.tombstones, userID)
	return nil
}

// Unsubscribe 取消订阅并记下时间，未订阅时无副作用
func (k *KafkaRelay) Unsubscribe(ctx context.Context, userID int64) error {
	now := time.Now()
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.subscribed[userID]; ok {
		delete(k.subscribed, userID)
		k.tombstones[userID] = now
	}
	k.pruneTombstones(now)
	return nil
}

// accepts 订阅中的用户全部处理；已取消订阅的用户只处理取消订阅之前写入的消息
func (k *KafkaRelay) accepts(userID int64, written time.Time) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if _, ok := k.subscribed[userID]; ok {
		return true
	}
	at, ok := k.tombstones[userID]
	return ok && !written.After(at)
}

// pruneTombstones 清理超过保留时间的记录，调用方持有写锁
func (k *KafkaRelay) pruneTombstones(now time.Time) {
	for userID, at := range k.tombstones {
		if now.Sub(at) > constants.RELAY_TOMBSTONE_TTL {
			delete(k.tombstones, userID)
		}
	}
}

// IsSubscribed 本实例是否订阅了该用户
func (k *KafkaRelay) IsSubscribed(userID int64) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.subscribed[userID]
	return ok
}

// Publish 以用户 id 为 key 写入转发主题
func (k *KafkaRelay) Publish(ctx context.Context, userID int64, payload []byte) error {
	if k.closed() || k.writer == nil {
		return errorx.ErrRelayClosed
	}
	err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(userID, 10)),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeRelayError, "kafka publish user %d", userID)
	}
	return nil
}

func (k *KafkaRelay) SetInboundHandler(fn func(userID int64, payload []byte)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.handler = fn
}

func (k *KafkaRelay) closed() bool {
	select {
	case <-k.done:
		return true
	default:
		return false
	}
}
