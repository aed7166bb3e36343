package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cluster_chat_server/internal/dto/request"
	"cluster_chat_server/pkg/enum/message_type_enum"

	"go.uber.org/zap"
)

// Handler 消息处理函数
type Handler func(ctx context.Context, conn Conn, msg *request.Envelope, ts time.Time)

// Dispatcher msgid 到处理函数的映射
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[message_type_enum.MsgType]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[message_type_enum.MsgType]Handler)}
}

// Register 注册处理函数，同一类型重复注册时后者覆盖前者
func (d *Dispatcher) Register(msgType message_type_enum.MsgType, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[msgType] = h
}

// Resolve 查找处理函数，未知类型返回只记日志的默认处理函数
func (d *Dispatcher) Resolve(msgType message_type_enum.MsgType) Handler {
	d.mu.RLock()
	h, ok := d.handlers[msgType]
	d.mu.RUnlock()
	if ok {
		return h
	}
	return func(ctx context.Context, conn Conn, msg *request.Envelope, ts time.Time) {
		zap.L().Error("msgid can not find handler", zap.Int("msgid", int(msgType)))
	}
}

// Validate 检查 kinds 中每一种消息类型都已注册
func (d *Dispatcher) Validate(kinds []message_type_enum.MsgType) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var missing []string
	for _, k := range kinds {
		if _, ok := d.handlers[k]; !ok {
			missing = append(missing, k.String())
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("no handler registered for %s", strings.Join(missing, ", "))
	}
	return nil
}
