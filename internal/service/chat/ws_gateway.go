// Package chat 实现了聊天系统的核心服务层
// ws_gateway.go
// 核心职责：WebSocket 连接生命周期管理
// 1. 建立 WebSocket 连接 (Upgrade)
// 2. 封装 UserConn，管理读写协程 (Read/Write Loop)
// 3. 读到的报文交给 ChatService，连接断开时走异常下线流程
package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cluster_chat_server/pkg/constants"
	"cluster_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// UserConn 表示一个 WebSocket 客户端连接
type UserConn struct {
	Conn     *websocket.Conn
	SendBack chan []byte // 待写回客户端的报文

	done      chan struct{}
	closeOnce sync.Once
}

// 允许任意来源，跨域由 gin 的 cors 中间件统一处理
var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewUserConn(conn *websocket.Conn, bufferSize int) *UserConn {
	if bufferSize <= 0 {
		bufferSize = constants.SEND_BUFFER_SIZE
	}
	return &UserConn{
		Conn:     conn,
		SendBack: make(chan []byte, bufferSize),
		done:     make(chan struct{}),
	}
}

// Send 非阻塞入队，缓冲区满或连接已关闭时返回错误
func (c *UserConn) Send(payload []byte) error {
	select {
	case <-c.done:
		return errorx.ErrConnClosed
	default:
	}
	select {
	case c.SendBack <- payload:
		return nil
	case <-c.done:
		return errorx.ErrConnClosed
	default:
		return errorx.ErrSendBufferFull
	}
}

// Close 关闭连接，可重复调用
func (c *UserConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.Conn.Close()
	})
	return err
}

// Read 读取客户端报文并交给 handle，连接出错时返回
func (c *UserConn) Read(readLimit int64, handle func(data []byte, ts time.Time)) {
	if readLimit > 0 {
		c.Conn.SetReadLimit(readLimit)
	}
	_ = c.Conn.SetReadDeadline(time.Now().Add(constants.PONG_WAIT))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(constants.PONG_WAIT))
	})
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws read failed", zap.Error(err))
			}
			return
		}
		handle(data, time.Now())
	}
}

// Write 把 SendBack 中的报文写回客户端，并定时发送心跳
func (c *UserConn) Write() {
	ticker := time.NewTicker(constants.PING_PERIOD)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.SendBack:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.L().Warn("ws write failed", zap.Error(err))
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

// NewClientInit 升级 websocket 并阻塞到连接断开
// 断开后按连接反查用户，完成异常下线清理
func (cs *ChatServer) NewClientInit(c *gin.Context) {
	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade failed", zap.Error(err))
		return
	}
	client := NewUserConn(wsConn, cs.sendBufferSize)
	zap.L().Info("ws connected", zap.String("remote", c.ClientIP()))

	go client.Write()
	client.Read(cs.readLimit, func(data []byte, ts time.Time) {
		cs.Service.HandleMessage(context.Background(), client, data, ts)
	})

	cs.Service.ClientCloseException(client)
	_ = client.Close()
	zap.L().Info("ws disconnected", zap.String("remote", c.ClientIP()))
}
