// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"cluster_chat_server/internal/service/chat"
)

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	Ws     *WsHandler
	Status *StatusHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(cs *chat.ChatServer) *Handlers {
	return &Handlers{
		Ws:     NewWsHandler(cs),
		Status: NewStatusHandler(cs),
	}
}
