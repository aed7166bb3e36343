// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"cluster_chat_server/internal/service/chat"

	"github.com/gin-gonic/gin"
)

type WsHandler struct {
	server *chat.ChatServer
}

func NewWsHandler(cs *chat.ChatServer) *WsHandler {
	return &WsHandler{server: cs}
}

// WsLoginHandler 升级 HTTP 连接为 WebSocket
// GET /wss
// 连接建立后客户端通过 LOGIN_MSG 报文登录，请求在连接断开后才返回
func (h *WsHandler) WsLoginHandler(c *gin.Context) {
	h.server.NewClientInit(c)
}
