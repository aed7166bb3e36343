package handler

import (
	"net/http"

	"cluster_chat_server/internal/service/chat"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	server *chat.ChatServer
}

func NewStatusHandler(cs *chat.ChatServer) *StatusHandler {
	return &StatusHandler{server: cs}
}

// Ping 存活检查
// GET /ping
func (h *StatusHandler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// Status 实例状态：实例 id、转发模式、本实例在线人数
// GET /status
func (h *StatusHandler) Status(c *gin.Context) {
	HandleSuccess(c, h.server.Status())
}
