// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 路由
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	// 请求示例: ws://host:port/wss
	rg.GET("/wss", rt.handlers.Ws.WsLoginHandler)
}
