package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterSystemRoutes 注册运维路由
func (rt *Router) RegisterSystemRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", rt.handlers.Status.Ping)
	rg.GET("/status", rt.handlers.Status.Status)
}
