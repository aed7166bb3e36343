// Package https_server 提供 HTTP 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"cluster_chat_server/internal/handler"
	"cluster_chat_server/internal/infrastructure/logger"
	"cluster_chat_server/internal/infrastructure/middleware"
	"cluster_chat_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎
// 配置顺序：日志和恢复中间件 -> 安全头 -> CORS -> 业务路由
func Init(handlers *handler.Handlers) *gin.Engine {
	// 不使用 gin.Default() 以便完全控制中间件
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))
	engine.Use(middleware.SecureHeaders(gin.Mode() == gin.DebugMode))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 允许所有来源（生产环境应指定具体域名）
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	engine.Use(cors.New(corsConfig))

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
