// Package middleware 提供 gin 中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// SecureHeaders 为 HTTP 响应添加安全相关的头
// websocket 握手由 Upgrader 直接写回，不受影响
func SecureHeaders(isDevelopment bool) gin.HandlerFunc {
	// 在返回函数之前初始化，避免每次请求都重复创建对象
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      isDevelopment,
	})

	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			// 不要在中间件里用 Fatal，记录日志并终止当前请求
			zap.L().Error("secure middleware rejected request", zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
