package handler

import (
	"net/http"

	"cluster_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ResponseData 统一响应结构体
type ResponseData struct {
	Code int    `json:"code"`           // 业务响应状态码
	Msg  string `json:"msg"`            // 提示信息
	Data any    `json:"data,omitempty"` // 数据
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}
