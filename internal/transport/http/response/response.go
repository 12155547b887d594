package response

import "github.com/gin-gonic/gin"

// Resp 错误与纯提示响应体
type Resp struct {
	Message string `json:"message"`
}

// Message 构造 {"message": msg}；msg 为空时按状态码取默认文案
func Message(status int, msg string) Resp {
	if msg == "" {
		msg = MsgFor(status)
	}
	return Resp{Message: msg}
}

// Abort 中间件里直接终止请求
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Message(status, msg))
}
