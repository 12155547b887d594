package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "places-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小（上传图片 + 表单字段）
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			resp.Abort(c, http.StatusRequestEntityTooLarge, resp.MsgBodyTooLarge)
		}
	}
}
