package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"places-api/internal/core/auth"
	resp "places-api/internal/transport/http/response"
)

// 写入 gin.Context 的身份信息
const (
	KeyUserID = "userId"
	KeyEmail  = "email"
	KeyClaims = "claims"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthJWT 校验 Bearer token；OPTIONS 预检直接放行
func AuthJWT(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		tok, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			resp.Abort(c, http.StatusUnauthorized, resp.MsgAuthFailed)
			return
		}
		claims, err := p.Parse(tok)
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, resp.MsgAuthFailed)
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyEmail, claims.Email)
		c.Next()
	}
}

func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
