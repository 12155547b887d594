package ez

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"places-api/internal/core/assets"
	"places-api/internal/domain"
	mdw "places-api/internal/transport/http/middleware"
	resp "places-api/internal/transport/http/response"
	"places-api/internal/validation"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // 按 Content-Type 绑定（JSON / urlencoded / multipart）
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

const assetCleanupTimeout = 10 * time.Second

// Deps 所有 Action 共享的依赖
type Deps struct {
	Log            *zap.Logger
	Assets         assets.Store
	MaxUploadBytes int64
}

type EZ struct {
	g *gin.RouterGroup
	d *Deps
}

func New(g *gin.RouterGroup, d *Deps) EZ {
	if d == nil {
		d = &Deps{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return EZ{g: g, d: d}
}

// Group 子分组共享同一份依赖
func (e EZ) Group(path string, h ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, h...), d: e.d}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PATCH" | "PUT" | "DELETE"
	Path    string // 例："/signup"、"/:placeId"
	Binder  Binder
	Auth    bool // 是否要求登录（检查 userId）
	Status  int  // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		// 1) 鉴权
		if a.Auth && UserID(c) == "" {
			e.Fail(c, domain.Unauthorized(resp.MsgAuthFailed))
			return
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		default: // BindNone
		}
		if bindErr != nil {
			e.Fail(c, validation.Error(bindErr))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			e.Fail(c, err)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Fail 统一错误出口：{"message"}；5xx 原因只写日志；删除本次请求已上传的图片
func (e EZ) Fail(c *gin.Context, err error) {
	status := domain.StatusOf(err)
	msg := domain.PublicMessage(err, resp.MsgFor(status))

	if status >= http.StatusInternalServerError {
		e.d.Log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	e.discardUpload(c)

	if c.Writer.Written() {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, resp.Message(status, msg))
}

func (e EZ) discardUpload(c *gin.Context) {
	ref := c.GetString(keyUploadedAsset)
	if ref == "" || e.d.Assets == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), assetCleanupTimeout)
	defer cancel()
	if err := e.d.Assets.Delete(ctx, ref); err != nil {
		e.d.Log.Warn("discard upload failed", zap.String("rid", mdw.RequestIDFrom(ctx)), zap.String("ref", ref), zap.Error(err))
	}
	c.Set(keyUploadedAsset, "")
}

// UserID AuthJWT 写入的调用者 id
func UserID(c *gin.Context) string { return c.GetString(mdw.KeyUserID) }
