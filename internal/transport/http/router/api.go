package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"places-api/internal/core/assets"
	"places-api/internal/transport/http/ez"
	mdw "places-api/internal/transport/http/middleware"
	resp "places-api/internal/transport/http/response"
	"places-api/internal/validation"
)

type Options struct {
	RequestTimeout time.Duration
	MaxConcurrent  int64
	MaxBodyBytes   int64
	MaxUploadBytes int64
	CORSOrigins    []string

	// 本地图片目录静态对外（assets.driver=local）
	StaticPath string
	StaticDir  string
}

func (o *Options) defaults() {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 2 << 20
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 500 << 10
	}
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{mdw.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewAPIEngine 组装中间件、环境路由与 /api 下的业务模块
func NewAPIEngine(l *zap.Logger, store assets.Store, reg *Registry, o Options) *gin.Engine {
	o.defaults()
	validation.Init()

	r := gin.New()
	r.HandleMethodNotAllowed = false

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.Metrics("/health", "/metrics"),
		mdw.AccessLog(l),
		cors.New(corsConfig(o.CORSOrigins)),
		mdw.ConcurrencyLimit(o.MaxConcurrent),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.RequestTimeout),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if o.StaticPath != "" && o.StaticDir != "" {
		r.Static(o.StaticPath, o.StaticDir)
	}

	// 前缀
	api := ez.New(r.Group("/api"), &ez.Deps{Log: l, Assets: store, MaxUploadBytes: o.MaxUploadBytes})
	if reg != nil {
		reg.MountAll(api)
	}

	r.NoRoute(func(c *gin.Context) {
		resp.Abort(c, http.StatusNotFound, resp.MsgRouteNotFound)
	})
	return r
}
