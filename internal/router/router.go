package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/handler"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"github.com/weiwangfds/lzydiary/internal/middleware"
	"github.com/weiwangfds/lzydiary/internal/service/auth"
	"github.com/weiwangfds/lzydiary/internal/service/collection"
	"github.com/weiwangfds/lzydiary/internal/service/countdown"
	"github.com/weiwangfds/lzydiary/internal/service/diary"
	"github.com/weiwangfds/lzydiary/internal/service/lifecycle"
	"github.com/weiwangfds/lzydiary/internal/service/storage"
	"github.com/weiwangfds/lzydiary/internal/service/visitor"
)

// Services 路由依赖的服务
type Services struct {
	Auth        *auth.Service
	Coordinator *lifecycle.Coordinator
	Diaries     *diary.Service
	Collections *collection.Service
	Countdowns  *countdown.Service
	Resolver    handler.Resolver
	Visitors    *visitor.Recorder
	// Blobs 为本地存储时，上传目录会挂在 PublicBaseURL 下
	Blobs storage.BlobStorage
}

// Router 路由配置
type Router struct {
	engine *gin.Engine
}

// NewRouter 创建路由实例
func NewRouter(cfg *config.Config, svc Services) *Router {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.MaxMultipartMemory = 32 << 20
	// 未配置可信代理时 ClientIP 只看连接地址
	if err := engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warnf("[路由] 可信代理配置无效，忽略转发头: %v", err)
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.NewLoggerMiddleware(nil, "/health").Logger())
	engine.Use(cors.New(corsConfig(cfg.Server.AllowOrigins)))
	engine.Use(middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst).Middleware())

	engine.GET("/health", handler.Health)

	// 本地存储的访问前缀是相对路径时由本服务直接提供文件
	if local, ok := svc.Blobs.(*storage.LocalStorage); ok && strings.HasPrefix(local.BaseURL(), "/") {
		engine.Group(local.BaseURL(), middleware.NoSniff()).Static("/", local.Dir())
	}

	authHandler := handler.NewAuthHandler(svc.Auth, svc.Coordinator)
	diaryHandler := handler.NewDiaryHandler(svc.Diaries, svc.Coordinator, cfg.Upload)
	collectionHandler := handler.NewCollectionHandler(svc.Collections, svc.Coordinator)
	countdownHandler := handler.NewCountdownHandler(svc.Countdowns)
	locationHandler := handler.NewLocationHandler(svc.Resolver, svc.Visitors)

	api := engine.Group("/api/v1")
	{
		api.POST("/auth/signup", authHandler.SignUp)
		api.POST("/auth/signin", authHandler.SignIn)

		api.GET("/location/resolve", locationHandler.Resolve)
		api.GET("/location/check", locationHandler.Check)
		api.GET("/visitor", locationHandler.Visit)
	}

	// 以下接口需要登录
	authed := api.Group("", middleware.RequireAuth(svc.Auth))
	{
		authed.GET("/auth/session", authHandler.Session)
		authed.POST("/auth/signout", authHandler.SignOut)
		authed.DELETE("/account", authHandler.DeleteAccount)

		diaries := authed.Group("/diaries")
		{
			diaries.GET("", diaryHandler.List)
			diaries.POST("", diaryHandler.Create)
			diaries.GET("/:id", diaryHandler.Get)
			diaries.PUT("/:id", diaryHandler.Update)
			diaries.DELETE("/:id", diaryHandler.Delete)
			diaries.POST("/:id/publish", diaryHandler.Publish)
			diaries.GET("/:id/comments", diaryHandler.Comments)
			diaries.POST("/:id/comments", diaryHandler.AddComment)
		}
		authed.POST("/drafts", diaryHandler.SaveDraft)

		albums := authed.Group("/albums")
		{
			albums.GET("", collectionHandler.ListAlbums)
			albums.POST("", collectionHandler.CreateAlbum)
			albums.GET("/:id/images", collectionHandler.AlbumImages)
			albums.DELETE("/:id", collectionHandler.DeleteAlbum)
		}

		notebooks := authed.Group("/notebooks")
		{
			notebooks.GET("", collectionHandler.ListNotebooks)
			notebooks.POST("", collectionHandler.CreateNotebook)
			notebooks.DELETE("/:id", collectionHandler.DeleteNotebook)
		}

		countdowns := authed.Group("/countdowns")
		{
			countdowns.GET("", countdownHandler.List)
			countdowns.POST("", countdownHandler.Create)
			countdowns.DELETE("/:id", countdownHandler.Delete)
		}
	}

	return &Router{engine: engine}
}

// GetEngine 获取Gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// corsConfig 允许所有来源时不能携带凭证
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept-Language", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			origins = nil
			break
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
