package router

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Woterous/Management-System/config"
	"github.com/Woterous/Management-System/internal/api/handler"
	"github.com/Woterous/Management-System/internal/api/middleware"
	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/pkg/jwt"
	"github.com/Woterous/Management-System/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时不做 Token 黑名单检查与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("注册参数校验规则失败", zap.Error(err))
	}

	// 避免将 nil *redis.Client 包装成非 nil 接口
	var (
		blacklist middleware.BlacklistChecker
		limiter   middleware.RateLimiter
	)
	checks := map[string]handler.HealthCheck{}
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
		checks["redis"] = rdb.Ping
	}
	if db != nil {
		checks["db"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	health := handler.NewHealthHandler(checks)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", health.Health)

	authLimit := middleware.RateLimit(limiter, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimit, h.Auth.Register)
			auth.POST("/login", authLimit, h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.POST("", h.Course.Create)
				courses.GET("", h.Course.List)
				courses.GET("/:courseId", h.Course.GetByID)
				courses.PUT("/:courseId", h.Course.Update)
				courses.DELETE("/:courseId", h.Course.Delete)

				courses.POST("/:courseId/students", h.Course.AddStudent)
				courses.GET("/:courseId/students", h.Course.ListStudents)
				courses.DELETE("/:courseId/students/:studentId", h.Course.RemoveStudent)

				courses.POST("/:courseId/sessions", h.Session.Create)
				courses.GET("/:courseId/sessions", h.Session.ListByCourse)
				courses.POST("/:courseId/sessions/import", h.Session.ImportICS)
			}

			// 学生模块
			students := authorized.Group("/students")
			{
				students.POST("", h.Student.Create)
				students.GET("", h.Student.List)
				students.GET("/:studentId", h.Student.GetByID)
			}

			// 课次与考勤
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("", h.Session.List)
				sessions.GET("/:sessionId", h.Session.GetDetail)
				sessions.POST("/:sessionId/open", h.Session.Open)
				sessions.PATCH("/:sessionId/attendance", h.Session.UpdateAttendance)
				sessions.POST("/:sessionId/close", h.Session.Close)
			}

			// 统计模块
			stats := authorized.Group("/stats")
			{
				stats.GET("/courses/:courseId", h.Stats.CourseStats)
				stats.GET("/courses/:courseId/students/:studentId", h.Stats.StudentCourseStats)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/courses/:courseId/stats", h.Export.ExportCourseStats)
				export.GET("/sessions.ics", h.Export.ExportSessionsICS)
			}
		}
	}

	return r
}
