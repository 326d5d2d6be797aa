package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Woterous/Management-System/config"
	"github.com/Woterous/Management-System/internal/repository"
	"github.com/Woterous/Management-System/pkg/jwt"
)

// TokenBlacklist 注销 Token 的黑名单存储，由 pkg/redis.Client 实现
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	Course  CourseService
	Student StudentService
	Session SessionService
	Stats   StatsService
	Export  ExportService
}

// NewService 创建 Service 聚合
// blacklist 可为 nil（Redis 不可用时注销仅由客户端丢弃 Token）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	stats := NewStatsService(repo, logger)
	return &Service{
		Auth:    NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Course:  NewCourseService(repo, logger),
		Student: NewStudentService(repo, logger),
		Session: NewSessionService(repo, logger),
		Stats:   stats,
		Export:  NewExportService(repo, stats, logger),
	}
}
