package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Woterous/Management-System/config"
	"github.com/Woterous/Management-System/internal/dto"
	"github.com/Woterous/Management-System/pkg/jwt"
)

// ── 测试辅助 ──

type fakeBlacklist struct {
	entries map[string]time.Duration
}

func (f *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	f.entries[jti] = ttl
	return nil
}

func setupTestAuthService() (AuthService, *memStore, *jwt.Manager, *fakeBlacklist) {
	store := newMemStore()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-testing",
			AccessTokenTTL: time.Hour,
			BcryptCost:     bcrypt.MinCost,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	bl := &fakeBlacklist{entries: make(map[string]time.Duration)}
	svc := NewAuthService(cfg, newMockRepository(store), jwtMgr, bl, zap.NewNop())
	return svc, store, jwtMgr, bl
}

// ── Register 测试 ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, store, jwtMgr, _ := setupTestAuthService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "  Teacher@Example.com ",
		Password: "secret123",
		Name:     "Ms. Li",
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if resp.Teacher.Email != "teacher@example.com" {
		t.Errorf("邮箱应规范化为小写，实际=%s", resp.Teacher.Email)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("期望ExpiresIn=3600，实际=%d", resp.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("Token 应可解析: %v", err)
	}
	if claims.TeacherID != resp.Teacher.ID {
		t.Errorf("Token 中的教师 ID 不符")
	}

	stored := store.teachers[resp.Teacher.ID]
	if stored.PasswordHash == "secret123" {
		t.Error("密码不应明文存储")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")) != nil {
		t.Error("密码哈希校验失败")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()
	req := &dto.RegisterRequest{Email: "t@example.com", Password: "secret123", Name: "A"}

	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("首次注册应成功: %v", err)
	}
	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Email: "T@example.com", Password: "other123", Name: "B"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

// ── Login 测试 ──

func TestAuthService_Login(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, &dto.RegisterRequest{Email: "t@example.com", Password: "secret123", Name: "A"}); err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"正确凭据", "t@example.com", "secret123", nil},
		{"大小写不敏感", "T@Example.com", "secret123", nil},
		{"密码错误", "t@example.com", "wrong", ErrInvalidCredentials},
		{"邮箱不存在", "nobody@example.com", "secret123", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(ctx, &dto.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login 应成功: %v", err)
			}
			if resp.AccessToken == "" {
				t.Error("期望返回 AccessToken")
			}
		})
	}
}

// ── Profile / Logout 测试 ──

func TestAuthService_GetProfile(t *testing.T) {
	svc, store, _, _ := setupTestAuthService()
	teacher := seedTeacher(store, "t@example.com")

	profile, err := svc.GetProfile(context.Background(), teacher.TeacherID)
	if err != nil {
		t.Fatalf("GetProfile 应成功: %v", err)
	}
	if profile.Email != "t@example.com" {
		t.Errorf("期望Email=t@example.com，实际=%s", profile.Email)
	}

	if _, err := svc.GetProfile(context.Background(), "missing"); !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("期望 ErrTeacherNotFound，实际: %v", err)
	}
}

func TestAuthService_Logout_Blacklists(t *testing.T) {
	svc, _, _, bl := setupTestAuthService()

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(30*time.Minute)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	ttl, ok := bl.entries["jti-1"]
	if !ok {
		t.Fatal("期望 JTI 被加入黑名单")
	}
	if ttl <= 0 || ttl > 30*time.Minute {
		t.Errorf("黑名单 TTL 应为剩余有效期，实际 %v", ttl)
	}

	// 已过期的 Token 无需拉黑
	if err := svc.Logout(context.Background(), "jti-2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if _, ok := bl.entries["jti-2"]; ok {
		t.Error("过期 Token 不应写入黑名单")
	}
}

func TestAuthService_Logout_WithoutBlacklist(t *testing.T) {
	store := newMemStore()
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing", AccessTokenTTL: time.Hour}}
	svc := NewAuthService(cfg, newMockRepository(store), jwt.NewManager(&cfg.Auth), nil, zap.NewNop())

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("无 Redis 时 Logout 应静默成功: %v", err)
	}
}
