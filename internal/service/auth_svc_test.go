package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pcmarket_dev_v1_202608/internal/api/dto"
	"pcmarket_dev_v1_202608/internal/middleware"
	"pcmarket_dev_v1_202608/internal/model"
	"pcmarket_dev_v1_202608/internal/repository"
)

func newTestAuthService(t *testing.T) *AuthService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SysUser{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return NewAuthService(repository.NewUserRepository(db))
}

func registerTestUser(t *testing.T, svc *AuthService) *dto.UserVO {
	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "seller_a",
		Password: "secret123",
		Email:    "a@example.com",
		Nickname: "卖家A",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	return user
}

func TestAuthService_Register(t *testing.T) {
	svc := newTestAuthService(t)

	user := registerTestUser(t, svc)
	if user.ID == 0 {
		t.Error("注册后应有用户ID")
	}
	if user.Username != "seller_a" {
		t.Errorf("用户名错误: %s", user.Username)
	}

	// 重名拒绝
	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "seller_a",
		Password: "another",
	})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("重名注册应返回 ErrUsernameExists，实际 %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc := newTestAuthService(t)
	registerTestUser(t, svc)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "seller_a", Password: "secret123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录应签发 Token 对")
	}
	if resp.ExpiresIn <= 0 {
		t.Errorf("过期时间应为正数，实际 %d", resp.ExpiresIn)
	}
	if resp.User == nil || resp.User.Username != "seller_a" {
		t.Error("登录响应应携带用户信息")
	}

	// 密码错误
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "seller_a", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误应返回 ErrInvalidCredentials，实际 %v", err)
	}

	// 用户不存在，不区分提示
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用户不存在应返回 ErrInvalidCredentials，实际 %v", err)
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	svc := newTestAuthService(t)
	registerTestUser(t, svc)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "seller_a", Password: "secret123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("刷新后应签发新 AccessToken")
	}

	// access token 不能当 refresh token 用
	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: resp.AccessToken})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("用 AccessToken 刷新应返回 ErrInvalidToken，实际 %v", err)
	}

	// 乱串
	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: "not-a-jwt"})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("非法串应返回 ErrInvalidToken，实际 %v", err)
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(t)
	user := registerTestUser(t, svc)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "seller_a", Password: "secret123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	claims, err := middleware.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("解析 AccessToken 失败: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("Token 中用户ID错误: %d", claims.UserID)
	}
	if claims.Subject != "access" {
		t.Errorf("AccessToken subject 应为 access，实际 %s", claims.Subject)
	}
}
