package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL 是管理会话令牌的固定有效期；过期后需要重新登录，没有刷新机制。
const TokenTTL = 24 * time.Hour

// ErrInvalidCredentials 对邮箱错误与密码错误不作区分。
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service 校验唯一管理员的静态凭据并签发/验证会话令牌。
// 这是一个能力闸门而非通用身份系统：没有账号表，没有角色层级。
type Service struct {
	adminEmail   string
	passwordHash string
	secret       []byte
	now          func() time.Time
}

// Claims 表示会话令牌中的业务字段。
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// NewService 用配置的管理员身份与签名密钥构造服务。
func NewService(adminEmail, passwordHash string, secret []byte) (*Service, error) {
	if strings.TrimSpace(adminEmail) == "" {
		return nil, errors.New("admin email is required")
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, errors.New("admin password hash is required")
	}
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	return &Service{
		adminEmail:   strings.ToLower(strings.TrimSpace(adminEmail)),
		passwordHash: passwordHash,
		secret:       secret,
		now:          time.Now,
	}, nil
}

// Login 校验凭据并签发带角色标记的会话令牌。
// 两项比较都会执行，避免通过时延差暴露哪一项出错。
func (s *Service) Login(email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(s.adminEmail),
	) == 1
	passwordOK := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil

	if !emailOK || !passwordOK {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := Claims{
		Email: s.adminEmail,
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.adminEmail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken 解析并验证会话令牌：签名、有效期与角色标记。
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Role != "admin" {
		return nil, errors.New("missing admin role")
	}

	return claims, nil
}

// HashPassword 使用 bcrypt 生成密码哈希（供 cmd/admin 预置凭据）。
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}
