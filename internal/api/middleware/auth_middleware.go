package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio/internal/auth"
)

const adminEmailKey = "adminEmail"

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
}

// AdminAuthMiddleware 校验管理会话令牌；所有写操作路由都挂在它后面。
// 任何校验失败都是授权失败，不区分原因。
func AdminAuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		rawToken := parts[1]
		if strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(rawToken)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(adminEmailKey, claims.Email)
		c.Next()
	}
}

// AdminEmailFromContext 返回已通过鉴权的管理员邮箱。
func AdminEmailFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(adminEmailKey)
	if !ok {
		return "", false
	}
	email, ok := value.(string)
	return email, ok
}
