package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Woterous/Management-System/pkg/response"
)

// MustGetTeacherID 从 Gin 上下文中安全提取 teacher_id。
// 如果 JWT 中间件未正确注入 teacher_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetTeacherID(c *gin.Context) (string, bool) {
	v, exists := c.Get("teacher_id")
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}

// tokenMeta 提取当前 Token 的 JTI 与过期时间，缺失时返回零值
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString("token_jti")
	exp, _ := c.Get("token_exp")
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}

// pathUUID 读取路径参数并校验为 UUID。
// 非法 ID 与不存在的资源同样返回 404，调用方在 ok=false 时直接 return。
func pathUUID(c *gin.Context, name string, code int, notFoundMsg string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.NotFound(c, code, notFoundMsg)
		return "", false
	}
	return id, true
}

// bindJSON 绑定并校验 JSON 请求体，失败时写入 400（超出大小限制时写入 413）
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "请求体过大")
			return false
		}
		response.InvalidParams(c, err)
		return false
	}
	return true
}

// bindQuery 绑定并校验查询参数
func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		response.InvalidParams(c, err)
		return false
	}
	return true
}
