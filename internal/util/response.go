package util

import (
	"course_studio_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 接口统一返回结构，code 与 HTTP 状态码一致
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 列表接口的分页载荷
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, "success", data)
}

func Created(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, "created", data)
}

func Error(c *gin.Context, code int, message string) {
	respond(c, code, message, nil)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// LogInternalError 错误详情只进日志，对外统一返回笼统的 500
func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	InternalServerError(c)
}
