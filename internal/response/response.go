package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/i18n"
	"github.com/weiwangfds/lzydiary/internal/logger"
)

// Response 统一返回值结构体
type Response struct {
	// 状态码，0表示成功，非0为业务错误码
	Code int `json:"code"`
	// 响应消息
	Message string `json:"message"`
	// 响应数据
	Data interface{} `json:"data,omitempty"`
	// 错误详情
	Details string `json:"details,omitempty"`
	// 请求ID，用于链路追踪
	RequestID string `json:"request_id,omitempty"`
	// 时间戳
	Timestamp int64 `json:"timestamp"`
}

// now 便于测试替换
var now = time.Now

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Response{Message: "success", Data: data})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, Response{Message: "created", Data: data})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, Response{Message: message, Data: data})
}

// NoContent 204响应，没有响应体
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应
func Error(c *gin.Context, status int, code apperrors.ErrorCode, message string) {
	write(c, status, Response{Code: int(code), Message: message})
}

// BadRequest 400错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, apperrors.ErrInvalidParams, message)
}

// Unauthorized 401错误响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, apperrors.ErrUnauthorized, message)
}

// FromError 把服务层错误转换成响应
// AppError 按错误码映射HTTP状态，其他错误一律视为500
func FromError(c *gin.Context, err error) {
	appErr, ok := apperrors.GetAppError(err)
	if !ok {
		logger.Errorf("[接口] %s %s 未分类错误: %v", c.Request.Method, c.FullPath(), err)
		appErr = apperrors.Wrap(apperrors.ErrInternalServer, "", err)
	}

	status := StatusOf(appErr.Code)
	if status >= http.StatusInternalServerError {
		logger.Errorf("[接口] %s %s 失败: %v", c.Request.Method, c.FullPath(), appErr)
	}

	message := appErr.Message
	lang := i18n.GetInstance().Normalize(c.GetHeader("Accept-Language"))
	if lang != i18n.GetInstance().GetDefaultLanguage() {
		message = apperrors.GetErrorMessageWithLang(appErr.Code, lang)
	}

	write(c, status, Response{Code: int(appErr.Code), Message: message, Details: appErr.Details})
}

// StatusOf 错误码对应的HTTP状态
func StatusOf(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrInvalidParams, apperrors.ErrContentEmpty, apperrors.ErrPasswordTooShort,
		apperrors.ErrPasswordMismatch, apperrors.ErrInvalidCoordinate, apperrors.ErrCountdownTypeInvalid,
		apperrors.ErrImageTooLarge, apperrors.ErrImageTypeNotAllowed, apperrors.ErrTooManyImages:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized, apperrors.ErrInvalidCredentials, apperrors.ErrSessionExpired, apperrors.ErrAuthTimeout:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	case apperrors.ErrNotFound, apperrors.ErrRecordNotFound, apperrors.ErrDiaryNotFound, apperrors.ErrAlbumNotFound,
		apperrors.ErrNotebookNotFound, apperrors.ErrCountdownNotFound:
		return http.StatusNotFound
	case apperrors.ErrEmailAlreadyRegistered, apperrors.ErrRecordAlreadyExists, apperrors.ErrDraftAlreadyPublished:
		return http.StatusConflict
	case apperrors.ErrTooManyRequests:
		return http.StatusTooManyRequests
	case apperrors.ErrServiceUnavailable, apperrors.ErrAdminUnavailable, apperrors.ErrStorageNotConfigured:
		return http.StatusServiceUnavailable
	case apperrors.ErrStorageUploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func write(c *gin.Context, status int, resp Response) {
	resp.RequestID = c.GetString("request_id")
	resp.Timestamp = now().Unix()
	c.JSON(status, resp)
}
