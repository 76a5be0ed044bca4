package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/weiwangfds/lzydiary/internal/i18n"
)

// ErrorCode 错误码类型
type ErrorCode int

// 定义错误码常量
const (
	// 通用错误码 (1000-1999)
	ErrSuccess            ErrorCode = 0    // 成功
	ErrInternalServer     ErrorCode = 1000 // 服务器内部错误
	ErrInvalidParams      ErrorCode = 1001 // 参数错误
	ErrUnauthorized       ErrorCode = 1002 // 未授权
	ErrForbidden          ErrorCode = 1003 // 禁止访问
	ErrNotFound           ErrorCode = 1004 // 资源未找到
	ErrTooManyRequests    ErrorCode = 1006 // 请求过于频繁
	ErrServiceUnavailable ErrorCode = 1007 // 服务不可用

	// 认证相关错误码 (2000-2999)
	ErrInvalidCredentials     ErrorCode = 2000 // 邮箱或密码错误
	ErrSessionExpired         ErrorCode = 2001 // 会话过期或已注销
	ErrEmailAlreadyRegistered ErrorCode = 2002 // 邮箱已注册
	ErrPasswordTooShort       ErrorCode = 2003 // 密码过短
	ErrPasswordMismatch       ErrorCode = 2004 // 确认密码不一致
	ErrAdminUnavailable       ErrorCode = 2005 // 缺少管理员密钥
	ErrIdentityDeleteFailed   ErrorCode = 2006 // 身份删除失败
	ErrAuthTimeout            ErrorCode = 2007 // 会话校验超时

	// 存储相关错误码 (3000-3999)
	ErrStorageNotConfigured      ErrorCode = 3000 // 未配置存储
	ErrStorageUploadFailed       ErrorCode = 3001 // 上传失败
	ErrStorageProviderNotSupport ErrorCode = 3002 // 提供商不支持
	ErrStorageConfigInvalid      ErrorCode = 3003 // 存储配置无效
	ErrImageTooLarge             ErrorCode = 3004 // 图片过大
	ErrImageTypeNotAllowed       ErrorCode = 3005 // 图片类型不允许
	ErrTooManyImages             ErrorCode = 3006 // 图片数量超限

	// 数据库相关错误码 (4000-4999)
	ErrDatabaseConnection  ErrorCode = 4000 // 数据库连接错误
	ErrDatabaseQuery       ErrorCode = 4001 // 数据库查询错误
	ErrDatabaseInsert      ErrorCode = 4002 // 数据库插入错误
	ErrDatabaseUpdate      ErrorCode = 4003 // 数据库更新错误
	ErrDatabaseDelete      ErrorCode = 4004 // 数据库删除错误
	ErrDatabaseTransaction ErrorCode = 4005 // 数据库事务错误
	ErrRecordNotFound      ErrorCode = 4006 // 记录未找到
	ErrRecordAlreadyExists ErrorCode = 4007 // 记录已存在

	// 日记业务错误码 (5000-5999)
	ErrContentEmpty          ErrorCode = 5000 // 内容为空
	ErrDraftAlreadyPublished ErrorCode = 5001 // 草稿已发布
	ErrDiaryNotFound         ErrorCode = 5002 // 日记不存在
	ErrAlbumNotFound         ErrorCode = 5003 // 相册不存在
	ErrNotebookNotFound      ErrorCode = 5004 // 笔记本不存在
	ErrCountdownNotFound     ErrorCode = 5005 // 纪念日不存在
	ErrCountdownTypeInvalid  ErrorCode = 5006 // 纪念日类型无效

	// 定位相关错误码 (6000-6999)
	ErrInvalidCoordinate ErrorCode = 6000 // 坐标无效
)

// AppError 应用错误
type AppError struct {
	// 错误码
	Code ErrorCode `json:"code"`
	// 错误消息
	Message string `json:"message"`
	// 详细错误信息
	Details string `json:"details,omitempty"`
	// 原始错误
	OriginalError error `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误，供 errors.Is / errors.As 使用
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// Is 错误码相同即视为同一种错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithDetails 添加详细错误信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithOriginalError 添加原始错误
func (e *AppError) WithOriginalError(err error) *AppError {
	e.OriginalError = err
	if e.Details == "" && err != nil {
		e.Details = err.Error()
	}
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// FromCode 用错误码对应的默认语言消息创建错误
func FromCode(code ErrorCode) *AppError {
	return New(code, GetErrorMessage(code))
}

// Wrap 包装原始错误
// 参数:
//   - code: 错误码
//   - message: 错误消息，为空时使用错误码的默认消息
//   - err: 原始错误
func Wrap(code ErrorCode, message string, err error) *AppError {
	if message == "" {
		message = GetErrorMessage(code)
	}
	appErr := &AppError{
		Code:          code,
		Message:       message,
		OriginalError: err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// GetAppError 从错误链中提取应用错误
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode 判断错误链中是否含有指定错误码
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Code == code
}

// 错误码到i18n键的映射
var errorCodeToKeyMap = map[ErrorCode]string{
	ErrSuccess:            "success",
	ErrInternalServer:     "internal_server_error",
	ErrInvalidParams:      "invalid_params",
	ErrUnauthorized:       "unauthorized",
	ErrForbidden:          "forbidden",
	ErrNotFound:           "not_found",
	ErrTooManyRequests:    "too_many_requests",
	ErrServiceUnavailable: "service_unavailable",

	ErrInvalidCredentials:     "invalid_credentials",
	ErrSessionExpired:         "session_expired",
	ErrEmailAlreadyRegistered: "email_already_registered",
	ErrPasswordTooShort:       "password_too_short",
	ErrPasswordMismatch:       "password_mismatch",
	ErrAdminUnavailable:       "admin_unavailable",
	ErrIdentityDeleteFailed:   "identity_delete_failed",
	ErrAuthTimeout:            "auth_timeout",

	ErrStorageNotConfigured:      "storage_not_configured",
	ErrStorageUploadFailed:       "storage_upload_failed",
	ErrStorageProviderNotSupport: "storage_provider_unsupported",
	ErrStorageConfigInvalid:      "storage_config_invalid",
	ErrImageTooLarge:             "image_too_large",
	ErrImageTypeNotAllowed:       "image_type_not_allowed",
	ErrTooManyImages:             "too_many_images",

	ErrDatabaseConnection:  "database_connection",
	ErrDatabaseQuery:       "database_query",
	ErrDatabaseInsert:      "database_insert",
	ErrDatabaseUpdate:      "database_update",
	ErrDatabaseDelete:      "database_delete",
	ErrDatabaseTransaction: "database_transaction",
	ErrRecordNotFound:      "record_not_found",
	ErrRecordAlreadyExists: "record_already_exists",

	ErrContentEmpty:          "content_empty",
	ErrDraftAlreadyPublished: "draft_already_published",
	ErrDiaryNotFound:         "diary_not_found",
	ErrAlbumNotFound:         "album_not_found",
	ErrNotebookNotFound:      "notebook_not_found",
	ErrCountdownNotFound:     "countdown_not_found",
	ErrCountdownTypeInvalid:  "countdown_type_invalid",

	ErrInvalidCoordinate: "invalid_coordinate",
}

// GetErrorMessage 根据错误码获取默认语言的错误消息
func GetErrorMessage(code ErrorCode) string {
	return GetErrorMessageWithLang(code, i18n.GetInstance().GetDefaultLanguage())
}

// GetErrorMessageWithLang 根据错误码和语言获取错误消息
func GetErrorMessageWithLang(code ErrorCode, lang string) string {
	key, exists := errorCodeToKeyMap[code]
	if !exists {
		key = "unknown_error"
	}
	return i18n.GetInstance().Translate(key, lang)
}
