// Package i18n 提供国际化支持
// 负责管理错误消息的语言包和翻译
package i18n

import (
	"strings"
	"sync"

	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/weiwangfds/lzydiary/internal/logger"
)

// 支持的语言
const (
	LangZhCN = "zh-CN"
	LangEnUS = "en-US"
)

var (
	instance *I18n
	once     sync.Once

	// 语言包
	translations = map[string]map[string]string{
		LangZhCN: {
			"success":               "成功",
			"internal_server_error": "服务器内部错误",
			"invalid_params":        "参数错误",
			"unauthorized":          "未登录或登录已失效",
			"forbidden":             "禁止访问",
			"not_found":             "资源未找到",
			"too_many_requests":     "请求过于频繁",
			"service_unavailable":   "服务不可用",

			"invalid_credentials":      "邮箱或密码错误",
			"session_expired":          "登录已过期，请重新登录",
			"email_already_registered": "该邮箱已注册",
			"password_too_short":       "密码长度不足",
			"password_mismatch":        "两次输入的密码不一致",
			"admin_unavailable":        "账户删除功能未配置管理员密钥",
			"identity_delete_failed":   "删除账户身份失败",
			"auth_timeout":             "登录状态校验超时",

			"storage_not_configured":       "图片存储未配置",
			"storage_upload_failed":        "图片上传失败",
			"storage_provider_unsupported": "不支持的存储提供商",
			"storage_config_invalid":       "存储配置无效",
			"image_too_large":              "图片大小超限",
			"image_type_not_allowed":       "图片类型不允许",
			"too_many_images":              "图片数量超限",

			"database_connection":   "数据库连接错误",
			"database_query":        "数据库查询错误",
			"database_insert":       "数据库插入错误",
			"database_update":       "数据库更新错误",
			"database_delete":       "数据库删除错误",
			"database_transaction":  "数据库事务错误",
			"record_not_found":      "记录未找到",
			"record_already_exists": "记录已存在",

			"content_empty":           "日记内容不能为空",
			"draft_already_published": "日记已发布",
			"diary_not_found":         "日记不存在",
			"album_not_found":         "相册不存在",
			"notebook_not_found":      "笔记本不存在",
			"countdown_not_found":     "纪念日不存在",
			"countdown_type_invalid":  "纪念日类型无效",

			"invalid_coordinate": "坐标格式无效",

			"unknown_error": "未知错误",
		},
		LangEnUS: {
			"success":               "Success",
			"internal_server_error": "Internal Server Error",
			"invalid_params":        "Invalid Parameters",
			"unauthorized":          "Unauthorized",
			"forbidden":             "Forbidden",
			"not_found":             "Resource Not Found",
			"too_many_requests":     "Too Many Requests",
			"service_unavailable":   "Service Unavailable",

			"invalid_credentials":      "Invalid Email Or Password",
			"session_expired":          "Session Expired",
			"email_already_registered": "Email Already Registered",
			"password_too_short":       "Password Too Short",
			"password_mismatch":        "Passwords Do Not Match",
			"admin_unavailable":        "Account Deletion Is Not Configured",
			"identity_delete_failed":   "Identity Deletion Failed",
			"auth_timeout":             "Session Check Timed Out",

			"storage_not_configured":       "Image Storage Not Configured",
			"storage_upload_failed":        "Image Upload Failed",
			"storage_provider_unsupported": "Storage Provider Not Supported",
			"storage_config_invalid":       "Storage Config Invalid",
			"image_too_large":              "Image Too Large",
			"image_type_not_allowed":       "Image Type Not Allowed",
			"too_many_images":              "Too Many Images",

			"database_connection":   "Database Connection Error",
			"database_query":        "Database Query Error",
			"database_insert":       "Database Insert Error",
			"database_update":       "Database Update Error",
			"database_delete":       "Database Delete Error",
			"database_transaction":  "Database Transaction Error",
			"record_not_found":      "Record Not Found",
			"record_already_exists": "Record Already Exists",

			"content_empty":           "Diary Content Is Empty",
			"draft_already_published": "Diary Already Published",
			"diary_not_found":         "Diary Not Found",
			"album_not_found":         "Album Not Found",
			"notebook_not_found":      "Notebook Not Found",
			"countdown_not_found":     "Countdown Not Found",
			"countdown_type_invalid":  "Invalid Countdown Type",

			"invalid_coordinate": "Invalid Coordinate",

			"unknown_error": "Unknown Error",
		},
	}
)

// I18n 国际化管理器
type I18n struct {
	translators map[string]ut.Translator
	defaultLang string
}

// GetInstance 获取I18n单例
func GetInstance() *I18n {
	once.Do(func() {
		instance = &I18n{
			translators: make(map[string]ut.Translator),
			defaultLang: LangZhCN,
		}
		instance.initTranslators()
	})
	return instance
}

func (i *I18n) initTranslators() {
	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale, en_US.New())

	for lang, locale := range map[string]string{LangZhCN: "zh", LangEnUS: "en_US"} {
		trans, found := uni.GetTranslator(locale)
		if !found {
			logger.Errorf("初始化翻译器失败: %s (locale: %s)", lang, locale)
			continue
		}
		i.translators[lang] = trans
	}
}

// Translate 根据键和语言获取翻译，找不到时依次回退到默认语言和键本身
func (i *I18n) Translate(key, lang string) string {
	lang = i.Normalize(lang)
	if msg, ok := translations[lang][key]; ok {
		return msg
	}
	if msg, ok := translations[i.defaultLang][key]; ok {
		return msg
	}
	logger.Warnf("未找到翻译: %s, 语言: %s", key, lang)
	return key
}

// Normalize 把 Accept-Language 之类的输入归一化为支持的语言，不支持时返回默认语言
func (i *I18n) Normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	if idx := strings.IndexAny(lang, ",;"); idx >= 0 {
		lang = lang[:idx]
	}
	switch {
	case strings.HasPrefix(strings.ToLower(lang), "en"):
		lang = LangEnUS
	case strings.HasPrefix(strings.ToLower(lang), "zh"):
		lang = LangZhCN
	}
	if _, ok := i.translators[lang]; ok {
		return lang
	}
	return i.defaultLang
}

// SetDefaultLanguage 设置默认语言
func (i *I18n) SetDefaultLanguage(lang string) {
	i.defaultLang = lang
}

// GetDefaultLanguage 获取默认语言
func (i *I18n) GetDefaultLanguage() string {
	return i.defaultLang
}

// IsSupportedLanguage 检查语言是否支持
func (i *I18n) IsSupportedLanguage(lang string) bool {
	_, ok := i.translators[lang]
	return ok
}
