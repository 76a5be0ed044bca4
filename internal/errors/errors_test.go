package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weiwangfds/lzydiary/internal/i18n"
)

func TestWrapKeepsOriginalError(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrStorageUploadFailed, "", cause)

	assert.Equal(t, "图片上传失败", err.Message)
	assert.Equal(t, "disk full", err.Details)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[3001] 图片上传失败: disk full", err.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("delete account: %w", FromCode(ErrAdminUnavailable))

	assert.ErrorIs(t, err, FromCode(ErrAdminUnavailable))
	assert.NotErrorIs(t, err, FromCode(ErrUnauthorized))
	assert.True(t, HasCode(err, ErrAdminUnavailable))

	appErr, ok := GetAppError(err)
	assert.True(t, ok)
	assert.Equal(t, ErrAdminUnavailable, appErr.Code)
}

func TestMessageLanguages(t *testing.T) {
	assert.Equal(t, "日记已发布", GetErrorMessageWithLang(ErrDraftAlreadyPublished, i18n.LangZhCN))
	assert.Equal(t, "Diary Already Published", GetErrorMessageWithLang(ErrDraftAlreadyPublished, "en-GB,en;q=0.8"))
	assert.Equal(t, "未知错误", GetErrorMessage(ErrorCode(9999)))
}
