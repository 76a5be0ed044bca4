package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/database"
	"github.com/weiwangfds/lzydiary/internal/repository"
	"github.com/weiwangfds/lzydiary/internal/service/auth"
	"github.com/weiwangfds/lzydiary/internal/service/collection"
	"github.com/weiwangfds/lzydiary/internal/service/countdown"
	"github.com/weiwangfds/lzydiary/internal/service/diary"
	"github.com/weiwangfds/lzydiary/internal/service/lifecycle"
	"github.com/weiwangfds/lzydiary/internal/service/location"
	"github.com/weiwangfds/lzydiary/internal/service/storage"
	"github.com/weiwangfds/lzydiary/internal/service/visitor"
	"gorm.io/gorm"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type beijing struct{}

func (beijing) Name() string { return "stub" }

func (beijing) Lookup(context.Context, float64, float64) (location.Place, error) {
	return location.Place{City: "北京市", District: "朝阳区"}, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t     *testing.T
	h     http.Handler
	db    *gorm.DB
	token string
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test", AllowOrigins: []string{"*"}},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", AdminKey: "admin-key"},
		Storage: config.StorageConfig{
			Provider:      "local",
			Bucket:        "images",
			PublicBaseURL: "/uploads",
			LocalRoot:     t.TempDir(),
		},
		Upload: config.UploadConfig{
			MaxImageSize: 1 << 20,
			MaxImages:    3,
			AllowedTypes: []string{"image/png", "image/jpeg"},
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	blobs, err := storage.NewLocalStorage(cfg.Storage)
	require.NoError(t, err)
	store := repository.NewStore(db)
	resolver := location.NewResolver(beijing{}, nil)

	r := NewRouter(cfg, Services{
		Auth:        auth.NewService(store, cfg.Auth),
		Coordinator: lifecycle.NewCoordinator(store, blobs, auth.NewAdmin(store, cfg.Auth.AdminKey)),
		Diaries:     diary.NewService(store, resolver),
		Collections: collection.NewService(store),
		Countdowns:  countdown.NewService(store),
		Resolver:    resolver,
		Visitors:    visitor.NewRecorder(store),
		Blobs:       blobs,
	})
	return &testServer{t: t, h: r.GetEngine(), db: db}
}

func (s *testServer) do(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.h.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNoContent && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) json(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) multipart(method, path string, fields map[string]string, files map[string][]byte) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(s.t, err)
		_, err = fw.Write(data)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req)
}

func (s *testServer) signIn(email string) {
	s.t.Helper()
	w, _ := s.json(http.MethodPost, "/api/v1/auth/signup", map[string]string{"email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusCreated, w.Code)

	w, env := s.json(http.MethodPost, "/api/v1/auth/signin", map[string]string{"email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusOK, w.Code)
	var token auth.Token
	require.NoError(s.t, json.Unmarshal(env.Data, &token))
	s.token = token.AccessToken
}

func TestHealthAndPublicRoutes(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.json(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := s.json(http.MethodGet, "/api/v1/location/resolve?lat=39.9042&lon=116.4074", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "北京市朝阳区")

	w, _ = s.json(http.MethodGet, "/api/v1/location/resolve?lat=abc&lon=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.json(http.MethodGet, "/api/v1/location/check?value="+"39.9042,%20116.4074", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"is_coordinate":true`)

	w, _ = s.json(http.MethodGet, "/api/v1/visitor?path=/diary", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	var visits int64
	require.NoError(t, s.db.Model(&database.Visitor{}).Count(&visits).Error)
	assert.EqualValues(t, 1, visits)

	w, _ = s.json(http.MethodGet, "/api/v1/diaries", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDiaryFlow(t *testing.T) {
	s := newTestServer(t)
	s.signIn("lzy@example.com")

	// 不允许的类型使整个请求失败，不写入任何数据
	w, _ := s.multipart(http.MethodPost, "/api/v1/diaries",
		map[string]string{"content": "今天"}, map[string][]byte{"a.txt": []byte("hello world")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var entries int64
	require.NoError(t, s.db.Model(&database.DiaryEntry{}).Count(&entries).Error)
	assert.Zero(t, entries)

	w, env := s.multipart(http.MethodPost, "/api/v1/diaries",
		map[string]string{"content": "今天去了公园", "location": "39.9042, 116.4074", "is_private": "true"},
		map[string][]byte{"park.png": pngData})
	require.Equal(t, http.StatusCreated, w.Code)
	var created lifecycle.EntryResult
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.Images, 1)
	assert.True(t, created.Entry.IsPrivate)
	assert.Equal(t, lifecycle.DefaultAuthorNickname, created.Entry.AuthorNickname)
	assert.True(t, strings.HasPrefix(created.Images[0].ImageURL, "/uploads/images/"))

	// 本地存储的图片可以直接访问
	w, _ = s.do(httptest.NewRequest(http.MethodGet, created.Images[0].ImageURL, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.json(http.MethodGet, "/api/v1/diaries/"+created.Entry.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail diary.Detail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "北京市朝阳区", detail.ResolvedLocation)
	assert.Equal(t, "39.9042, 116.4074", *detail.Entry.Location)

	w, _ = s.json(http.MethodPost, "/api/v1/diaries/"+created.Entry.ID+"/comments", map[string]string{"content": "真好"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w, env = s.json(http.MethodGet, "/api/v1/diaries/"+created.Entry.ID+"/comments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []database.DiaryComment
	require.NoError(t, json.Unmarshal(env.Data, &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, diary.DefaultCommentNickname, comments[0].AuthorNickname)

	w, env = s.json(http.MethodGet, "/api/v1/albums", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var albums []database.Album
	require.NoError(t, json.Unmarshal(env.Data, &albums))
	require.Len(t, albums, 1)
	assert.Equal(t, database.DefaultAlbumName, albums[0].Name)

	w, _ = s.json(http.MethodDelete, "/api/v1/diaries/"+created.Entry.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.json(http.MethodGet, "/api/v1/diaries/"+created.Entry.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftFlow(t *testing.T) {
	s := newTestServer(t)
	s.signIn("draft@example.com")

	w, env := s.multipart(http.MethodPost, "/api/v1/drafts", map[string]string{"content": "草稿"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var draft lifecycle.EntryResult
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.True(t, draft.Entry.IsDraft)

	w, env = s.multipart(http.MethodPost, "/api/v1/drafts",
		map[string]string{"content": "草稿第二版", "draft_id": draft.Entry.ID}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.Equal(t, "草稿第二版", draft.Entry.Content)

	// 草稿默认不在列表中
	w, env = s.json(http.MethodGet, "/api/v1/diaries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total":0`)

	w, _ = s.json(http.MethodPost, "/api/v1/diaries/"+draft.Entry.ID+"/publish", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.json(http.MethodPost, "/api/v1/diaries/"+draft.Entry.ID+"/publish", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.json(http.MethodGet, "/api/v1/diaries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total":1`)
}

func TestCollectionsAndAccountDeletion(t *testing.T) {
	s := newTestServer(t)
	s.signIn("owner@example.com")

	w, env := s.json(http.MethodPost, "/api/v1/notebooks", map[string]string{"name": "读书"})
	require.Equal(t, http.StatusCreated, w.Code)
	var notebook database.Notebook
	require.NoError(t, json.Unmarshal(env.Data, &notebook))

	w, _ = s.multipart(http.MethodPost, "/api/v1/diaries",
		map[string]string{"content": "读完了", "notebook_id": notebook.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.json(http.MethodPost, "/api/v1/countdowns",
		map[string]string{"title": "生日", "target_date": "2030-01-01", "type": "countdown"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.json(http.MethodPost, "/api/v1/countdowns",
		map[string]string{"title": "生日", "target_date": "2030-01-01", "type": "birthday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.json(http.MethodDelete, "/api/v1/notebooks/"+notebook.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, env = s.json(http.MethodGet, "/api/v1/diaries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"notebook_id":null`)

	w, _ = s.json(http.MethodDelete, "/api/v1/account", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	for _, model := range []interface{}{&database.DiaryEntry{}, &database.Countdown{}, &database.Account{}, &database.Session{}} {
		var n int64
		require.NoError(t, s.db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}

	// 会话随账户一起删除，旧令牌失效
	w, _ = s.json(http.MethodGet, "/api/v1/auth/session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignOutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	s.signIn("out@example.com")

	w, _ := s.json(http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.json(http.MethodPost, "/api/v1/auth/signout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = s.json(http.MethodGet, "/api/v1/auth/session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadServedAsSniffedType(t *testing.T) {
	s := newTestServer(t)
	s.signIn("upload@example.com")

	payload := append(append([]byte{}, pngData...), "<script>alert(document.cookie)</script>"...)
	w, env := s.multipart(http.MethodPost, "/api/v1/diaries",
		map[string]string{"content": "附件"}, map[string][]byte{"evil.html": payload})
	require.Equal(t, http.StatusCreated, w.Code)
	var created lifecycle.EntryResult
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.Images, 1)
	// 扩展名来自内容而不是文件名
	assert.True(t, strings.HasSuffix(created.Images[0].ImageURL, ".png"))

	w, _ = s.do(httptest.NewRequest(http.MethodGet, created.Images[0].ImageURL, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRateLimitByPeerAddress(t *testing.T) {
	limited := func(cfg *config.Config) {
		cfg.Server.RateLimit = 0.001
		cfg.Server.RateBurst = 2
	}
	hit := func(s *testServer, i int) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i))
		w, _ := s.do(req)
		return w.Code
	}

	t.Run("未信任代理时忽略转发头", func(t *testing.T) {
		s := newTestServer(t, limited)
		allowed := 0
		for i := 0; i < 10; i++ {
			if hit(s, i) == http.StatusOK {
				allowed++
			}
		}
		assert.Equal(t, 2, allowed)
	})

	t.Run("可信代理转发的请求按真实IP计数", func(t *testing.T) {
		s := newTestServer(t, limited, func(cfg *config.Config) {
			cfg.Server.TrustedProxies = []string{"192.0.2.1"}
		})
		for i := 0; i < 10; i++ {
			assert.Equal(t, http.StatusOK, hit(s, i))
		}
	})
}
