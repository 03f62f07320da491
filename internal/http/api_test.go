package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookify/internal/auth"
	"cookify/internal/repository/sqlite"
	"cookify/internal/service"
)

type stubMailer struct {
	sent []string
}

func (m *stubMailer) SendPasswordReset(to, newPassword string) error {
	m.sent = append(m.sent, to)
	return nil
}

type testAPI struct {
	router *gin.Engine
	mailer *stubMailer
	tokens *auth.TokenService
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	itemRepo := sqlite.NewItemRepository(db)
	require.NoError(t, userRepo.Init(t.Context()))
	require.NoError(t, itemRepo.Init(t.Context()))

	mailer := &stubMailer{}
	tokens := auth.NewTokenService("test-secret", time.Hour)
	handler := NewHandler(
		service.NewUserService(userRepo, mailer),
		service.NewItemService(itemRepo),
		tokens,
		nil,
		"",
		"uploads",
		nil,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return &testAPI{router: router, mailer: mailer, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (a *testAPI) register(t *testing.T, name, email, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/users", "", gin.H{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (a *testAPI) createItem(t *testing.T, token, title string) int64 {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/items", token, gin.H{
		"title":        title,
		"servings":     2,
		"cookTime":     20,
		"instructions": "cook it",
		"category":     []string{"dinner"},
		"ingredients": []gin.H{
			{"id": "ing-1", "name": "salt", "amount": "1tsp"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	list := a.do(t, http.MethodGet, "/api/items", "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &items))
	for _, item := range items {
		if item["title"] == title {
			return int64(item["id"].(float64))
		}
	}
	t.Fatalf("item %q not found in listing", title)
	return 0
}

func TestRegisterAndLogin(t *testing.T) {
	api := setupAPI(t)

	api.register(t, "alice", "a@x.com", "pw1")

	rec := api.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "alice", body["name"])
	assert.NotEmpty(t, body["token"])

	rec = api.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterDuplicates(t *testing.T) {
	api := setupAPI(t)
	api.register(t, "alice", "a@x.com", "pw1")

	rec := api.do(t, http.MethodPost, "/api/users", "", gin.H{"name": "bob", "email": "a@x.com", "password": "pw2"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with this email already exist", decode(t, rec)["message"])

	rec = api.do(t, http.MethodPost, "/api/users", "", gin.H{"name": "alice", "email": "b@x.com", "password": "pw2"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with this username already exist", decode(t, rec)["message"])
}

func TestAuthGate(t *testing.T) {
	api := setupAPI(t)
	token := api.register(t, "alice", "a@x.com", "pw1")

	t.Run("no token", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/users/profile", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, no token", decode(t, rec)["message"])
	})

	t.Run("tampered token", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/users/profile", token+"x", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, decode(t, rec)["message"])
	})

	t.Run("valid token", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/users/profile", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", decode(t, rec)["name"])
	})

	t.Run("token for deleted user", func(t *testing.T) {
		rec := api.do(t, http.MethodDelete, "/api/users/delete", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = api.do(t, http.MethodGet, "/api/users/profile", token, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "User not found", decode(t, rec)["message"])
	})
}

func TestProfileUpdate(t *testing.T) {
	api := setupAPI(t)
	token := api.register(t, "alice", "a@x.com", "pw1")

	rec := api.do(t, http.MethodPut, "/api/users/profile", token, gin.H{"name": "alice2", "password": "pw2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "alice2", body["name"])
	assert.NotEmpty(t, body["token"])

	// old password no longer works, new one does
	rec = api.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "a@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = api.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "a@x.com", "password": "pw2"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPasswordReset(t *testing.T) {
	api := setupAPI(t)
	api.register(t, "alice", "a@x.com", "pw1")

	t.Run("unknown email", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/users/reset", "", gin.H{"email": "who@x.com"})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", decode(t, rec)["message"])
		assert.Empty(t, api.mailer.sent)
	})

	t.Run("known email", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/users/reset", "", gin.H{"email": "a@x.com"})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "We sent a new password to a@x.com", decode(t, rec)["message"])
		require.Len(t, api.mailer.sent, 1)

		// old password stops working immediately
		login := api.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "a@x.com", "password": "pw1"})
		assert.Equal(t, http.StatusUnauthorized, login.Code)
	})
}

func TestItemOwnership(t *testing.T) {
	api := setupAPI(t)
	aliceToken := api.register(t, "alice", "a@x.com", "pw1")
	bobToken := api.register(t, "bob", "b@x.com", "pw2")

	itemID := api.createItem(t, aliceToken, "Pancakes")
	path := "/api/items/" + itoa(itemID)

	update := gin.H{"title": "Stolen Pancakes"}

	rec := api.do(t, http.MethodPut, path, bobToken, update)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not allowed to modify this item", decode(t, rec)["message"])

	rec = api.do(t, http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPut, path, aliceToken, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	get := api.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "Stolen Pancakes", decode(t, get)["title"])
}

func TestLikeToggleOverHTTP(t *testing.T) {
	api := setupAPI(t)
	aliceToken := api.register(t, "alice", "a@x.com", "pw1")
	bobToken := api.register(t, "bob", "b@x.com", "pw2")

	itemID := api.createItem(t, aliceToken, "Pancakes")
	likePath := "/api/items/like/" + itoa(itemID)
	itemPath := "/api/items/" + itoa(itemID)

	rec := api.do(t, http.MethodPost, likePath, bobToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Like added", decode(t, rec)["message"])

	body := decode(t, api.do(t, http.MethodGet, itemPath, "", nil))
	assert.Equal(t, float64(1), body["numLikes"])

	rec = api.do(t, http.MethodPost, likePath, bobToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Like removed", decode(t, rec)["message"])

	body = decode(t, api.do(t, http.MethodGet, itemPath, "", nil))
	assert.Equal(t, float64(0), body["numLikes"])
	assert.Empty(t, body["likes"])

	rec = api.do(t, http.MethodPost, "/api/items/like/999", bobToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item not found", decode(t, rec)["message"])
}

func TestCommentsOverHTTP(t *testing.T) {
	api := setupAPI(t)
	aliceToken := api.register(t, "alice", "a@x.com", "pw1")
	bobToken := api.register(t, "bob", "b@x.com", "pw2")

	itemID := api.createItem(t, aliceToken, "Pancakes")

	rec := api.do(t, http.MethodPost, "/api/items/comment/"+itoa(itemID), bobToken, gin.H{"text": "looks great"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Comment added", decode(t, rec)["message"])

	rec = api.do(t, http.MethodPost, "/api/items/comment/999", bobToken, gin.H{"text": "ghost"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item not found", decode(t, rec)["message"])

	body := decode(t, api.do(t, http.MethodGet, "/api/items/"+itoa(itemID), "", nil))
	comments := body["comments"].([]any)
	require.Len(t, comments, 1)
	comment := comments[0].(map[string]any)
	assert.Equal(t, "looks great", comment["text"])
	assert.Equal(t, "bob", comment["userName"])
}

func TestItemListings(t *testing.T) {
	api := setupAPI(t)
	aliceToken := api.register(t, "alice", "a@x.com", "pw1")
	bobToken := api.register(t, "bob", "b@x.com", "pw2")

	pancakesID := api.createItem(t, aliceToken, "Pancakes")
	api.createItem(t, bobToken, "Beef Stew")

	rec := api.do(t, http.MethodGet, "/api/items?keyword=pan", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Pancakes", items[0]["title"])

	rec = api.do(t, http.MethodGet, "/api/items/my", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Pancakes", items[0]["title"])

	api.do(t, http.MethodPost, "/api/items/like/"+itoa(pancakesID), bobToken, nil)

	rec = api.do(t, http.MethodGet, "/api/items/favorite", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Pancakes", items[0]["title"])
}

func TestUploadWithoutStorage(t *testing.T) {
	api := setupAPI(t)
	token := api.register(t, "alice", "a@x.com", "pw1")

	rec := api.do(t, http.MethodPost, "/api/uploads", token, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "storage service not configured", decode(t, rec)["message"])
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
