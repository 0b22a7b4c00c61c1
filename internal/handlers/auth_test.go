package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/gabrieudev/marcahora/internal/constants"
	"github.com/gabrieudev/marcahora/internal/database"
	"github.com/gabrieudev/marcahora/internal/dto"
	"github.com/gabrieudev/marcahora/internal/middleware"
	"github.com/gabrieudev/marcahora/internal/models"
	"github.com/gabrieudev/marcahora/internal/repository"
	"github.com/gabrieudev/marcahora/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
	}
}

func authTestRouter(env authTestEnv) *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/signup", env.handler.Signup)
	r.POST("/api/auth/login", env.handler.Login)
	r.POST("/api/auth/logout", env.handler.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(), env.handler.GetCurrentUser)
	return r
}

func authJSONRequest(t *testing.T, r *gin.Engine, method, url string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := authTestRouter(env)

	w := authJSONRequest(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Maria",
		"email":    "maria@marcahora.com",
		"password": "segredo-forte",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "maria@marcahora.com", response.Email)
	require.NotEmpty(t, response.ID)
	// The password hash never leaves the server.
	require.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_Signup_InvalidBody(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := authTestRouter(env)

	w := authJSONRequest(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":  "Maria",
		"email": "nao-e-email",
	}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := authTestRouter(env)

	payload := map[string]string{
		"name":     "Maria",
		"email":    "maria@marcahora.com",
		"password": "segredo-forte",
	}
	w := authJSONRequest(t, r, http.MethodPost, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = authJSONRequest(t, r, http.MethodPost, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := authTestRouter(env)

	w := authJSONRequest(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Maria",
		"email":    "maria@marcahora.com",
		"password": "segredo-forte",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = authJSONRequest(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "maria@marcahora.com",
		"password": "segredo-forte",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = authJSONRequest(t, r, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "maria@marcahora.com", response.Email)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := authTestRouter(env)

	w := authJSONRequest(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Maria",
		"email":    "maria@marcahora.com",
		"password": "segredo-forte",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = authJSONRequest(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "maria@marcahora.com",
		"password": "senha-errada",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_MeWithoutSession(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := authTestRouter(env)

	w := authJSONRequest(t, r, http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := authTestRouter(env)

	w := authJSONRequest(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Maria",
		"email":    "maria@marcahora.com",
		"password": "segredo-forte",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = authJSONRequest(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "maria@marcahora.com",
		"password": "segredo-forte",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	w = authJSONRequest(t, r, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	// The cleared session no longer authenticates.
	w = authJSONRequest(t, r, http.MethodGet, "/api/auth/me", nil, w.Result().Cookies())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
