package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/token"
	auth "app/internal/usecase/auth_usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, tok *model.RefreshToken) error {
	args := m.Called(ctx, tok)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Rotate(ctx context.Context, userID string, oldTokenHash string, newToken *model.RefreshToken) error {
	args := m.Called(ctx, userID, oldTokenHash, newToken)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteByHash(ctx context.Context, userID string, tokenHash string) error {
	args := m.Called(ctx, userID, tokenHash)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type uuidLikeGen struct{ n int }

func (g *uuidLikeGen) NewID() string {
	g.n++
	return "00000000-0000-0000-0000-" + strconv.Itoa(100000000000+g.n)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func testConfig() config.Config {
	return config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		GoEnv:            "dev",
	}
}

// mockリポジトリの上に本物のusecase＋handler＋guardを組む
func newTestServer(t *testing.T, users *MockUserRepository, rt *MockRefreshTokenRepository) (*echo.Echo, *token.Issuer) {
	t.Helper()

	cfg := testConfig()

	issuer, err := token.NewIssuer(cfg)
	require.NoError(t, err)

	svc := auth.NewAuthService(
		users,
		rt,
		issuer,
		auth.NewBcryptPasswordHasher(4),
		auth.NewBcryptPasswordVerifier(),
		validator.NewAuthValidator(),
		&uuidLikeGen{},
		realClock{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	e := echo.New()
	h := handler.NewAuthHandler(svc, cfg)
	h.RegisterRoutes(e, middleware.AccessGuard(issuer, users))

	return e, issuer
}

func doJSON(e *echo.Echo, method, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

func TestRegister_SetsCookieAndReturnsUser(t *testing.T) {
	users := new(MockUserRepository)
	rt := new(MockRefreshTokenRepository)
	e, _ := newTestServer(t, users, rt)

	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	rt.On("Create", mock.Anything, mock.Anything).Return(nil)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"name":"Alice","email":"alice@x.com","password":"secret123"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Message     string       `json:"message"`
		User        auth.UserDTO `json:"user"`
		AccessToken string       `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice@x.com", body.User.Email)
	assert.NotEmpty(t, body.AccessToken)

	//refresh tokenはbodyには出ない
	assert.NotContains(t, rec.Body.String(), "refreshToken")

	c := refreshCookie(t, rec)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/auth", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), c.MaxAge)
}

func TestRegister_Validation(t *testing.T) {
	users := new(MockUserRepository)
	rt := new(MockRefreshTokenRepository)
	e, _ := newTestServer(t, users, rt)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"name":"al","email":"not-an-email","password":"short"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "name")
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "password")

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_Conflict(t *testing.T) {
	users := new(MockUserRepository)
	rt := new(MockRefreshTokenRepository)
	e, _ := newTestServer(t, users, rt)

	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailTaken)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"name":"Alice","email":"alice@x.com","password":"secret123"}`, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	users := new(MockUserRepository)
	rt := new(MockRefreshTokenRepository)
	e, _ := newTestServer(t, users, rt)

	users.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, repository.ErrUserNotFound)

	rec := doJSON(e, http.MethodPost, "/auth/login",
		`{"email":"ghost@x.com","password":"whatever1"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestRefresh_MissingCookie(t *testing.T) {
	users := new(MockUserRepository)
	rt := new(MockRefreshTokenRepository)
	e, _ := newTestServer(t, users, rt)

	rec := doJSON(e, http.MethodPost, "/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_RotatesCookie(t *testing.T) {
	users := new(MockUserRepository)
	rt := new(MockRefreshTokenRepository)
	e, issuer := newTestServer(t, users, rt)

	oldRefresh, _, err := issuer.Issue("user-1", token.KindRefresh, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	users.On("FindByID", mock.Anything, "user-1").Return(&model.User{
		ID:    "user-1",
		Email: "alice@x.com",
		Roles: []string{"user"},
	}, nil)
	rt.On("Rotate", mock.Anything, "user-1", mock.Anything, mock.Anything).Return(nil)

	rec := doJSON(e, http.MethodPost, "/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refreshToken", Value: oldRefresh})
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)

	c := refreshCookie(t, rec)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.NotEqual(t, oldRefresh, c.Value)
}

func TestRefresh_RevokedReturns403(t *testing.T) {
	users := new(MockUserRepository)
	rt := new(MockRefreshTokenRepository)
	e, issuer := newTestServer(t, users, rt)

	replayed, _, err := issuer.Issue("user-1", token.KindRefresh, time.Now())
	require.NoError(t, err)

	users.On("FindByID", mock.Anything, "user-1").Return(&model.User{ID: "user-1"}, nil)
	rt.On("Rotate", mock.Anything, "user-1", mock.Anything, mock.Anything).
		Return(repository.ErrRefreshTokenNotFound)
	rt.On("DeleteAllByUserID", mock.Anything, "user-1").Return(nil)

	rec := doJSON(e, http.MethodPost, "/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refreshToken", Value: replayed})
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid/revoked refresh token")
}

// logoutはどの経路でも204＋cookieクリア
func TestLogout_AlwaysClearsCookie(t *testing.T) {
	issuerForTokens, err := token.NewIssuer(testConfig())
	require.NoError(t, err)

	valid, _, err := issuerForTokens.Issue("user-1", token.KindRefresh, time.Now())
	require.NoError(t, err)

	cases := []struct {
		name  string
		setup func(users *MockUserRepository, rt *MockRefreshTokenRepository)
		token string
	}{
		{name: "no cookie"},
		{name: "garbage cookie", token: "garbage"},
		{
			name:  "user gone",
			token: valid,
			setup: func(users *MockUserRepository, rt *MockRefreshTokenRepository) {
				users.On("FindByID", mock.Anything, "user-1").Return(nil, repository.ErrUserNotFound)
			},
		},
		{
			name:  "token not in active list",
			token: valid,
			setup: func(users *MockUserRepository, rt *MockRefreshTokenRepository) {
				users.On("FindByID", mock.Anything, "user-1").Return(&model.User{ID: "user-1"}, nil)
				rt.On("DeleteByHash", mock.Anything, "user-1", mock.Anything).
					Return(repository.ErrRefreshTokenNotFound)
			},
		},
		{
			name:  "happy path",
			token: valid,
			setup: func(users *MockUserRepository, rt *MockRefreshTokenRepository) {
				users.On("FindByID", mock.Anything, "user-1").Return(&model.User{ID: "user-1"}, nil)
				rt.On("DeleteByHash", mock.Anything, "user-1", mock.Anything).Return(nil)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := new(MockUserRepository)
			rt := new(MockRefreshTokenRepository)
			e, _ := newTestServer(t, users, rt)

			if tc.setup != nil {
				tc.setup(users, rt)
			}

			rec := doJSON(e, http.MethodPost, "/auth/logout", "", func(r *http.Request) {
				if tc.token != "" {
					r.AddCookie(&http.Cookie{Name: "refreshToken", Value: tc.token})
				}
			})

			assert.Equal(t, http.StatusNoContent, rec.Code)

			c := refreshCookie(t, rec)
			require.NotNil(t, c, "logout must always rewrite the cookie")
			assert.Empty(t, c.Value)
			assert.Equal(t, "/auth", c.Path)
			assert.Less(t, c.MaxAge, 0)
		})
	}
}

func TestMe_WithAccessToken(t *testing.T) {
	users := new(MockUserRepository)
	rt := new(MockRefreshTokenRepository)
	e, issuer := newTestServer(t, users, rt)

	access, _, err := issuer.Issue("user-1", token.KindAccess, time.Now())
	require.NoError(t, err)

	users.On("FindByID", mock.Anything, "user-1").Return(&model.User{
		ID:           "user-1",
		Name:         "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$10$hash",
		Roles:        []string{"user"},
	}, nil)

	rec := doJSON(e, http.MethodGet, "/auth/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access)
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User middleware.Principal `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice@x.com", body.User.Email)
	assert.NotContains(t, rec.Body.String(), "hash")
}
