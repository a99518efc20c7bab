package auth_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/token"
	auth "app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mock: UserRepository
// =====================

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

// =====================
// Mock: RefreshTokenRepository
// =====================

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

// =====================
// 小さな部品
// =====================

// 全部通すvalidator
type okValidator struct{}

func (okValidator) ValidateRegister(ctx context.Context, name, email, password string) error {
	return nil
}

func (okValidator) ValidateLogin(ctx context.Context, email, password string) error {
	return nil
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type seqIDGen struct {
	n int
}

func (g *seqIDGen) NewID() string {
	g.n++
	return "id-" + strconv.Itoa(g.n)
}

func testIssuer(t *testing.T) *token.Issuer {
	t.Helper()

	issuer, err := token.NewIssuer(config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return issuer
}

func newService(t *testing.T, users *MockUserRepository, rt *MockRefreshTokenRepository) *auth.AuthService {
	t.Helper()

	return auth.NewAuthService(
		users,
		rt,
		testIssuer(t),
		auth.NewBcryptPasswordHasher(4), // テストなので低コスト
		auth.NewBcryptPasswordVerifier(),
		okValidator{},
		&seqIDGen{},
		fixedClock{t: time.Now()},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

// DB保存側と同じhash（sha256 -> base64url）
func storedHash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
