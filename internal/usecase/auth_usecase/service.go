package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/token"
)

var (
	//409 email重複
	ErrEmailAlreadyExists = errors.New("email already exists")

	//401 メールまたはパスワードが違う（どちらかは明かさない）
	ErrInvalidCredentials = errors.New("invalid credentials")

	//401 トークンのユーザーがもう居ない
	ErrUserGone = errors.New("user for token not found")

	//403 refresh tokenの期限切れ
	ErrRefreshExpired = errors.New("refresh token expired")

	//403 refresh tokenの署名・構造が不正
	ErrRefreshInvalid = errors.New("refresh token invalid")

	//403 回転済み・失効済みのrefresh token（replayの疑い）
	ErrRefreshRevoked = errors.New("refresh token revoked")

	//500
	ErrInternal = errors.New("internal error")
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, name string, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// AuthServiceはregister/login/refresh/logoutを取りまとめる
type AuthService struct {
	users     repository.UserRepository
	rtRepo    repository.RefreshTokenRepository
	issuer    *token.Issuer
	hasher    PasswordHasher
	verifier  PasswordVerifier
	validator AuthValidator
	idGen     IDGenerator
	clock     Clock
	log       *slog.Logger
}

// DI
func NewAuthService(
	users repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer *token.Issuer,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	validator AuthValidator,
	idGen IDGenerator,
	clock Clock,
	log *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		rtRepo:    rtRepo,
		issuer:    issuer,
		hasher:    hasher,
		verifier:  verifier,
		validator: validator,
		idGen:     idGen,
		clock:     clock,
		log:       log,
	}
}

// access+refreshのペアを発行してrefreshを保存する
// 呼び出し側でuserは確定済みであること
func (s *AuthService) issueTokenPair(ctx context.Context, userID string) (accessToken string, refreshToken string, err error) {
	now := s.clock.Now()

	accessToken, _, err = s.issuer.Issue(userID, token.KindAccess, now)
	if err != nil {
		return "", "", err
	}

	var refreshExp time.Time
	refreshToken, refreshExp, err = s.issuer.Issue(userID, token.KindRefresh, now)
	if err != nil {
		return "", "", err
	}

	rt := &model.RefreshToken{
		TokenHash: hashToken(refreshToken),
		UserID:    userID,
		ExpiresAt: refreshExp,
		CreatedAt: now,
	}

	if err := s.rtRepo.Create(ctx, rt); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// DBにはhashのみ保存（sha256 -> base64url）
func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
