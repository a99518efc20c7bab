package token

import (
	"errors"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// トークン種別（accessとrefreshでシークレットとTTLが違う）
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	//シークレット未設定（デプロイミス。リクエスト単位のエラーではない）
	ErrSecretMissing = errors.New("token secret missing")

	//期限切れ
	ErrTokenExpired = errors.New("token expired")

	//署名・構造が不正
	ErrTokenMalformed = errors.New("token malformed")
)

// 検証成功時に返すclaims
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// JWTの発行と検証
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuerは設定からIssuerを作る
// シークレットが無ければここで失敗させる（fail fast）
func NewIssuer(cfg config.Config) (*Issuer, error) {
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, ErrSecretMissing
	}

	return &Issuer{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}, nil
}

// Issueはsubject（user ID）に対して署名付きトークンを発行する
func (i *Issuer) Issue(subject string, kind Kind, now time.Time) (string, time.Time, error) {
	secret, ttl := i.secretAndTTL(kind)
	if len(secret) == 0 {
		return "", time.Time{}, ErrSecretMissing
	}

	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verifyはトークンを検証してclaimsを返す
// 失敗はErrTokenExpired / ErrTokenMalformedのどちらかに正規化する
func (i *Issuer) Verify(raw string, kind Kind) (Claims, error) {
	return i.verify(raw, kind, false)
}

// VerifyIgnoreExpiryは期限切れを無視して検証する
// logout専用：期限切れトークンからでもsubjectを回収してセッションを掃除したい
// 署名が不正なものは通さない
func (i *Issuer) VerifyIgnoreExpiry(raw string, kind Kind) (Claims, error) {
	return i.verify(raw, kind, true)
}

func (i *Issuer) verify(raw string, kind Kind, ignoreExpiry bool) (Claims, error) {
	secret, _ := i.secretAndTTL(kind)
	if len(secret) == 0 {
		return Claims{}, ErrSecretMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if ignoreExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return Claims{}, ErrTokenMalformed
	}

	out := Claims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}

func (i *Issuer) secretAndTTL(kind Kind) ([]byte, time.Duration) {
	if kind == KindRefresh {
		return i.refreshSecret, i.refreshTTL
	}
	return i.accessSecret, i.accessTTL
}
