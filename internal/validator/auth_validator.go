package validator

import (
	"context"
	"net/mail"
	"strings"

	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"
)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() auth.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, name string, email string, password string) error {
	fields := map[string]string{}

	if len(strings.TrimSpace(name)) < 3 {
		fields["name"] = "name must be at least 3 characters"
	}

	if !isEmailLike(email) {
		fields["email"] = "please enter a valid email address"
	}

	// パスワード最低文字数（MVP: 8）
	if len(password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}

	if len(fields) > 0 {
		return &usecase.ValidationError{Fields: fields}
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	fields := map[string]string{}

	if !isEmailLike(email) {
		fields["email"] = "please enter a valid email address"
	}

	if password == "" {
		fields["password"] = "password is required"
	}

	if len(fields) > 0 {
		return &usecase.ValidationError{Fields: fields}
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	_, err := mail.ParseAddress(trimmed)
	return err == nil
}
