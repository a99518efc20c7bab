package auth

import (
	"context"
	"errors"

	"app/internal/repository"
)

// Loginはログインを実行する
// 成功時は新しいrefresh tokenを「追加」する（既存は消さない：複数端末ログインを許す）
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := s.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return nil, err
	}

	//ユーザー取得
	//「emailが無い」「パスワードが違う」は同じエラーにする（どちらかを明かさない）
	user, err := s.users.FindByEmail(ctx, normalize(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, ErrInternal
	}

	//パスワード照合（bcrypt）
	if ok := s.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, ErrInternal
	}

	return &AuthResult{
		User:              toUserDTO(user),
		AccessToken:       accessToken,
		RefreshTokenPlain: refreshToken,
	}, nil
}
