package auth

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	"app/internal/repository"
)

// Registerは会員登録を実行する
// 成功時はaccess+refreshペアを発行し、refreshはこのユーザーの唯一のエントリとして保存する
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	//入力検証（validatorに寄せる）
	if err := s.validator.ValidateRegister(ctx, in.Name, in.Email, in.Password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	//ハッシュ化はパスワード設定時の1回だけ
	pwHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, ErrInternal
	}

	now := s.clock.Now()

	user := &model.User{
		ID:           s.idGen.NewID(),
		Name:         normalize(in.Name),
		Email:        normalize(in.Email),
		PasswordHash: pwHash,
		Roles:        []string{string(model.RoleUser)},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	//email重複はunique制約で弾く（先にFindByEmailしない：レースの穴になる）
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, ErrInternal
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

// email・nameは小文字化＋trimで正規化（originalのDBと同じ挙動）
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
