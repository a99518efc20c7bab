package auth

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/token"
)

// Refreshはrefresh tokenの回転を実行する
//
// refresh tokenのライフサイクル：
//
//	issued -> active -> rotated-out | revoked | expired
//
// 署名が正しくてもDBに行が無ければ拒否する（行の有無が唯一の真実）
// 回転済みトークンの再提示はreplayとみなし、そのユーザーの全トークンを失効させる
func (s *AuthService) Refresh(ctx context.Context, refreshTokenPlain string) (*RefreshResult, error) {
	if refreshTokenPlain == "" {
		return nil, ErrInvalidCredentials
	}

	//署名・期限の検証
	claims, err := s.issuer.Verify(refreshTokenPlain, token.KindRefresh)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrTokenExpired):
			return nil, ErrRefreshExpired
		case errors.Is(err, token.ErrTokenMalformed):
			return nil, ErrRefreshInvalid
		default:
			return nil, ErrInternal
		}
	}

	//subjectのユーザーがまだ居るか
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, ErrInternal
	}

	now := s.clock.Now()

	//新ペアを先に作る（Rotateに渡すため）
	accessToken, _, err := s.issuer.Issue(user.ID, token.KindAccess, now)
	if err != nil {
		return nil, ErrInternal
	}

	newRefresh, newRefreshExp, err := s.issuer.Issue(user.ID, token.KindRefresh, now)
	if err != nil {
		return nil, ErrInternal
	}

	newRT := &model.RefreshToken{
		TokenHash: hashToken(newRefresh),
		UserID:    user.ID,
		ExpiresAt: newRefreshExp,
		CreatedAt: now,
	}

	//旧削除＋新追加を1トランザクションで（所属チェックと回転をatomicに）
	//旧トークンが既に無い＝回転済みのトークンが再提示された（replay）
	oldHash := hashToken(refreshTokenPlain)
	if err := s.rtRepo.Rotate(ctx, user.ID, oldHash, newRT); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, s.revokeAll(ctx, user.ID)
		}
		return nil, ErrInternal
	}

	return &RefreshResult{
		AccessToken:       accessToken,
		RefreshTokenPlain: newRefresh,
	}, nil
}

// replay検知：このユーザーの全refresh tokenを失効させる
// 可用性よりも安全側に倒す（他端末のセッションも全部切れる）
func (s *AuthService) revokeAll(ctx context.Context, userID string) error {
	s.log.Warn("attempt to use an invalid/revoked refresh token, revoking all sessions",
		"user_id", userID)

	if err := s.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		s.log.Error("failed to revoke refresh tokens", "user_id", userID, "error", err)
		return ErrInternal
	}

	return ErrRefreshRevoked
}
