package auth

import (
	"context"
	"errors"

	"app/internal/repository"
	"app/internal/token"
)

// Logoutはbest-effortでセッションを掃除する
// decode -> lookup -> 削除、の各ステップは個別に失敗してよく、
// 失敗はログに残して飲み込む。呼び出し側（handler）には絶対にエラーを返さない。
// Cookieのクリアはhandler側で無条件に行う。
func (s *AuthService) Logout(ctx context.Context, refreshTokenPlain string) {
	if refreshTokenPlain == "" {
		return
	}

	//期限切れでもsubjectは回収したいのでexpは無視して検証する
	//署名が不正なものはここで終わり
	claims, err := s.issuer.VerifyIgnoreExpiry(refreshTokenPlain, token.KindRefresh)
	if err != nil {
		s.log.Warn("logout attempt using malformed token or invalid signature", "error", err)
		return
	}

	if _, err := s.users.FindByID(ctx, claims.Subject); err != nil {
		s.log.Warn("logout: user for token not found", "user_id", claims.Subject, "error", err)
		return
	}

	//有効リストに無いトークンでも失敗扱いにしない
	err = s.rtRepo.DeleteByHash(ctx, claims.Subject, hashToken(refreshTokenPlain))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			s.log.Info("logout: refresh token not in the active list", "user_id", claims.Subject)
		} else {
			s.log.Error("logout: failed to delete refresh token", "user_id", claims.Subject, "error", err)
		}
		return
	}

	s.log.Info("user logged out, refresh token invalidated", "user_id", claims.Subject)
}
