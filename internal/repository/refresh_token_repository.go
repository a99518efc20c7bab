package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// リフレッシュトークンの保存・回転・削除
// 行の存在＝そのトークンが有効、が唯一の判定基準
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error

	// Rotateは旧トークン削除と新トークン追加を1トランザクションで行う
	// 旧トークンが既に無ければErrRefreshTokenNotFound（= replayの疑い）
	// 旧トークンが成功後も有効なまま残ることは無い
	Rotate(ctx context.Context, userID string, oldTokenHash string, newToken *model.RefreshToken) error

	DeleteByHash(ctx context.Context, userID string, tokenHash string) error

	//ユーザーの全トークン失効（replay検知時）
	DeleteAllByUserID(ctx context.Context, userID string) error
}
