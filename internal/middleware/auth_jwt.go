package middleware

import (
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxPrincipalKey = "principal" // *Principal
)

// Access Guard通過後にリクエストへ付くユーザー
// password_hashとrefresh token一覧は絶対に載せない
type Principal struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func (p *Principal) HasRole(role model.Role) bool {
	for _, r := range p.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// contextからPrincipalを取り出す（guard未通過ならnil）
func PrincipalFrom(c echo.Context) *Principal {
	p, _ := c.Get(CtxPrincipalKey).(*Principal)
	return p
}

// bearerAuth用のaccess token検証ミドルウェア。
// 毎リクエスト同期で実行する。キャッシュやスキップはしない。
func AccessGuard(issuer *token.Issuer, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, messageJSON("Not authorized, no token provided"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, messageJSON("Not authorized, no token provided"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, messageJSON("Not authorized, no token provided"))
			}

			//access tokenとして検証する
			//期限切れと署名不正は別メッセージで返す
			claims, err := issuer.Verify(rawToken, token.KindAccess)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrTokenExpired):
					return c.JSON(http.StatusUnauthorized, messageJSON("Not authorized, token expired"))
				case errors.Is(err, token.ErrTokenMalformed):
					return c.JSON(http.StatusUnauthorized, messageJSON("Not authorized, token malformed or invalid"))
				default:
					return c.JSON(http.StatusUnauthorized, messageJSON("Not authorized, token failed"))
				}
			}

			if claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, messageJSON("Not authorized, token payload invalid"))
			}

			//subjectのユーザーを解決（消えていたら401）
			user, err := users.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, messageJSON("Not authorized, user for token not found"))
				}
				return c.JSON(http.StatusInternalServerError, messageJSON("internal error"))
			}

			//contextへ保存（hashとトークン一覧は落とした射影）
			c.Set(CtxPrincipalKey, &Principal{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
				Roles: user.Roles,
			})

			return next(c)
		}
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func messageJSON(msg string) messageResponse {
	return messageResponse{Message: msg}
}
