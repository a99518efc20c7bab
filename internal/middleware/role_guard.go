package middleware

import (
	"net/http"

	"app/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているPrincipalが指定roleを持つかを確認します。

func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if p == nil {
				return c.JSON(http.StatusUnauthorized, messageJSON("Not authorized"))
			}

			if !p.HasRole(role) {
				return c.JSON(http.StatusForbidden, messageJSON("Forbidden: insufficient role"))
			}

			return next(c)
		}
	}
}
