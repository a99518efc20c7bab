package server

import (
	"log/slog"
	"net/http"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	appmw "app/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Newはechoを組み立てて返す
func New(
	cfg config.Config,
	log *slog.Logger,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	guard echo.MiddlewareFunc,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))

	//cookieを使うのでcredentials付きCORS
	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.FEURL},
			AllowCredentials: true,
		}))
	}

	//分類できなかったエラーは全部ここ。内部情報はprodでは出さない
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && !cfg.IsProd() {
				msg = s
			}
			_ = c.JSON(he.Code, map[string]string{"message": msg})
			return
		}

		log.Error("unhandled error", "uri", c.Request().RequestURI, "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"message": "internal error"})
	}

	RegisterRoutes(e, authH, productH, guard)

	return e
}

// ルーティングをまとめて登録
func RegisterRoutes(
	e *echo.Echo,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	guard echo.MiddlewareFunc,
) {
	authH.RegisterRoutes(e, guard)
	productH.RegisterRoutes(e, guard, appmw.RequireRole(model.RoleAdmin))
}
