package handler

import (
	"errors"
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// refresh token cookieの名前
const refreshCookieName = "refreshToken"

// cookieはauthルートだけに送らせる
const refreshCookiePath = "/auth"

type AuthHandler struct {
	authUC       *auth.AuthService
	refreshTTL   time.Duration // refresh cookieの有効期限
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(authUC *auth.AuthService, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		authUC:       authUC,
		refreshTTL:   cfg.RefreshTokenTTL,
		cookieSecure: cfg.IsProd(),
	}
}

// authルートを登録
func (h *AuthHandler) RegisterRoutes(e *echo.Echo, guard echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me, guard)
}

// /auth/register /auth/login のリクエストボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// user + access tokenを返すレスポンス
// refresh tokenはbodyに載せない（HttpOnly cookieのみ）
type authResponse struct {
	Message     string       `json:"message"`
	User        auth.UserDTO `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid request body"})
	}

	out, err := h.authUC.Register(c.Request().Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.writeAuthError(c, err)
	}

	h.setRefreshCookie(c, out.RefreshTokenPlain)

	return c.JSON(http.StatusCreated, authResponse{
		Message:     "User successfully registered",
		User:        out.User,
		AccessToken: out.AccessToken,
	})
}

// LoginはPOST /auth/login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid request body"})
	}

	out, err := h.authUC.Login(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.writeAuthError(c, err)
	}

	//既存セッションはそのまま、新しいrefresh cookieを積む
	h.setRefreshCookie(c, out.RefreshTokenPlain)

	return c.JSON(http.StatusOK, authResponse{
		Message:     "user successfully logged in",
		User:        out.User,
		AccessToken: out.AccessToken,
	})
}

// RefreshはPOST /auth/refresh のハンドラ。
// refresh tokenはcookieのみで受け取る（bodyでは受けない）
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthorized: no refresh token"})
	}

	out, err := h.authUC.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return h.writeAuthError(c, err)
	}

	//回転した新refresh tokenでcookieを貼り替える
	h.setRefreshCookie(c, out.RefreshTokenPlain)

	return c.JSON(http.StatusOK, refreshResponse{AccessToken: out.AccessToken})
}

// LogoutはPOST /auth/logout のハンドラ。
// 外から見ると必ず成功する。cookieクリアはどの経路でも必ず行う。
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		//内部の失敗はusecase側でログに落として飲み込む
		h.authUC.Logout(c.Request().Context(), cookie.Value)
	}

	//成功・失敗・cookie無しのどの場合も必ずクリア
	//Set-Cookieはレスポンス書き込み前に積むこと（コミット後のヘッダは捨てられる）
	h.clearRefreshCookie(c)

	return c.NoContent(http.StatusNoContent)
}

// MeはGET /auth/me のハンドラ。
// guardが解決したPrincipalをそのまま返す
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		//guardを通っていれば起きないはず
		return c.JSON(http.StatusNotFound, messageResponse{Message: "user not found"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"user": p})
}

// usecaseのエラーをstatusに変換
func (h *AuthHandler) writeAuthError(c echo.Context, err error) error {
	if ve, ok := usecase.AsValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, validationResponse{
			Message: "Validation failed. Please check your data",
			Errors:  ve.Fields,
		})
	}

	switch {
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, messageResponse{Message: "An account with this email already exists"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid credentials"})
	case errors.Is(err, auth.ErrUserGone):
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthorized: user not found for this token"})
	case errors.Is(err, auth.ErrRefreshExpired):
		return c.JSON(http.StatusForbidden, messageResponse{Message: "Forbidden: Refresh token has expired"})
	case errors.Is(err, auth.ErrRefreshInvalid):
		return c.JSON(http.StatusForbidden, messageResponse{Message: "Forbidden: Invalid refresh token"})
	case errors.Is(err, auth.ErrRefreshRevoked):
		return c.JSON(http.StatusForbidden, messageResponse{Message: "Forbidden: Invalid/revoked refresh token"})
	default:
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal error"})
	}
}

// refreshtoken をCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    plainRefresh,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.refreshTTL.Seconds()),
	}
	c.SetCookie(cookie)
}

// 空値＋即時失効でcookieを消す（pathは発行時と同じであること）
func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
	c.SetCookie(cookie)
}
