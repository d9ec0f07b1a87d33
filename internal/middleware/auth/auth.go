package auth

import (
	"net/http"
	"strings"

	"github.com/david3010/game_shop/internal/service/token"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey  = "userID"
	CtxIsAdminKey = "isAdmin"
)

type Middleware struct {
	JWTSecret []byte
}

func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.claimsFromRequest(c)
		if err != nil {
			return err
		}
		setUserContext(c, claims)
		return next(c)
	}
}

func (m *Middleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.claimsFromRequest(c)
		if err != nil {
			return err
		}
		if !claims.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin rights required")
		}
		setUserContext(c, claims)
		return next(c)
	}
}

func (m *Middleware) claimsFromRequest(c echo.Context) (*token.Claims, error) {
	raw, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	claims, err := token.ParseAccessToken(raw, m.JWTSecret)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return claims, nil
}

func bearerToken(c echo.Context) (string, error) {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if authz == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func setUserContext(c echo.Context, claims *token.Claims) {
	c.Set(CtxUserIDKey, claims.UserID)
	c.Set(CtxIsAdminKey, claims.IsAdmin)
}

func UserID(c echo.Context) uint {
	if v, ok := c.Get(CtxUserIDKey).(uint); ok {
		return v
	}
	return 0
}

func IsAdmin(c echo.Context) bool {
	if v, ok := c.Get(CtxIsAdminKey).(bool); ok {
		return v
	}
	return false
}

// CanAccessUser is the self-or-admin rule used for user and order resources.
func CanAccessUser(c echo.Context, ownerID uint) bool {
	return IsAdmin(c) || UserID(c) == ownerID
}
