package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ayaan09TTT/tradeforge/internal/account"
	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/httputil"
)

// JWTAuth resolves the bearer token through the account directory, so a
// revoked session is rejected even while its token is still unexpired.
// On success the account identity is placed into the request context.
func JWTAuth(dir *account.Directory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			acct, err := dir.CurrentSession(c.Request().Context(), token)
			if err != nil {
				return httputil.Error(c, err)
			}
			c.Set("user_id", acct.ID)
			c.Set("user_name", acct.Name)
			c.Set("role", acct.Role)
			c.Set("token", token)
			c.Set("account", acct)
			return next(c)
		}
	}
}

// AdminGuard ensures only admin users reach admin routes.
func AdminGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := c.Get("role").(string)
		if !ok || role != account.RoleAdmin {
			return httputil.Error(c, apperr.New(apperr.CodeForbidden, "admin access only"))
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return header[len(prefix):]
	}
	// Websocket clients cannot set headers from the browser; accept the
	// token as a query parameter there.
	return c.QueryParam("token")
}
