package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/account"
)

// rolesMiddleware lets through authenticated accounts holding any of the
// given roles. No roles means any authenticated account. The Forbidden
// response names the caller's role and the roles the route accepts.
func rolesMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if len(roles) == 0 {
				return next(ctx)
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("role %s is not authorized, requires %s", claims.Role, strings.Join(roles, " or ")))
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return rolesMiddleware(account.RoleAdmin)
}

func staffMiddleware() echo.MiddlewareFunc {
	return rolesMiddleware(account.RoleAdmin, account.RoleFaculty)
}

func studentMiddleware() echo.MiddlewareFunc {
	return rolesMiddleware(account.RoleStudent)
}
