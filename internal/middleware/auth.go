package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rlammers/microblog-api/internal/logging"
	"github.com/rlammers/microblog-api/internal/models"
	"github.com/rlammers/microblog-api/internal/repo"
	"github.com/rlammers/microblog-api/internal/tokens"
)

const (
	ContextUser   = "current_user"
	ContextClaims = "token_claims"
)

// Auth guards protected routes: verify the bearer token, consult the
// revocation ledger, resolve the user. Every failure at any stage is the
// same 401 to the client.
type Auth struct {
	Issuer *tokens.Issuer
	Repo   *repo.GormRepo
}

func NewAuth(issuer *tokens.Issuer, r *repo.GormRepo) *Auth {
	return &Auth{Issuer: issuer, Repo: r}
}

func (m *Auth) RequireAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, tokens.TypeAccess, false)
}

func (m *Auth) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, tokens.TypeRefresh, false)
}

// RequireFreshAccess additionally demands a token minted directly from a
// password check. Reserved for security-sensitive endpoints.
func (m *Auth) RequireFreshAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, tokens.TypeAccess, true)
}

func (m *Auth) require(next echo.HandlerFunc, typ string, needFresh bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx)

		tokenStr, ok := bearerToken(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		claims, err := m.Issuer.Verify(tokenStr, typ)
		if err != nil {
			l.Warn("token rejected", "reason", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		revoked, err := m.Repo.IsRevoked(ctx, claims.ID)
		if err != nil {
			l.Error("revocation check failed", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		if revoked {
			l.Warn("token rejected", "reason", "revoked", "jti", claims.ID)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		if needFresh && !claims.Fresh {
			return echo.NewHTTPError(http.StatusUnauthorized, "fresh token required")
		}

		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		user, err := m.Repo.GetUserByID(ctx, userID)
		if err != nil {
			l.Warn("token subject not resolvable", "subject", claims.Subject)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(ContextUser, user)
		c.Set(ContextClaims, claims)
		return next(c)
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

// CurrentUser returns the user resolved by a Require* middleware.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(ContextUser).(*models.User); ok {
		return u
	}
	return nil
}

// TokenClaims returns the verified claims stored by a Require* middleware.
func TokenClaims(c echo.Context) *tokens.Claims {
	if cl, ok := c.Get(ContextClaims).(*tokens.Claims); ok {
		return cl
	}
	return nil
}
