package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/config"
)

// Roles carried in the token's "roles" claim.
const (
	RoleAdmin    = "ADMIN"
	RoleUploader = "UPLOADER"
)

const (
	ctxUserIDKey = "auth_user_id"
	ctxRolesKey  = "auth_roles"
)

// anonymousUser identifies requests when auth is disabled (local development).
const anonymousUser = "anonymous"

// Validator validates JWTs using JWKS.
type Validator struct {
	cfg  *config.Config
	log  zerolog.Logger
	jwks *keyfunc.JWKS
}

// NewValidator initializes JWKS fetching when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	if !cfg.AuthEnabled {
		return &Validator{cfg: cfg, log: log}, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}

	return &Validator{
		cfg:  cfg,
		log:  log,
		jwks: jwks,
	}, nil
}

// Middleware enforces JWT auth when enabled. With auth disabled every
// request runs as the anonymous user, which keeps local development and
// tests free of token plumbing.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.cfg.AuthEnabled {
		return func(c *gin.Context) {
			SetUser(c, anonymousUser, RoleAdmin, RoleUploader)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		parseOpts := []jwt.ParserOption{
			jwt.WithIssuer(v.cfg.AuthIssuer),
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		}
		if v.cfg.Audience != "" {
			parseOpts = append(parseOpts, jwt.WithAudience(v.cfg.Audience))
		}

		token, err := jwt.Parse(tokenString, v.jwks.Keyfunc, parseOpts...)
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		subject, _ := claims.GetSubject()
		if subject == "" {
			abortUnauthorized(c, "token has no subject")
			return
		}

		SetUser(c, subject, extractRoles(claims)...)
		c.Next()
	}
}

// SetUser attaches the subject and roles to the request. The middleware is
// the production caller; handler tests use it to stand in for one.
func SetUser(c *gin.Context, userID string, roles ...string) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxRolesKey, roles)
}

// Ready reports whether the validator can verify tokens. Always true when
// auth is disabled.
func (v *Validator) Ready() bool {
	return v == nil || !v.cfg.AuthEnabled || v.jwks != nil
}

// RequireRole rejects requests whose token lacks the given role. Must run
// after Middleware.
func (v *Validator) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, have := range Roles(c) {
			if have == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "insufficient permissions",
		})
	}
}

// UserID returns the authenticated subject, empty if unauthenticated.
func UserID(c *gin.Context) string {
	if id, ok := c.Get(ctxUserIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// Roles returns the request's role claims.
func Roles(c *gin.Context) []string {
	if val, ok := c.Get(ctxRolesKey); ok {
		if roles, ok := val.([]string); ok {
			return roles
		}
	}
	return nil
}

// IsAdmin reports whether the request carries the admin role.
func IsAdmin(c *gin.Context) bool {
	for _, role := range Roles(c) {
		if role == RoleAdmin {
			return true
		}
	}
	return false
}

func extractRoles(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"]
	if !ok {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			roles = append(roles, strings.ToUpper(s))
		}
	}
	return roles
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
