package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
)

// AuthUser represents an authenticated user from JWT
type AuthUser struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// UserDirectory resolves token subjects to stored accounts.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// contextKey is used for storing user in context
type contextKey string

const (
	userContextKey contextKey = "authenticated_user"
)

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret    string
	Logger    *zap.Logger
	Users     UserDirectory
	SkipPaths []string // Paths to skip JWT validation
}

type authFailure struct {
	status  int
	code    string
	message string
}

// authenticate validates the bearer token and resolves the account behind it.
// A token for an unknown or disabled account is rejected even when its
// signature checks out, so disabling a user takes effect on the next request.
func authenticate(c echo.Context, config JWTConfig) (*AuthUser, *authFailure) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, &authFailure{http.StatusUnauthorized, "MISSING_AUTH_HEADER", "Authorization header required"}
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, &authFailure{http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>"}
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Secret), nil
	})
	if err != nil {
		return nil, &authFailure{http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, &authFailure{http.StatusUnauthorized, "INVALID_CLAIMS", "Invalid token claims"}
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, &authFailure{http.StatusUnauthorized, "INVALID_SUBJECT", "Token subject must be a valid user id"}
	}

	account, err := config.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, &authFailure{http.StatusUnauthorized, "UNKNOWN_USER", "Token subject does not match a known account"}
		}
		config.Logger.Error("Account lookup failed during authentication",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, &authFailure{http.StatusInternalServerError, "ACCOUNT_LOOKUP_FAILED", "Failed to verify account"}
	}
	if account.Disabled {
		return nil, &authFailure{http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled"}
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = string(model.RoleViewer)
	}

	return &AuthUser{
		UserID: userID,
		Email:  email,
		Role:   role,
	}, nil
}

func setAuthUser(c echo.Context, user *AuthUser) {
	ctx := context.WithValue(c.Request().Context(), userContextKey, user)
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set("user_id", user.UserID.String())
}

// JWTMiddleware creates a middleware that validates HMAC-signed bearer tokens
// and rejects tokens whose account is unknown or disabled.
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, skipPath := range config.SkipPaths {
				if strings.HasPrefix(path, skipPath) {
					return next(c)
				}
			}

			user, failure := authenticate(c, config)
			if failure != nil {
				config.Logger.Warn("Request authentication failed",
					zap.String("code", failure.code),
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return c.JSON(failure.status, echo.Map{
					"error": failure.message,
					"code":  failure.code,
				})
			}

			setAuthUser(c, user)
			return next(c)
		}
	}
}

// OptionalJWT authenticates the request when a bearer token is present and
// lets it through anonymously otherwise. Requests with an invalid token or a
// disabled account degrade to anonymous instead of failing, so public routes
// stay public.
func OptionalJWT(config JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}

			if user, failure := authenticate(c, config); failure == nil {
				setAuthUser(c, user)
			}
			return next(c)
		}
	}
}

// RequireRole restricts a route to the given roles. Admins pass every check.
func RequireRole(logger *zap.Logger, roles ...model.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := GetUserFromContext(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Authentication required",
					"code":  "AUTH_REQUIRED",
				})
			}

			if user.Role == string(model.RoleAdmin) {
				return next(c)
			}

			for _, role := range roles {
				if user.Role == string(role) {
					return next(c)
				}
			}

			logger.Warn("Role check failed",
				zap.String("user_id", user.UserID.String()),
				zap.String("role", user.Role),
				zap.String("path", c.Request().URL.Path))
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "Insufficient permissions",
				"code":  "FORBIDDEN",
			})
		}
	}
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(c echo.Context) (*AuthUser, error) {
	user, ok := c.Request().Context().Value(userContextKey).(*AuthUser)
	if !ok || user == nil {
		return nil, fmt.Errorf("no authenticated user found in context")
	}
	return user, nil
}
