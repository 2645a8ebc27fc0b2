package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kendall-kelly/bistro-orders-api/config"
	"github.com/kendall-kelly/bistro-orders-api/models"
	"github.com/kendall-kelly/bistro-orders-api/services"
)

// Context keys set by EnsureValidToken
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextClaims = "validated_claims"
)

// CustomClaims contains the application claims carried next to the registered ones.
type CustomClaims struct {
	Role string `json:"role"`
}

// Validate rejects tokens carrying an unknown role.
func (c CustomClaims) Validate(ctx context.Context) error {
	if !models.ValidRole(c.Role) {
		return errors.New("token carries an unknown role")
	}
	return nil
}

// NewValidator builds the HS256 validator for access tokens issued by the auth service.
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(context.Context) (interface{}, error) {
		return secret, nil
	}

	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(30*time.Second),
	)
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) (gin.HandlerFunc, error) {
	jwtValidator, err := NewValidator(cfg)
	if err != nil {
		return nil, err
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("rejected bearer token")

		code, message := "INVALID_TOKEN", "Failed to validate JWT."
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			code, message = "UNAUTHORIZED", "Authentication required."
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"` + code + `","message":"` + message + `"}}`))
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		authorized := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			token, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok {
				return
			}
			userID, err := strconv.ParseUint(token.RegisteredClaims.Subject, 10, 64)
			if err != nil || userID == 0 {
				return
			}
			role := ""
			if custom, ok := token.CustomClaims.(*CustomClaims); ok {
				role = custom.Role
			}

			c.Set(ContextUserID, uint(userID))
			c.Set(ContextRole, role)
			c.Set(ContextClaims, token)
			c.Request = r
			authorized = true
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)

		if !authorized {
			if !c.Writer.Written() {
				c.JSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INVALID_TOKEN",
						"message": "Token subject is not a valid user id.",
					},
				})
			}
			c.Abort()
			return
		}
		c.Next()
	}, nil
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a number"}
	}

	return id, nil
}

// GetRole extracts the caller's role from the Gin context
func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}

// GetCaller builds the service-level identity of the authenticated caller
func GetCaller(c *gin.Context) (services.Caller, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return services.Caller{}, err
	}
	return services.Caller{UserID: userID, Role: GetRole(c)}, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ContextClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireRole lets the request through only when the caller holds one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := GetUserID(c); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			c.Abort()
			return
		}

		role := GetRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Insufficient permissions to access this resource",
			},
		})
		c.Abort()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
