package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/backoffice/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Gin context keys set by the auth middleware
const (
	tenantIDKey = "tenant_id"
	branchIDKey = "branch_id"
	userIDKey   = "user_id"
)

// Claims are the token claims the back office issues. Every token binds the
// actor to one tenant and one branch; branch-scoped checks downstream rely
// on the branch claim.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	BranchID string `json:"branch_id"`
	UserID   string `json:"user_id"`
}

// JWTAuth validates the bearer token and loads the actor identifiers into
// the request context
func JWTAuth(secret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !parsed.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil {
			abortUnauthorized(c, "Token carries no tenant")
			return
		}
		c.Set(tenantIDKey, tenantID)

		if branchID, err := uuid.Parse(claims.BranchID); err == nil {
			c.Set(branchIDKey, branchID)
		}
		if userID, err := uuid.Parse(claims.UserID); err == nil {
			c.Set(userIDKey, userID)
		}

		c.Next()
	}
}

// IssueToken signs a token for the given actor. Used by tests and tooling;
// the back office itself does not mint tokens.
func IssueToken(secret, issuer string, tenantID, branchID, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TenantID: tenantID.String(),
		BranchID: branchID.String(),
		UserID:   userID.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GetTenantID returns the tenant bound to the request token
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	return contextUUID(c, tenantIDKey)
}

// GetBranchID returns the branch bound to the request token
func GetBranchID(c *gin.Context) (uuid.UUID, bool) {
	return contextUUID(c, branchIDKey)
}

// GetUserID returns the acting user bound to the request token
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return contextUUID(c, userIDKey)
}

func contextUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	value, exists := c.Get(key)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
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
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}
