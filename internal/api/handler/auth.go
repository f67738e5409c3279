package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "complaintdesk"
	tokenTTL      = 12 * time.Hour
	operatorClaim = "operator"
)

// Auth issues and checks operator tokens. A nil or secret-less Auth disables
// authentication.
type Auth struct {
	Secret   []byte
	Password string
	TTL      time.Duration
}

func NewAuth(secret, password string) *Auth {
	return &Auth{Secret: []byte(secret), Password: password, TTL: tokenTTL}
}

func (a *Auth) Enabled() bool {
	return a != nil && len(a.Secret) > 0
}

// IssueToken generates a signed token for an operator.
func (a *Auth) IssueToken(operator string) (string, error) {
	claims := jwt.MapClaims{
		operatorClaim: operator,
		"exp":         time.Now().Add(a.TTL).Unix(),
		"iss":         tokenIssuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

// Validate returns the operator named in a valid token.
func (a *Auth) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims")
	}
	operator, _ := claims[operatorClaim].(string)
	if operator == "" {
		return "", errors.New("token has no operator")
	}
	return operator, nil
}

func (a *Auth) checkPassword(p string) bool {
	return subtle.ConstantTimeCompare([]byte(p), []byte(a.Password)) == 1
}

// CreateToken handles POST /api/auth/token with {"operator": "...", "password": "..."}.
func (h *Handler) CreateToken(c *gin.Context) {
	if !h.Auth.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "authentication is disabled"})
		return
	}
	var req struct {
		Operator string `json:"operator"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.Auth.checkPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if req.Operator == "" {
		req.Operator = "operator"
	}

	token, err := h.Auth.IssueToken(req.Operator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "operator": req.Operator})
}

// RequireOperator checks the Bearer token, or the token query parameter for
// WebSocket upgrades. It is a no-op when authentication is disabled.
func (h *Handler) RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.Auth.Enabled() {
			c.Next()
			return
		}
		tokenString := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}
		operator, err := h.Auth.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		c.Set(operatorClaim, operator)
		c.Next()
	}
}
