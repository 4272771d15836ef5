package jwt

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenLifetime = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(claims user.Claims) (token string, expiresAt int64, err error)
	GenerateSSEToken(claims user.Claims) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (user.Claims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(claims user.Claims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(encodeClaims(claims, TokenTypeAccess, expiresAt))
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(claims user.Claims) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(encodeClaims(claims, TokenTypeSSE, expiresAt))
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenLifetime.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the caller it names
func (j *JWTService) ValidateSSEToken(tokenString string) (user.Claims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return user.Claims{}, err
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return user.Claims{}, err
	}

	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeSSE {
		return user.Claims{}, user.ErrInvalidToken
	}

	return ClaimsFromMap(claims)
}

// ClaimsFromMap reads the caller identity out of decoded token claims.
func ClaimsFromMap(claims map[string]interface{}) (user.Claims, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Claims{}, user.ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	employeeID, _ := claims["employee_id"].(string)

	return user.Claims{
		UserID:     userID,
		EmployeeID: employeeID,
		Role:       user.Role(role),
	}, nil
}

func encodeClaims(c user.Claims, tokenType string, expiresAt int64) map[string]interface{} {
	claims := map[string]interface{}{
		"user_id":     c.UserID,
		"employee_id": nil,
		"role":        string(c.Role),
		"type":        tokenType,
		"exp":         expiresAt,
	}
	if c.EmployeeID != "" {
		claims["employee_id"] = c.EmployeeID
	}
	return claims
}
