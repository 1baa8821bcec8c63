package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID     string
	CompanyID  string
	EmployeeID string
	IsAdmin    bool
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
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

func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     claims.UserID,
		"company_id":  claims.CompanyID,
		"employee_id": claims.EmployeeID,
		"is_admin":    claims.IsAdmin,
		"type":        "access",
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

// ClaimsFromContext reads the verified access claims placed on ctx by jwtauth.Verifier.
// company_id is always required; employee_id may be empty for admin-only accounts.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	token, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if token == nil {
		return Claims{}, auth.ErrInvalidToken
	}

	companyID, ok := raw["company_id"].(string)
	if !ok || companyID == "" {
		return Claims{}, auth.ErrCompanyIDRequired
	}

	c := Claims{CompanyID: companyID}
	c.UserID, _ = raw["user_id"].(string)
	c.EmployeeID, _ = raw["employee_id"].(string)
	c.IsAdmin, _ = raw["is_admin"].(bool)
	return c, nil
}

// EmployeeClaimsFromContext is ClaimsFromContext for endpoints acting on the caller's own records.
func EmployeeClaimsFromContext(ctx context.Context) (Claims, error) {
	c, err := ClaimsFromContext(ctx)
	if err != nil {
		return Claims{}, err
	}
	if c.EmployeeID == "" {
		return Claims{}, auth.ErrEmployeeIDRequired
	}
	return c, nil
}

// VerifiedContext verifies tokenString and returns ctx carrying the token the way
// jwtauth.Verifier leaves a request context.
func VerifiedContext(ctx context.Context, ja *jwtauth.JWTAuth, tokenString string) (context.Context, error) {
	token, err := jwtauth.VerifyToken(ja, tokenString)
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	return jwtauth.NewContext(ctx, token, nil), nil
}
