package jwt

import (
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TypeAccess = "access"
	TypeStream = "stream"

	streamTokenTTL = 5 * time.Minute
)

// Claims is the identity carried by an access token.
type Claims struct {
	EmployeeID string
	EmpID      string
	Role       string
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	GenerateStreamToken(claims Claims) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (Claims, error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt int64)
	IsTokenRevoked(token string) bool
	PruneRevoked(now time.Time) int
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	revokedTokens         map[string]int64
	mu                    sync.RWMutex
	now                   func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (*JWTService, error) {
	expDuration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	return &JWTService{
		accessTokenExpiration: expDuration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:         make(map[string]int64),
		now:                   time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": claims.EmployeeID,
		"emp_id":      claims.EmpID,
		"role":        claims.Role,
		"type":        TypeAccess,
		"iat":         j.now().Unix(),
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateStreamToken issues a short-lived token for the event stream, which
// is passed as a query parameter since EventSource cannot set headers.
func (j *JWTService) GenerateStreamToken(claims Claims) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(streamTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": claims.EmployeeID,
		"emp_id":      claims.EmpID,
		"role":        claims.Role,
		"type":        TypeStream,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(streamTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateStreamToken(tokenString string) (Claims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TypeStream {
		return Claims{}, jwt.ErrInvalidJWT()
	}

	claims := Claims{
		EmployeeID: stringClaim(token, "employee_id"),
		EmpID:      stringClaim(token, "emp_id"),
		Role:       stringClaim(token, "role"),
	}
	if claims.EmployeeID == "" {
		return Claims{}, jwt.ErrInvalidJWT()
	}

	return claims, nil
}

// RevokeToken remembers token until expiresAt so the auth middleware rejects it.
func (j *JWTService) RevokeToken(token string, expiresAt int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// PruneRevoked drops revocations whose token has already expired and returns
// how many were removed.
func (j *JWTService) PruneRevoked(now time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	removed := 0
	for token, expiresAt := range j.revokedTokens {
		if expiresAt <= now.Unix() {
			delete(j.revokedTokens, token)
			removed++
		}
	}
	return removed
}

func stringClaim(token jwt.Token, key string) string {
	value, ok := token.Get(key)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}
