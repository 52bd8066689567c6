package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AdminSubject is the only subject the service issues tokens for.
const AdminSubject = "admin"

var (
	ErrAdminDisabled      = errors.New("admin login is not configured")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService handles admin authentication for the refresh endpoint.
type AuthService struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenExpiry  time.Duration
	now          func() time.Time
}

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService creates a new authentication service. An empty
// passwordHash disables Login but tokens can still be minted locally.
func NewAuthService(passwordHash, jwtSecret string, tokenExpiry time.Duration) *AuthService {
	if tokenExpiry <= 0 {
		tokenExpiry = 12 * time.Hour
	}
	return &AuthService{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(jwtSecret),
		tokenExpiry:  tokenExpiry,
		now:          time.Now,
	}
}

// HashPassword returns the bcrypt hash to put in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters long")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Enabled reports whether Login can succeed.
func (a *AuthService) Enabled() bool {
	return len(a.passwordHash) > 0
}

// Login checks the admin password and returns a signed token.
func (a *AuthService) Login(password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.GenerateToken()
}

// GenerateToken creates a new admin JWT and returns it with its expiry.
func (a *AuthService) GenerateToken() (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.tokenExpiry)
	claims := JWTClaims{
		Role: AdminSubject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   AdminSubject,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "nfl-projections-go",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return a.jwtSecret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithIssuer("nfl-projections-go"))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Role != AdminSubject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
