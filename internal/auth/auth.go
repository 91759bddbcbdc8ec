package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the authenticated principal carried through request context.
// Permissions holds the resolved effective permission codes.
type User struct {
	ID          int64    `json:"id"`
	Username    string   `json:"nombre_usuario"`
	Rol         string   `json:"rol"`
	AreaID      *int64   `json:"area_id,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Rol    string `json:"rol"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64, rol string) (string, error)
	GenerateRefreshToken(userID int64, rol string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type ctxKey string

const contextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

// UserRecord is what the auth repository surfaces for login: credentials
// plus the lockout bookkeeping on the user row.
type UserRecord struct {
	ID               int64
	Username         string
	PasswordHash     string
	Rol              string
	AreaID           *int64
	Activo           bool
	IntentosFallidos int
	BloqueadoHasta   *time.Time
}
