package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sgdocumental/document-tracking/internal"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	GetByUsername(username string) (*UserRecord, error)
	RegisterFailedAttempt(userID int64, attempts int, lockedUntil *time.Time) error
	RegisterSuccessfulLogin(userID int64, at time.Time) error
	GetUserWithPermissions(userID int64) (*User, error)
}

// Service performs authentication: credential check, lockout bookkeeping
// and token issuing.
type Service struct {
	userRepo         UserRepository
	tokenGenerator   TokenGenerator
	maxLoginAttempts int
	lockoutDuration  time.Duration
	logger           *slog.Logger
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, maxAttempts int, lockout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		userRepo:         userRepo,
		tokenGenerator:   tokenGen,
		maxLoginAttempts: maxAttempts,
		lockoutDuration:  lockout,
		logger:           logger,
	}
}

// Authenticate validates credentials and returns tokens. Repeated failures
// lock the account for the configured window.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	record, err := s.userRepo.GetByUsername(dto.Username)
	if err != nil {
		s.logger.Warn("login failed: user lookup", "username", dto.Username, "error", err)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !record.Activo {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if record.BloqueadoHasta != nil && record.BloqueadoHasta.After(time.Now()) {
		s.logger.Warn("login rejected: account locked",
			"user_id", record.ID,
			"locked_until", record.BloqueadoHasta)
		return AuthTokens{}, internal.ErrUserLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(dto.Password)); err != nil {
		attempts := record.IntentosFallidos + 1
		var lockedUntil *time.Time
		if attempts >= s.maxLoginAttempts {
			until := time.Now().Add(s.lockoutDuration)
			lockedUntil = &until
		}
		if repoErr := s.userRepo.RegisterFailedAttempt(record.ID, attempts, lockedUntil); repoErr != nil {
			s.logger.Error("failed to register login attempt", "error", repoErr, "user_id", record.ID)
		}
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := s.userRepo.RegisterSuccessfulLogin(record.ID, time.Now()); err != nil {
		s.logger.Error("failed to register successful login", "error", err, "user_id", record.ID)
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(record.ID, record.Rol)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(record.ID, record.Rol)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("generate refresh token: %w", err)
	}

	s.logger.Info("user authenticated", "user_id", record.ID, "rol", record.Rol)

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens validates a refresh token and issues a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(claims.UserID, claims.Rol)
	if err != nil {
		return AuthTokens{}, err
	}

	newRefreshToken, err := s.tokenGenerator.GenerateRefreshToken(claims.UserID, claims.Rol)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) UserWithPermissions(userID int64) (*User, error) {
	return s.userRepo.GetUserWithPermissions(userID)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, rol string) (string, error) {
	return j.sign(userID, rol, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, rol string) (string, error) {
	return j.sign(userID, rol, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(userID int64, rol string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		// Refresh tokens outlive the access TTL; pick the secret by
		// remaining lifetime.
		if claims, ok := token.Claims.(*Claims); ok {
			if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) > j.AccessTokenTTL {
				return j.RefreshTokenSecret, nil
			}
		}
		return j.AccessTokenSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
