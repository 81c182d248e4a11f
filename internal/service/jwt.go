package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/bilemo/config"
	"github.com/Payphone-Digital/bilemo/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var errMalformedRefresh = errors.New("malformed refresh token")

// AccessClaims is the payload of an access token
type AccessClaims struct {
	UserID       uint     `json:"user_id"`
	Username     string   `json:"username"`
	ClientID     uint     `json:"client_id"`
	Roles        []string `json:"roles"`
	TokenVersion int      `json:"token_version"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secretKey       []byte
	issuer          string
	expiration      time.Duration
	refreshDuration time.Duration
	now             func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:       []byte(cfg.Secret),
		issuer:          cfg.Issuer,
		expiration:      cfg.ExpirationTime,
		refreshDuration: cfg.RefreshDuration,
		now:             time.Now,
	}
}

// Expiration is the lifetime of an access token
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

// RefreshDuration is the lifetime of a refresh token
func (s *JWTService) RefreshDuration() time.Duration {
	return s.refreshDuration
}

// GenerateToken signs a short-lived access token for user
func (s *JWTService) GenerateToken(user *model.User) (string, error) {
	now := s.now()
	claims := AccessClaims{
		UserID:       user.ID,
		Username:     user.Username,
		ClientID:     user.ClientID,
		Roles:        user.EffectiveRoles(),
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken parses tokenString and checks signature, issuer and expiry
func (s *JWTService) ValidateToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GenerateRefreshToken returns "<userID>.<random>"; the prefix locates the owner on refresh
func (s *JWTService) GenerateRefreshToken(userID uint) (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return fmt.Sprintf("%d.%s", userID, base64.RawURLEncoding.EncodeToString(bytes)), nil
}

// ParseRefreshToken extracts the owner id of a refresh token
func (s *JWTService) ParseRefreshToken(refreshToken string) (uint, error) {
	rawID, secret, ok := strings.Cut(refreshToken, ".")
	if !ok || secret == "" {
		return 0, errMalformedRefresh
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return 0, errMalformedRefresh
	}
	return uint(id), nil
}

// HashRefreshToken hashes a refresh token for storage
func (s *JWTService) HashRefreshToken(refreshToken string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(refreshToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash refresh token: %w", err)
	}
	return string(hash), nil
}

// VerifyRefreshToken verifies a refresh token against its hash
func (s *JWTService) VerifyRefreshToken(refreshToken, hashedToken string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(refreshToken)) == nil
}
