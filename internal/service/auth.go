package service

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/bilemo/internal/dto"
	apperrors "github.com/Payphone-Digital/bilemo/internal/errors"
	"github.com/Payphone-Digital/bilemo/internal/model"
	"github.com/Payphone-Digital/bilemo/internal/repository"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	repoUser   *repository.UserRepository
	jwtService *JWTService
}

func NewAuthService(repoUser *repository.UserRepository, jwtService *JWTService) *AuthService {
	return &AuthService{repoUser: repoUser, jwtService: jwtService}
}

// Login checks the credentials and issues an access and a refresh token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	logger.InfoWithContext(ctx, "User login attempt").
		String("username", req.Username).
		Log()

	user, err := s.repoUser.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		logger.WarnWithContext(ctx, "Invalid password").
			String("username", req.Username).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.repoUser.UpdateLastLogin(ctx, user.ID); err != nil {
		// Not fatal for the login itself
		logger.WarnWithContext(ctx, "Failed to update last login").
			Uint("target_user_id", user.ID).
			Err(err).
			Log()
	}

	response, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "User logged in successfully").
		String("username", req.Username).
		Uint("target_user_id", user.ID).
		Log()

	return response, nil
}

// Refresh exchanges a refresh token for a new pair. Previously issued access
// tokens stop working because the token version moves forward.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "RefreshToken")

	userID, err := s.jwtService.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.repoUser.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.RefreshTokenHash == "" || !s.jwtService.VerifyRefreshToken(refreshToken, user.RefreshTokenHash) {
		logger.WarnWithContext(ctx, "Invalid refresh token").
			Uint("target_user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if user.RefreshTokenExpires != nil && user.RefreshTokenExpires.Before(time.Now()) {
		logger.WarnWithContext(ctx, "Refresh token expired").
			Uint("target_user_id", user.ID).
			Log()
		if err := s.repoUser.UpdateRefreshToken(ctx, user.ID, "", nil); err != nil {
			logger.WarnWithContext(ctx, "Failed to clear expired refresh token").
				Uint("target_user_id", user.ID).
				Err(err).
				Log()
		}
		return nil, apperrors.ErrTokenExpired
	}

	user.TokenVersion++
	if err := s.repoUser.UpdateTokenVersion(ctx, user.ID, user.TokenVersion); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	response, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Token refreshed successfully").
		Uint("target_user_id", user.ID).
		Int("token_version", user.TokenVersion).
		Log()

	return response, nil
}

// Logout revokes every token issued to the user
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Logout")

	user, err := s.repoUser.GetByID(ctx, userID)
	if err != nil {
		return userError(err)
	}

	if err := s.repoUser.UpdateTokenVersion(ctx, userID, user.TokenVersion+1); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.repoUser.UpdateRefreshToken(ctx, userID, "", nil); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged out successfully").
		Uint("target_user_id", userID).
		Log()
	return nil
}

// Authenticate resolves a bearer token into the principal it was issued to
func (s *AuthService) Authenticate(ctx context.Context, token string) (*dto.Principal, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Authenticate")

	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	user, err := s.repoUser.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if claims.TokenVersion != user.TokenVersion {
		logger.DebugWithContext(ctx, "Token version mismatch").
			Uint("target_user_id", user.ID).
			Int("token_version", claims.TokenVersion).
			Int("current_version", user.TokenVersion).
			Log()
		return nil, apperrors.ErrInvalidToken
	}

	return &dto.Principal{
		UserID:   user.ID,
		ClientID: user.ClientID,
		Username: user.Username,
		Roles:    user.EffectiveRoles(),
	}, nil
}

// CleanupExpiredTokens clears refresh tokens past their expiry
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "CleanupExpiredTokens")
	return s.repoUser.CleanupExpiredRefreshTokens(ctx)
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*dto.LoginResponse, error) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to generate JWT token").
			Uint("target_user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshTokenHash, err := s.jwtService.HashRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	expires := time.Now().Add(s.jwtService.RefreshDuration())
	if err := s.repoUser.UpdateRefreshToken(ctx, user.ID, refreshTokenHash, &expires); err != nil {
		logger.ErrorWithContext(ctx, "Failed to store refresh token").
			Uint("target_user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtService.Expiration().Seconds()),
		User:         toUserResponse(*user),
	}, nil
}
