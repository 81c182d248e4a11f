package repository

import (
	"context"
	"time"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/model"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db     *gorm.DB
	source *EntitySource[model.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
		source: NewEntitySource[model.User](db, "user", map[string]string{
			constants.FilterFieldClient: "client_id",
		}, "Client"),
	}
}

// Source pages over users; it accepts the "client" filter
func (r *UserRepository) Source() *EntitySource[model.User] {
	return r.source
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetUserByID")

	logger.DebugWithContext(ctx, "Getting user by ID").
		Uint("target_user_id", id).
		Log()

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, err
	}

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Preload("Client").First(&user, id)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			Uint("target_user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved successfully").
		Uint("target_user_id", id).
		Duration(duration).
		Log()

	return &user, nil
}

// GetByUsername finds user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByUsername")

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Preload("Client").Where("username = ?", username).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "User not found by username").
			String("username", username).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved successfully by username").
		String("username", username).
		Uint("target_user_id", user.ID).
		Duration(duration).
		Log()

	return &user, nil
}

// ExistsByUsername ignores the user with excludeID so updates can keep their own name
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "CreateUser")

	logger.DebugWithContext(ctx, "Creating new user").
		String("username", user.Username).
		Uint("client_id", user.ClientID).
		Log()

	start := time.Now()
	result := r.db.WithContext(ctx).Omit("Client").Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", user.Username).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created successfully").
		String("username", user.Username).
		Uint("target_user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

// Update writes profile fields, roles and client; the password only when set
func (r *UserRepository) Update(ctx context.Context, id uint, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateUser")

	fields := map[string]interface{}{
		"username":     user.Username,
		"phone_number": user.PhoneNumber,
		"email":        user.Email,
		"roles":        user.Roles,
		"client_id":    user.ClientID,
	}
	if user.Password != "" {
		fields["password"] = user.Password
	}

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user").
			Uint("target_user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to update").
			Uint("target_user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "User updated successfully").
		Uint("target_user_id", id).
		Bool("password_changed", user.Password != "").
		Duration(duration).
		Log()

	return nil
}

// UpdatePassword updates user password
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdatePassword")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password", hashedPassword)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user password").
			Uint("target_user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "User password updated successfully").
		Uint("target_user_id", id).
		Duration(duration).
		Log()

	return nil
}

// UpdateLastLogin updates the last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateLastLogin")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", time.Now())
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update last login").
			Uint("target_user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

// UpdateRefreshToken updates user's refresh token and expiry
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id uint, refreshTokenHash string, expiresAt *time.Time) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateRefreshToken")

	var hash interface{}
	if refreshTokenHash != "" {
		hash = refreshTokenHash
	}

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"refresh_token_hash":       hash,
		"refresh_token_expires_at": expiresAt,
	})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update refresh token").
			Uint("target_user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "Refresh token updated successfully").
		Uint("target_user_id", id).
		Bool("has_token", refreshTokenHash != "").
		Duration(duration).
		Log()

	return nil
}

// UpdateTokenVersion sets user's token version, invalidating older access tokens
func (r *UserRepository) UpdateTokenVersion(ctx context.Context, id uint, newVersion int) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateTokenVersion")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("token_version", newVersion)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update token version").
			Uint("target_user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "Token version updated successfully").
		Uint("target_user_id", id).
		Int("new_version", newVersion).
		Duration(duration).
		Log()

	return nil
}

// CleanupExpiredRefreshTokens removes expired refresh tokens (batch operation)
func (r *UserRepository) CleanupExpiredRefreshTokens(ctx context.Context) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "CleanupExpiredRefreshTokens")

	start := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("refresh_token_expires_at IS NOT NULL AND refresh_token_expires_at < ?", time.Now()).
		Updates(map[string]interface{}{
			"refresh_token_hash":       nil,
			"refresh_token_expires_at": nil,
		})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to cleanup expired refresh tokens").
			Duration(duration).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	logger.InfoWithContext(ctx, "Expired refresh tokens cleaned up").
		Int64("cleaned_count", result.RowsAffected).
		Duration(duration).
		Log()

	return result.RowsAffected, nil
}

// Delete performs hard delete on user (permanent deletion)
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteUser")

	start := time.Now()
	result := r.db.WithContext(ctx).Unscoped().Delete(&model.User{}, id)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete user").
			Uint("target_user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to delete").
			Uint("target_user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "User deleted successfully").
		Uint("target_user_id", id).
		Duration(duration).
		Log()

	return nil
}
