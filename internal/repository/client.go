package repository

import (
	"context"
	"time"

	"github.com/Payphone-Digital/bilemo/internal/model"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"gorm.io/gorm"
)

type ClientRepository struct {
	db     *gorm.DB
	source *EntitySource[model.Client]
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{
		db:     db,
		source: NewEntitySource[model.Client](db, "client", nil),
	}
}

// Source is the paginated view over all clients
func (r *ClientRepository) Source() *EntitySource[model.Client] {
	return r.source
}

// GetByID loads a client with its users
func (r *ClientRepository) GetByID(ctx context.Context, id uint) (*model.Client, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetClientByID")

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, err
	}

	start := time.Now()
	var client model.Client
	result := r.db.WithContext(ctx).
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&client, id)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to get client by ID").
			Uint("client_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "Client retrieved successfully").
		Uint("client_id", id).
		Int("user_count", len(client.Users)).
		Duration(duration).
		Log()

	return &client, nil
}

func (r *ClientRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "CreateClient")

	start := time.Now()
	result := r.db.WithContext(ctx).Omit("Users").Create(client)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create client").
			String("name", client.Name).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Client created successfully").
		Uint("client_id", client.ID).
		Duration(duration).
		Log()

	return nil
}

func (r *ClientRepository) Update(ctx context.Context, id uint, client *model.Client) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateClient")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":         client.Name,
		"address":      client.Address,
		"description":  client.Description,
		"phone_number": client.PhoneNumber,
	})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update client").
			Uint("client_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No client found to update").
			Uint("client_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Client updated successfully").
		Uint("client_id", id).
		Duration(duration).
		Log()

	return nil
}

// Delete removes the client and every user attached to it
func (r *ClientRepository) Delete(ctx context.Context, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteClient")

	start := time.Now()
	var usersDeleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := tx.Unscoped().Where("client_id = ?", id).Delete(&model.User{})
		if users.Error != nil {
			return users.Error
		}
		usersDeleted = users.RowsAffected

		result := tx.Unscoped().Delete(&model.Client{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to delete client").
			Uint("client_id", id).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Client deleted successfully").
		Uint("client_id", id).
		Int64("users_deleted", usersDeleted).
		Duration(duration).
		Log()

	return nil
}
