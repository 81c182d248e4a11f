package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Payphone-Digital/bilemo/config"
	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/dto"
	"github.com/Payphone-Digital/bilemo/internal/model"
	"github.com/Payphone-Digital/bilemo/pkg/database"
	"github.com/Payphone-Digital/bilemo/pkg/paginator"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "correct-horse-battery"

var testPages = PageSettings{DefaultLimit: 5, MaxLimit: 20, OffsetMode: paginator.OffsetLinear}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret",
		ExpirationTime:  time.Hour,
		RefreshDuration: 24 * time.Hour,
		Issuer:          "bilemo-test",
	}
}

func createClient(t *testing.T, db *gorm.DB, name string) *model.Client {
	t.Helper()

	client := &model.Client{
		Name:        name,
		Address:     "12 rue des Lilas, Paris",
		Description: "A reseller of refurbished phones",
		PhoneNumber: "0102030405",
	}
	require.NoError(t, db.Omit("Users").Create(client).Error)
	return client
}

func createUser(t *testing.T, db *gorm.DB, username string, clientID uint, roles ...string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Username:     username,
		PhoneNumber:  "0607080910",
		Email:        fmt.Sprintf("%s@example.com", username),
		Password:     string(hash),
		Roles:        roles,
		ClientID:     clientID,
		TokenVersion: 1,
	}
	require.NoError(t, db.Omit("Client").Create(user).Error)
	return user
}

func principalOf(u *model.User) dto.Principal {
	return dto.Principal{UserID: u.ID, ClientID: u.ClientID, Username: u.Username, Roles: u.EffectiveRoles()}
}

func superAdmin(t *testing.T, db *gorm.DB) dto.Principal {
	t.Helper()
	house := createClient(t, db, "BileMo")
	return principalOf(createUser(t, db, "superadmin", house.ID, constants.RoleSuperAdmin))
}

var bg = context.Background()
