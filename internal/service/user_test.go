package service

import (
	"testing"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/dto"
	apperrors "github.com/Payphone-Digital/bilemo/internal/errors"
	"github.com/Payphone-Digital/bilemo/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type userFixture struct {
	db      *gorm.DB
	svc     *UserService
	root    dto.Principal
	admin   dto.Principal
	member  dto.Principal
	outside dto.Principal
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	db := newTestDB(t)
	f := &userFixture{
		db:   db,
		svc:  NewUserService(repository.NewUserRepository(db), repository.NewClientRepository(db), testPages),
		root: superAdmin(t, db),
	}

	acme := createClient(t, db, "Acme Mobile")
	globex := createClient(t, db, "Globex Phones")
	f.admin = principalOf(createUser(t, db, "acme-admin", acme.ID, constants.RoleAdmin))
	f.member = principalOf(createUser(t, db, "acme-member", acme.ID))
	createUser(t, db, "acme-member-2", acme.ID)
	f.outside = principalOf(createUser(t, db, "globex-member", globex.ID))
	return f
}

func newUserRequest(username string) *dto.CreateUserRequest {
	return &dto.CreateUserRequest{
		Username:    username,
		PhoneNumber: "0611223344",
		Email:       username + "@example.com",
		Password:    "a-long-enough-password",
	}
}

func TestUserService_ListScopesAdminsToTheirClient(t *testing.T) {
	f := newUserFixture(t)

	page, err := f.svc.List(bg, f.admin, dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Meta.TotalItems)
	for _, u := range page.Data {
		require.NotNil(t, u.Client)
		assert.Equal(t, "Acme Mobile", u.Client.Name)
	}

	page, err = f.svc.List(bg, f.root, dto.PageQuery{Limit: "10"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Meta.TotalItems)

	_, err = f.svc.List(bg, f.member, dto.PageQuery{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserService_AdminCreateForcesClientAndRole(t *testing.T) {
	f := newUserFixture(t)

	req := newUserRequest("acme-newcomer")
	req.ClientID = f.outside.ClientID
	req.Roles = []string{constants.RoleSuperAdmin}

	created, err := f.svc.CreateUser(bg, f.admin, req)
	require.NoError(t, err)
	require.NotNil(t, created.Client)
	assert.Equal(t, f.admin.ClientID, created.Client.ID)
	assert.Equal(t, []string{constants.RoleUser}, created.Roles)

	_, err = f.svc.CreateUser(bg, f.admin, newUserRequest("acme-newcomer"))
	assert.ErrorIs(t, err, apperrors.ErrUsernameExists)

	_, err = f.svc.CreateUser(bg, f.member, newUserRequest("sneaky-user"))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserService_SuperAdminCreate(t *testing.T) {
	f := newUserFixture(t)

	req := newUserRequest("globex-admin")
	req.ClientID = f.outside.ClientID
	req.Roles = []string{constants.RoleAdmin}
	created, err := f.svc.CreateUser(bg, f.root, req)
	require.NoError(t, err)
	assert.Equal(t, f.outside.ClientID, created.Client.ID)
	assert.ElementsMatch(t, []string{constants.RoleAdmin, constants.RoleUser}, created.Roles)

	var stored string
	require.NoError(t, f.db.Table("users").Select("password").Where("id = ?", created.ID).Scan(&stored).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte(req.Password)))

	req = newUserRequest("orphan-user")
	req.ClientID = 999
	_, err = f.svc.CreateUser(bg, f.root, req)
	assert.ErrorIs(t, err, apperrors.ErrClientNotFound)
}

func TestUserService_SameClientRule(t *testing.T) {
	f := newUserFixture(t)

	got, err := f.svc.GetByID(bg, f.admin, f.member.UserID)
	require.NoError(t, err)
	assert.Equal(t, "acme-member", got.Username)

	_, err = f.svc.GetByID(bg, f.admin, f.outside.UserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.UpdateUser(bg, f.admin, f.outside.UserID, &dto.UpdateUserRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	assert.ErrorIs(t, f.svc.DeleteUser(bg, f.admin, f.outside.UserID), apperrors.ErrForbidden)

	_, err = f.svc.GetByID(bg, f.root, f.outside.UserID)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(bg, f.root, 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	// an admin sharing the super-admin's client still cannot touch that account
	houseAdmin, err := f.svc.CreateUser(bg, f.root, &dto.CreateUserRequest{
		Username:    "house-admin",
		PhoneNumber: "0611223344",
		Email:       "house-admin@example.com",
		Password:    "a-long-enough-password",
		Roles:       []string{constants.RoleAdmin},
	})
	require.NoError(t, err)
	houseAdminPrincipal := dto.Principal{UserID: houseAdmin.ID, ClientID: f.root.ClientID, Username: houseAdmin.Username, Roles: houseAdmin.Roles}

	_, err = f.svc.GetByID(bg, houseAdminPrincipal, f.root.UserID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.UpdateUser(bg, houseAdminPrincipal, f.root.UserID, &dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteUser(bg, houseAdminPrincipal, f.root.UserID), apperrors.ErrForbidden)

	root, err := f.svc.GetByID(bg, f.root, f.root.UserID)
	require.NoError(t, err)
	assert.Contains(t, root.Roles, constants.RoleSuperAdmin)
}

func TestUserService_Update(t *testing.T) {
	f := newUserFixture(t)

	promoted, err := f.svc.UpdateUser(bg, f.root, f.member.UserID, &dto.UpdateUserRequest{Roles: []string{constants.RoleAdmin}})
	require.NoError(t, err)
	assert.Contains(t, promoted.Roles, constants.RoleAdmin)

	// an admin editing someone else demotes them to a plain user
	updated, err := f.svc.UpdateUser(bg, f.admin, f.member.UserID, &dto.UpdateUserRequest{
		PhoneNumber: "0699887766",
		Roles:       []string{constants.RoleSuperAdmin},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{constants.RoleUser}, updated.Roles)
	assert.Equal(t, "0699887766", updated.PhoneNumber)
	assert.Equal(t, "acme-member@example.com", updated.Email)

	self, err := f.svc.UpdateUser(bg, f.admin, f.admin.UserID, &dto.UpdateUserRequest{Email: "boss@acme.example"})
	require.NoError(t, err)
	assert.Contains(t, self.Roles, constants.RoleAdmin)

	_, err = f.svc.UpdateUser(bg, f.admin, f.member.UserID, &dto.UpdateUserRequest{Username: "acme-admin"})
	assert.ErrorIs(t, err, apperrors.ErrUsernameExists)

	moved, err := f.svc.UpdateUser(bg, f.root, f.member.UserID, &dto.UpdateUserRequest{ClientID: f.outside.ClientID})
	require.NoError(t, err)
	assert.Equal(t, f.outside.ClientID, moved.Client.ID)
}

func TestUserService_Delete(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.DeleteUser(bg, f.admin, f.admin.UserID)
	assert.ErrorIs(t, err, apperrors.ErrSelfDeletion)
	assert.Equal(t, 403, apperrors.ToHTTPStatus(err))

	require.NoError(t, f.svc.DeleteUser(bg, f.admin, f.member.UserID))
	_, err = f.svc.GetByID(bg, f.admin, f.member.UserID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_UpdatePassword(t *testing.T) {
	f := newUserFixture(t)

	req := &dto.UpdatePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "a-brand-new-password",
		ConfirmPassword: "a-brand-new-password",
	}

	assert.ErrorIs(t, f.svc.UpdatePassword(bg, f.admin, f.member.UserID, req), apperrors.ErrForbidden)

	mismatch := *req
	mismatch.ConfirmPassword = "something-else-entirely"
	assert.ErrorIs(t, f.svc.UpdatePassword(bg, f.member, f.member.UserID, &mismatch), apperrors.ErrPasswordMismatch)

	wrong := *req
	wrong.CurrentPassword = "not-the-password"
	assert.ErrorIs(t, f.svc.UpdatePassword(bg, f.member, f.member.UserID, &wrong), apperrors.ErrIncorrectPassword)

	require.NoError(t, f.svc.UpdatePassword(bg, f.member, f.member.UserID, req))

	var stored string
	require.NoError(t, f.db.Table("users").Select("password").Where("id = ?", f.member.UserID).Scan(&stored).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte(req.NewPassword)))
}
