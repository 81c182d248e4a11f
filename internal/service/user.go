package service

import (
	"context"
	"errors"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/dto"
	apperrors "github.com/Payphone-Digital/bilemo/internal/errors"
	"github.com/Payphone-Digital/bilemo/internal/model"
	"github.com/Payphone-Digital/bilemo/internal/repository"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/Payphone-Digital/bilemo/pkg/paginator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	repoUser   *repository.UserRepository
	repoClient *repository.ClientRepository
	pages      PageSettings
}

func NewUserService(repoUser *repository.UserRepository, repoClient *repository.ClientRepository, pages PageSettings) *UserService {
	return &UserService{repoUser: repoUser, repoClient: repoClient, pages: pages}
}

// List pages over all users for super-admins and over the caller's client for admins
func (s *UserService) List(ctx context.Context, principal dto.Principal, q dto.PageQuery) (*paginator.Page[dto.UserResponse], error) {
	ctx = ctxutil.WithOperation(ctx, "service", "ListUsers")

	var filter *paginator.Filter
	switch {
	case principal.IsSuperAdmin():
	case principal.IsAdmin():
		filter = &paginator.Filter{Field: constants.FilterFieldClient, Value: principal.ClientID}
	default:
		return nil, apperrors.ErrForbidden
	}

	req, err := s.pages.parse(q)
	if err != nil {
		return nil, err
	}

	page, err := listPage(ctx, s.pages, s.repoUser.Source(), req, filter, toUserResponse)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to list users").
			Int("page", req.page).
			Bool("client_scoped", filter != nil).
			Err(err).
			Log()
		return nil, err
	}
	return page, nil
}

func (s *UserService) GetByID(ctx context.Context, principal dto.Principal, id uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetUserByID")

	user, err := s.loadManaged(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	response := toUserResponse(*user)
	return &response, nil
}

// CreateUser adds a user. Admins can only add plain users to their own client.
func (s *UserService) CreateUser(ctx context.Context, principal dto.Principal, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "CreateUser")

	user := &model.User{
		Username:     req.Username,
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		ClientID:     req.ClientID,
		Roles:        req.Roles,
		TokenVersion: 1,
	}

	switch {
	case principal.IsSuperAdmin():
		if user.ClientID == 0 {
			user.ClientID = principal.ClientID
		}
		if err := s.ensureClientExists(ctx, user.ClientID); err != nil {
			return nil, err
		}
	case principal.IsAdmin():
		user.ClientID = principal.ClientID
		user.Roles = []string{constants.RoleUser}
	default:
		return nil, apperrors.ErrForbidden
	}
	if len(user.Roles) == 0 {
		user.Roles = []string{constants.RoleUser}
	}

	if err := s.ensureUsernameAvailable(ctx, user.Username, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashedPassword

	if err := s.repoUser.Create(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", user.Username).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	created, err := s.repoUser.GetByID(ctx, user.ID)
	if err != nil {
		return nil, userError(err)
	}

	logger.InfoWithContext(ctx, "User created successfully").
		Uint("target_user_id", created.ID).
		Uint("client_id", created.ClientID).
		Log()

	response := toUserResponse(*created)
	return &response, nil
}

// UpdateUser applies the non-empty fields of req. An admin editing another user
// leaves them a plain user of the same client.
func (s *UserService) UpdateUser(ctx context.Context, principal dto.Principal, id uint, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateUser")

	user, err := s.loadManaged(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if req.Username != "" && req.Username != user.Username {
		if err := s.ensureUsernameAvailable(ctx, req.Username, id); err != nil {
			return nil, err
		}
		user.Username = req.Username
	}
	user.PhoneNumber = coalesce(req.PhoneNumber, user.PhoneNumber)
	user.Email = coalesce(req.Email, user.Email)

	if principal.IsSuperAdmin() {
		if len(req.Roles) > 0 {
			user.Roles = req.Roles
		}
		if req.ClientID != 0 && req.ClientID != user.ClientID {
			if err := s.ensureClientExists(ctx, req.ClientID); err != nil {
				return nil, err
			}
			user.ClientID = req.ClientID
		}
	} else if user.ID != principal.UserID {
		user.Roles = []string{constants.RoleUser}
	}

	user.Password = ""
	if req.Password != "" {
		if user.Password, err = s.hashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repoUser.Update(ctx, id, user); err != nil {
		return nil, userError(err)
	}

	updated, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}

	logger.InfoWithContext(ctx, "User updated successfully").
		Uint("target_user_id", id).
		Log()

	response := toUserResponse(*updated)
	return &response, nil
}

// UpdatePassword lets a user change their own password
func (s *UserService) UpdatePassword(ctx context.Context, principal dto.Principal, id uint, req *dto.UpdatePasswordRequest) error {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdatePassword")

	if principal.UserID != id {
		return apperrors.ErrForbidden
	}
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		return userError(err)
	}

	if !s.checkPassword(user.Password, req.CurrentPassword) {
		logger.WarnWithContext(ctx, "Incorrect current password").
			Uint("target_user_id", id).
			Log()
		return apperrors.ErrIncorrectPassword
	}

	hashedPassword, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.repoUser.UpdatePassword(ctx, id, hashedPassword); err != nil {
		return userError(err)
	}

	logger.InfoWithContext(ctx, "Password updated successfully").
		Uint("target_user_id", id).
		Log()
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, principal dto.Principal, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "DeleteUser")

	if id == principal.UserID {
		logger.WarnWithContext(ctx, "User attempted to delete themselves").
			Uint("target_user_id", id).
			Log()
		return apperrors.ErrSelfDeletion
	}

	if _, err := s.loadManaged(ctx, principal, id); err != nil {
		return err
	}

	if err := s.repoUser.Delete(ctx, id); err != nil {
		return userError(err)
	}

	logger.InfoWithContext(ctx, "User deleted successfully").
		Uint("target_user_id", id).
		Uint("by_user_id", principal.UserID).
		Log()
	return nil
}

// loadManaged returns the user if principal may manage them
func (s *UserService) loadManaged(ctx context.Context, principal dto.Principal, id uint) (*model.User, error) {
	user, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}

	switch {
	case principal.IsSuperAdmin():
		return user, nil
	case user.HasRole(constants.RoleSuperAdmin):
		logger.WarnWithContext(ctx, "Access to super-admin account denied").
			Uint("target_user_id", id).
			Log()
		return nil, apperrors.ErrForbidden
	case principal.IsAdmin() && user.ClientID == principal.ClientID:
		return user, nil
	default:
		logger.WarnWithContext(ctx, "Access to user of another client denied").
			Uint("target_user_id", id).
			Uint("client_id", principal.ClientID).
			Log()
		return nil, apperrors.ErrForbidden
	}
}

func (s *UserService) ensureUsernameAvailable(ctx context.Context, username string, excludeID uint) error {
	exists, err := s.repoUser.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		return apperrors.ErrUsernameExists
	}
	return nil
}

func (s *UserService) ensureClientExists(ctx context.Context, clientID uint) error {
	exists, err := s.repoClient.Exists(ctx, clientID)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !exists {
		return apperrors.ErrClientNotFound
	}
	return nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return string(bytes), nil
}

func (s *UserService) checkPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

func userError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrUserNotFound
	}
	return apperrors.WrapError(apperrors.ErrInternal, err)
}

func toUserResponse(u model.User) dto.UserResponse {
	response := dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		Roles:       u.EffectiveRoles(),
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.Client != nil {
		response.Client = &dto.ClientSummary{ID: u.Client.ID, Name: u.Client.Name}
	}
	return response
}

func toUserSummary(u model.User) dto.UserSummary {
	return dto.UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
}
