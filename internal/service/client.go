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
	"gorm.io/gorm"
)

type ClientService struct {
	repo  *repository.ClientRepository
	cache *CacheService
	pages PageSettings
}

func NewClientService(repo *repository.ClientRepository, cache *CacheService, pages PageSettings) *ClientService {
	return &ClientService{repo: repo, cache: cache, pages: pages}
}

func (s *ClientService) List(ctx context.Context, q dto.PageQuery) (*paginator.Page[dto.ClientResponse], error) {
	ctx = ctxutil.WithOperation(ctx, "service", "ListClients")

	req, err := s.pages.parse(q)
	if err != nil {
		return nil, err
	}

	key := req.cacheKey(constants.CacheKeyClients, s.pages.OffsetMode)
	var cached paginator.Page[dto.ClientResponse]
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	page, err := listPage(ctx, s.pages, s.repo.Source(), req, nil, toClientResponse)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to list clients").
			Int("page", req.page).
			Int("limit", req.limit).
			Err(err).
			Log()
		return nil, err
	}

	s.cache.SetJSON(ctx, key, page)
	return page, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uint) (*dto.ClientDetailResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetClientByID")

	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, clientError(err)
	}

	users := make([]dto.UserSummary, 0, len(client.Users))
	for _, u := range client.Users {
		users = append(users, toUserSummary(u))
	}

	return &dto.ClientDetailResponse{
		ClientResponse: toClientResponse(*client),
		Users:          users,
	}, nil
}

func (s *ClientService) Create(ctx context.Context, principal dto.Principal, req *dto.CreateClientRequest) (*dto.ClientResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "CreateClient")

	if !principal.IsSuperAdmin() {
		return nil, apperrors.ErrForbidden
	}

	client := &model.Client{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		PhoneNumber: req.PhoneNumber,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.InvalidatePrefix(ctx, constants.CacheKeyClients)

	logger.InfoWithContext(ctx, "Client created").
		Uint("client_id", client.ID).
		Uint("by_user_id", principal.UserID).
		Log()

	response := toClientResponse(*client)
	return &response, nil
}

// Update applies the non-empty fields of req
func (s *ClientService) Update(ctx context.Context, principal dto.Principal, id uint, req *dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateClient")

	if !principal.IsSuperAdmin() {
		return nil, apperrors.ErrForbidden
	}

	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, clientError(err)
	}

	client.Name = coalesce(req.Name, client.Name)
	client.Address = coalesce(req.Address, client.Address)
	client.Description = coalesce(req.Description, client.Description)
	client.PhoneNumber = coalesce(req.PhoneNumber, client.PhoneNumber)

	if err := s.repo.Update(ctx, id, client); err != nil {
		return nil, clientError(err)
	}

	s.cache.InvalidatePrefix(ctx, constants.CacheKeyClients)

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, clientError(err)
	}
	response := toClientResponse(*updated)
	return &response, nil
}

// Delete removes the client together with its users
func (s *ClientService) Delete(ctx context.Context, principal dto.Principal, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "DeleteClient")

	if !principal.IsSuperAdmin() {
		return apperrors.ErrForbidden
	}
	if principal.ClientID == id {
		return apperrors.WithMessage(apperrors.ErrForbidden, "you cannot delete your own client", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return clientError(err)
	}

	s.cache.InvalidatePrefix(ctx, constants.CacheKeyClients)

	logger.InfoWithContext(ctx, "Client deleted").
		Uint("client_id", id).
		Uint("by_user_id", principal.UserID).
		Log()
	return nil
}

func clientError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrClientNotFound
	}
	return apperrors.WrapError(apperrors.ErrInternal, err)
}

func toClientResponse(c model.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Address:     c.Address,
		Description: c.Description,
		PhoneNumber: c.PhoneNumber,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func coalesce(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
