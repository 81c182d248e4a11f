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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxPrice is the largest value a decimal(6,2) column holds
var maxPrice = decimal.RequireFromString("9999.99")

type ProductService struct {
	repo  *repository.ProductRepository
	cache *CacheService
	pages PageSettings
}

func NewProductService(repo *repository.ProductRepository, cache *CacheService, pages PageSettings) *ProductService {
	return &ProductService{repo: repo, cache: cache, pages: pages}
}

func (s *ProductService) List(ctx context.Context, q dto.PageQuery) (*paginator.Page[dto.ProductResponse], error) {
	ctx = ctxutil.WithOperation(ctx, "service", "ListProducts")

	req, err := s.pages.parse(q)
	if err != nil {
		return nil, err
	}

	key := req.cacheKey(constants.CacheKeyProducts, s.pages.OffsetMode)
	var cached paginator.Page[dto.ProductResponse]
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	page, err := listPage(ctx, s.pages, s.repo.Source(), req, nil, toProductResponse)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to list products").
			Int("page", req.page).
			Int("limit", req.limit).
			Err(err).
			Log()
		return nil, err
	}

	s.cache.SetJSON(ctx, key, page)
	return page, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uint) (*dto.ProductResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetProductByID")

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	response := toProductResponse(*product)
	return &response, nil
}

func (s *ProductService) Create(ctx context.Context, principal dto.Principal, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "CreateProduct")

	if !principal.IsSuperAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if req.Price == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price is required", nil)
	}
	price, err := normalizePrice(*req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSerialAvailable(ctx, req.SerialNumber, 0); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		SerialNumber: req.SerialNumber,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.InvalidatePrefix(ctx, constants.CacheKeyProducts)

	response := toProductResponse(*product)
	return &response, nil
}

// Update applies the non-empty fields of req
func (s *ProductService) Update(ctx context.Context, principal dto.Principal, id uint, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateProduct")

	if !principal.IsSuperAdmin() {
		return nil, apperrors.ErrForbidden
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}

	if req.SerialNumber != "" && req.SerialNumber != product.SerialNumber {
		if err := s.ensureSerialAvailable(ctx, req.SerialNumber, id); err != nil {
			return nil, err
		}
		product.SerialNumber = req.SerialNumber
	}
	if req.Price != nil {
		price, err := normalizePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	product.Name = coalesce(req.Name, product.Name)
	product.Description = coalesce(req.Description, product.Description)

	if err := s.repo.Update(ctx, id, product); err != nil {
		return nil, productError(err)
	}

	s.cache.InvalidatePrefix(ctx, constants.CacheKeyProducts)

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	response := toProductResponse(*updated)
	return &response, nil
}

func (s *ProductService) Delete(ctx context.Context, principal dto.Principal, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "DeleteProduct")

	if !principal.IsSuperAdmin() {
		return apperrors.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return productError(err)
	}

	s.cache.InvalidatePrefix(ctx, constants.CacheKeyProducts)
	return nil
}

func (s *ProductService) ensureSerialAvailable(ctx context.Context, serial string, excludeID uint) error {
	exists, err := s.repo.ExistsBySerialNumber(ctx, serial, excludeID)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		logger.InfoWithContext(ctx, "Serial number already taken").
			String("serial_number", serial).
			Log()
		return apperrors.ErrSerialNumberExists
	}
	return nil
}

// normalizePrice rounds to cents and checks the rounded value is in (0, 9999.99]
func normalizePrice(price decimal.Decimal) (decimal.Decimal, error) {
	rounded := price.Round(2)
	if !rounded.IsPositive() || rounded.GreaterThan(maxPrice) {
		return decimal.Decimal{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "price must be greater than 0 and at most 9999.99", nil)
	}
	return rounded, nil
}

func productError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrProductNotFound
	}
	return apperrors.WrapError(apperrors.ErrInternal, err)
}

func toProductResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		SerialNumber: p.SerialNumber,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
