package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Payphone-Digital/bilemo/config"
	"github.com/Payphone-Digital/bilemo/internal/dto"
	apperrors "github.com/Payphone-Digital/bilemo/internal/errors"
	"github.com/Payphone-Digital/bilemo/pkg/paginator"
)

// PageSettings are the listing defaults shared by every paginated endpoint
type PageSettings struct {
	DefaultLimit int
	MaxLimit     int
	OffsetMode   paginator.OffsetMode
}

func NewPageSettings(cfg config.PaginationConfig) PageSettings {
	return PageSettings{
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
		OffsetMode:   cfg.OffsetMode,
	}
}

type listRequest struct {
	page  int
	limit int
	order paginator.Order
}

// cacheKey identifies the page across the settings that shape it
func (r listRequest) cacheKey(prefix string, mode paginator.OffsetMode) string {
	return fmt.Sprintf("%spage=%d:limit=%d:order=%s:mode=%s", prefix, r.page, r.limit, r.order, mode)
}

// parse applies defaults to q; a limit above MaxLimit is clamped
func (s PageSettings) parse(q dto.PageQuery) (listRequest, error) {
	req := listRequest{page: 1, limit: s.DefaultLimit, order: paginator.OrderAsc}

	if raw := strings.TrimSpace(q.Page); raw != "" {
		n, err := paginator.ParsePageNumber(raw)
		if err != nil {
			return req, pageError(err)
		}
		req.page = n
	}

	if raw := strings.TrimSpace(q.Limit); raw != "" {
		n, err := paginator.ParseLimit(raw)
		if err != nil {
			return req, pageError(err)
		}
		req.limit = n
	}
	if s.MaxLimit > 0 && req.limit > s.MaxLimit {
		req.limit = s.MaxLimit
	}

	if raw := strings.TrimSpace(q.Order); raw != "" {
		order, err := paginator.ParseOrder(raw)
		if err != nil {
			return req, pageError(err)
		}
		req.order = order
	}

	return req, nil
}

// listPage serves one page of source, converted with fn
func listPage[T, U any](ctx context.Context, settings PageSettings, source paginator.Source[T], req listRequest, filter *paginator.Filter, fn func(T) U) (*paginator.Page[U], error) {
	p, err := paginator.New(source, req.limit,
		paginator.WithOrder(req.order),
		paginator.WithOffsetMode(settings.OffsetMode),
	)
	if err != nil {
		return nil, pageError(err)
	}

	page, err := p.Page(ctx, req.page, filter)
	if err != nil {
		return nil, pageError(err)
	}

	return paginator.MapPage(page, fn), nil
}

func pageError(err error) error {
	switch {
	case errors.Is(err, paginator.ErrPageNotFound):
		return apperrors.WrapError(apperrors.ErrPageNotFound, err)
	case errors.Is(err, paginator.ErrInvalidArgument):
		msg := strings.TrimPrefix(err.Error(), paginator.ErrInvalidArgument.Error()+": ")
		return apperrors.WithMessage(apperrors.ErrInvalidInput, msg, err)
	default:
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
}
