package repository

import (
	"context"
	"fmt"
	"time"

	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/Payphone-Digital/bilemo/pkg/paginator"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntitySource pages over one table with gorm. Filter fields are logical names
// resolved through columns; anything not listed there is rejected.
type EntitySource[T any] struct {
	db       *gorm.DB
	entity   string
	columns  map[string]string
	preloads []string
}

var _ paginator.Source[struct{}] = (*EntitySource[struct{}])(nil)

func NewEntitySource[T any](db *gorm.DB, entity string, columns map[string]string, preloads ...string) *EntitySource[T] {
	return &EntitySource[T]{
		db:       db,
		entity:   entity,
		columns:  columns,
		preloads: preloads,
	}
}

func (s *EntitySource[T]) scoped(ctx context.Context, filter *paginator.Filter) (*gorm.DB, error) {
	query := s.db.WithContext(ctx).Model(new(T))
	if filter == nil {
		return query, nil
	}

	column, ok := s.columns[filter.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot be filtered by %q", paginator.ErrInvalidArgument, s.entity, filter.Field)
	}
	return query.Where(clause.Eq{Column: clause.Column{Name: column}, Value: filter.Value}), nil
}

func (s *EntitySource[T]) Count(ctx context.Context, filter *paginator.Filter) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "Count")

	query, err := s.scoped(ctx, filter)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count rows").
			String("entity", s.entity).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return 0, err
	}

	logger.DebugWithContext(ctx, "Rows counted").
		String("entity", s.entity).
		Int64("total", total).
		Duration(time.Since(start)).
		Log()

	return total, nil
}

func (s *EntitySource[T]) FetchSlice(ctx context.Context, order paginator.Order, limit, offset int, filter *paginator.Filter) ([]T, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FetchSlice")

	query, err := s.scoped(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, p := range s.preloads {
		query = query.Preload(p)
	}

	start := time.Now()
	var rows []T
	err = query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: order == paginator.OrderDesc}).
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	duration := time.Since(start)

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch rows").
			String("entity", s.entity).
			Int("limit", limit).
			Int("offset", offset).
			Duration(duration).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "Rows fetched").
		String("entity", s.entity).
		String("order", string(order)).
		Int("limit", limit).
		Int("offset", offset).
		Int("returned_count", len(rows)).
		Duration(duration).
		Log()

	return rows, nil
}
