// Package paginator computes a requested page of an ordered collection plus its
// pagination metadata. It knows nothing about HTTP or the ORM: callers hand it a
// Source capable of counting rows and fetching an ordered slice.
package paginator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when callers have no preference.
const DefaultLimit = 5

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPageNotFound    = errors.New("the page that you are looking for does not exist")
)

// Order is the direction of the primary key ordering.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// OffsetMode selects how the row offset is derived from the page number.
type OffsetMode int

const (
	// OffsetLinear skips (page-1)*limit rows.
	OffsetLinear OffsetMode = iota
	// OffsetLegacy reproduces the offsets served by the previous API:
	// 0 for page 1, limit for page 2, page*limit beyond that.
	OffsetLegacy
)

// ParseOffsetMode maps a configuration value to an OffsetMode.
func ParseOffsetMode(raw string) (OffsetMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "linear":
		return OffsetLinear, nil
	case "legacy":
		return OffsetLegacy, nil
	default:
		return OffsetLinear, fmt.Errorf("%w: unknown offset mode %q", ErrInvalidArgument, raw)
	}
}

func (m OffsetMode) String() string {
	if m == OffsetLegacy {
		return "legacy"
	}
	return "linear"
}

// Filter narrows the collection to rows where Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Source is the data access capability a Paginator pages over.
type Source[T any] interface {
	Count(ctx context.Context, filter *Filter) (int64, error)
	FetchSlice(ctx context.Context, order Order, limit, offset int, filter *Filter) ([]T, error)
}

// Meta describes the page that was served.
type Meta struct {
	CurrentPage   int   `json:"current_page"`
	TotalPages    int   `json:"total_page"`
	ItemsReturned int   `json:"total_item_returned"`
	TotalItems    int64 `json:"total_items"`
	Offset        int   `json:"offset"`
	Limit         int   `json:"limit"`
}

// Page is a slice of items wrapped with its metadata.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// Option configures a Paginator at construction.
type Option func(*options)

type options struct {
	order      Order
	offsetMode OffsetMode
}

func WithOrder(order Order) Option {
	return func(o *options) { o.order = order }
}

func WithOffsetMode(mode OffsetMode) Option {
	return func(o *options) { o.offsetMode = mode }
}

// Paginator serves pages of one Source. An instance is meant to live for a
// single request and is not safe for concurrent use.
type Paginator[T any] struct {
	source     Source[T]
	limit      int
	order      Order
	offsetMode OffsetMode
}

// New builds a Paginator over source with the given page size.
func New[T any](source Source[T], limit int, opts ...Option) (*Paginator[T], error) {
	if source == nil {
		return nil, fmt.Errorf("%w: source is required", ErrInvalidArgument)
	}

	o := options{order: OrderAsc, offsetMode: OffsetLinear}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Paginator[T]{source: source, offsetMode: o.offsetMode}
	if err := p.SetLimit(limit); err != nil {
		return nil, err
	}
	if err := p.SetOrder(string(o.order)); err != nil {
		return nil, err
	}
	return p, nil
}

// SetLimit changes the page size.
func (p *Paginator[T]) SetLimit(limit int) error {
	if limit < 1 {
		return fmt.Errorf("%w: the limit must be a positive integer, got %d", ErrInvalidArgument, limit)
	}
	p.limit = limit
	return nil
}

// ParseOrder accepts ASC or DESC in any letter case.
func ParseOrder(raw string) (Order, error) {
	normalized := Order(strings.ToUpper(strings.TrimSpace(raw)))
	if normalized != OrderAsc && normalized != OrderDesc {
		return OrderAsc, fmt.Errorf("%w: order value must be 'ASC' or 'DESC', got %q", ErrInvalidArgument, raw)
	}
	return normalized, nil
}

func (p *Paginator[T]) SetOrder(order string) error {
	normalized, err := ParseOrder(order)
	if err != nil {
		return err
	}
	p.order = normalized
	return nil
}

func (p *Paginator[T]) Limit() int   { return p.limit }
func (p *Paginator[T]) Order() Order { return p.order }

// Page returns the requested page with its metadata.
func (p *Paginator[T]) Page(ctx context.Context, pageNumber int, filter *Filter) (*Page[T], error) {
	if pageNumber < 1 {
		return nil, fmt.Errorf("%w: the number of the asked page must be a positive integer, got %d", ErrInvalidArgument, pageNumber)
	}

	totalItems, err := p.source.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	totalPages := TotalPages(totalItems, p.limit)
	if pageNumber > totalPages {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageNotFound, pageNumber, totalPages)
	}

	offset := p.Offset(pageNumber)
	items, err := p.source.FetchSlice(ctx, p.order, p.limit, offset, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", pageNumber, err)
	}
	if items == nil {
		items = []T{}
	}
	items = items[:min(len(items), p.limit)]

	return &Page[T]{
		Data: items,
		Meta: Meta{
			CurrentPage:   pageNumber,
			TotalPages:    totalPages,
			ItemsReturned: len(items),
			TotalItems:    totalItems,
			Offset:        offset,
			Limit:         p.limit,
		},
	}, nil
}

// Items returns only the rows of the requested page.
func (p *Paginator[T]) Items(ctx context.Context, pageNumber int, filter *Filter) ([]T, error) {
	page, err := p.Page(ctx, pageNumber, filter)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// Offset is the number of rows skipped before pageNumber begins.
func (p *Paginator[T]) Offset(pageNumber int) int {
	switch {
	case pageNumber <= 1:
		return 0
	case pageNumber == 2:
		return p.limit
	case p.offsetMode == OffsetLegacy:
		return pageNumber * p.limit
	default:
		return (pageNumber - 1) * p.limit
	}
}

// TotalPages is ceil(totalItems / limit).
func TotalPages(totalItems int64, limit int) int {
	if limit < 1 || totalItems <= 0 {
		return 0
	}
	l := int64(limit)
	return int((totalItems + l - 1) / l)
}

// ParsePageNumber converts a raw query value into a page number.
func ParsePageNumber(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: the number of the asked page must be a positive integer, got %q", ErrInvalidArgument, raw)
	}
	return n, nil
}

// ParseLimit converts a raw query value into a page size.
func ParseLimit(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: the limit must be a positive integer, got %q", ErrInvalidArgument, raw)
	}
	return n, nil
}

// MapPage converts every item of page with fn, keeping the metadata.
func MapPage[T, U any](page *Page[T], fn func(T) U) *Page[U] {
	if page == nil {
		return nil
	}
	out := make([]U, 0, len(page.Data))
	for _, item := range page.Data {
		out = append(out, fn(item))
	}
	return &Page[U]{Data: out, Meta: page.Meta}
}
