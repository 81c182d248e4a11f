package paginator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID       int
	ClientID int
}

type fetchCall struct {
	order  Order
	limit  int
	offset int
	filter *Filter
}

// memorySource pages over a slice and records every round trip it serves.
type memorySource struct {
	rows       []row
	countCalls int
	fetchCalls []fetchCall
	countErr   error
	fetchErr   error
	ignoreLim  bool // serve every row from offset on, as a buggy source would
}

func newMemorySource(n int) *memorySource {
	rows := make([]row, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, row{ID: i, ClientID: (i % 2) + 1})
	}
	return &memorySource{rows: rows}
}

func (s *memorySource) filtered(filter *Filter) []row {
	if filter == nil {
		return s.rows
	}
	out := make([]row, 0, len(s.rows))
	for _, r := range s.rows {
		if filter.Field == "client" && filter.Value == r.ClientID {
			out = append(out, r)
		}
	}
	return out
}

func (s *memorySource) Count(_ context.Context, filter *Filter) (int64, error) {
	s.countCalls++
	if s.countErr != nil {
		return 0, s.countErr
	}
	return int64(len(s.filtered(filter))), nil
}

func (s *memorySource) FetchSlice(_ context.Context, order Order, limit, offset int, filter *Filter) ([]row, error) {
	s.fetchCalls = append(s.fetchCalls, fetchCall{order: order, limit: limit, offset: offset, filter: filter})
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	rows := s.filtered(filter)
	ordered := make([]row, len(rows))
	copy(ordered, rows)
	if order == OrderDesc {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}
	if offset >= len(ordered) {
		return []row{}, nil
	}
	end := offset + limit
	if s.ignoreLim || end > len(ordered) {
		end = len(ordered)
	}
	return ordered[offset:end], nil
}

func ids(rows []row) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestNew(t *testing.T) {
	src := newMemorySource(3)

	p, err := New[row](src, DefaultLimit)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Limit())
	assert.Equal(t, OrderAsc, p.Order())

	_, err = New[row](src, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New[row](nil, 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New[row](src, 5, WithOrder("sideways"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPage_TwelveRows(t *testing.T) {
	ctx := context.Background()
	src := newMemorySource(12)
	p, err := New[row](src, 5)
	require.NoError(t, err)

	page, err := p.Page(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(page.Data))
	assert.Equal(t, Meta{CurrentPage: 1, TotalPages: 3, ItemsReturned: 5, TotalItems: 12, Offset: 0, Limit: 5}, page.Meta)

	page, err = p.Page(ctx, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 7, 8, 9, 10}, ids(page.Data))
	assert.Equal(t, 5, page.Meta.Offset)

	page, err = p.Page(ctx, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{11, 12}, ids(page.Data))
	assert.Equal(t, Meta{CurrentPage: 3, TotalPages: 3, ItemsReturned: 2, TotalItems: 12, Offset: 10, Limit: 5}, page.Meta)

	countsBefore := src.countCalls
	fetchesBefore := len(src.fetchCalls)
	_, err = p.Page(ctx, 4, nil)
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.Equal(t, countsBefore+1, src.countCalls, "count runs before the page check")
	assert.Equal(t, fetchesBefore, len(src.fetchCalls), "no slice fetched for a missing page")
}

func TestPage_InvalidPageNumberSkipsSource(t *testing.T) {
	src := newMemorySource(12)
	p, err := New[row](src, 5)
	require.NoError(t, err)

	for _, n := range []int{0, -1, -100} {
		_, err := p.Page(context.Background(), n, nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.Zero(t, src.countCalls)
	assert.Empty(t, src.fetchCalls)
}

func TestPage_EmptyCollection(t *testing.T) {
	src := newMemorySource(0)
	p, err := New[row](src, 5)
	require.NoError(t, err)

	_, err = p.Page(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name  string
		mode  OffsetMode
		limit int
		page  int
		want  int
	}{
		{"first page", OffsetLinear, 5, 1, 0},
		{"second page", OffsetLinear, 5, 2, 5},
		{"third page linear", OffsetLinear, 5, 3, 10},
		{"third page legacy", OffsetLegacy, 5, 3, 15},
		{"second page legacy", OffsetLegacy, 5, 2, 5},
		{"seventh page linear", OffsetLinear, 3, 7, 18},
		{"seventh page legacy", OffsetLegacy, 3, 7, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New[row](newMemorySource(1), tt.limit, WithOffsetMode(tt.mode))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Offset(tt.page))
		})
	}
}

func TestPage_LegacyOffsetReachesSource(t *testing.T) {
	src := newMemorySource(30)
	p, err := New[row](src, 5, WithOffsetMode(OffsetLegacy))
	require.NoError(t, err)

	page, err := p.Page(context.Background(), 3, nil)
	require.NoError(t, err)
	require.Len(t, src.fetchCalls, 1)
	assert.Equal(t, 15, src.fetchCalls[0].offset)
	assert.Equal(t, []int{16, 17, 18, 19, 20}, ids(page.Data))
	assert.Equal(t, 15, page.Meta.Offset)
}

func TestPage_OrderDesc(t *testing.T) {
	src := newMemorySource(12)
	p, err := New[row](src, 5, WithOrder(OrderDesc))
	require.NoError(t, err)

	page, err := p.Page(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{12, 11, 10, 9, 8}, ids(page.Data))
	assert.Equal(t, OrderDesc, src.fetchCalls[0].order)
}

func TestPage_FilterAppliesToBothRoundTrips(t *testing.T) {
	src := newMemorySource(12)
	p, err := New[row](src, 5)
	require.NoError(t, err)

	filter := &Filter{Field: "client", Value: 2}
	page, err := p.Page(context.Background(), 1, filter)
	require.NoError(t, err)

	assert.Equal(t, int64(6), page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.Equal(t, []int{1, 3, 5, 7, 9}, ids(page.Data))
	assert.Same(t, filter, src.fetchCalls[0].filter)
}

func TestItems(t *testing.T) {
	src := newMemorySource(12)
	p, err := New[row](src, 5)
	require.NoError(t, err)

	items, err := p.Items(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{11, 12}, ids(items))

	_, err = p.Items(context.Background(), 9, nil)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestPage_SourceErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")

	src := newMemorySource(12)
	src.countErr = boom
	p, err := New[row](src, 5)
	require.NoError(t, err)
	_, err = p.Page(context.Background(), 1, nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, src.fetchCalls)

	src = newMemorySource(12)
	src.fetchErr = boom
	p, err = New[row](src, 5)
	require.NoError(t, err)
	_, err = p.Page(context.Background(), 1, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, src.countCalls)
}

func TestSetLimit(t *testing.T) {
	src := newMemorySource(12)
	p, err := New[row](src, 5)
	require.NoError(t, err)

	assert.ErrorIs(t, p.SetLimit(0), ErrInvalidArgument)
	assert.Equal(t, 5, p.Limit())

	require.NoError(t, p.SetLimit(4))
	page, err := p.Page(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Meta.TotalPages)
	assert.Equal(t, 4, page.Meta.ItemsReturned)
}

func TestSetOrder(t *testing.T) {
	p, err := New[row](newMemorySource(1), 5)
	require.NoError(t, err)

	require.NoError(t, p.SetOrder("desc"))
	assert.Equal(t, OrderDesc, p.Order())
	require.NoError(t, p.SetOrder("ASC"))
	assert.Equal(t, OrderAsc, p.Order())

	for _, bad := range []string{"", "up", "ASCENDING"} {
		assert.ErrorIs(t, p.SetOrder(bad), ErrInvalidArgument, bad)
	}
	assert.Equal(t, OrderAsc, p.Order())
}

func TestParseOrder(t *testing.T) {
	for raw, want := range map[string]Order{"asc": OrderAsc, " DESC ": OrderDesc, "Desc": OrderDesc} {
		got, err := ParseOrder(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseOrder("sideways")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPage_CapsRowsToLimit(t *testing.T) {
	src := newMemorySource(12)
	src.ignoreLim = true
	p, err := New[row](src, 5)
	require.NoError(t, err)

	page, err := p.Page(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(page.Data))
	assert.Equal(t, 5, page.Meta.ItemsReturned)
	assert.LessOrEqual(t, page.Meta.ItemsReturned, page.Meta.Limit)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 5))
	assert.Equal(t, 1, TotalPages(1, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 2, TotalPages(6, 5))
	assert.Equal(t, 3, TotalPages(12, 5))
	assert.Equal(t, 0, TotalPages(12, 0))
}

func TestParsePageNumber(t *testing.T) {
	n, err := ParsePageNumber("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, raw := range []string{"abc", "", "0", "-2", "1.5"} {
		_, err := ParsePageNumber(raw)
		assert.ErrorIs(t, err, ErrInvalidArgument, raw)
	}
}

func TestParseLimit(t *testing.T) {
	n, err := ParseLimit(" 20 ")
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	_, err = ParseLimit("zero")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseOffsetMode(t *testing.T) {
	mode, err := ParseOffsetMode("")
	require.NoError(t, err)
	assert.Equal(t, OffsetLinear, mode)

	mode, err = ParseOffsetMode("Legacy")
	require.NoError(t, err)
	assert.Equal(t, OffsetLegacy, mode)
	assert.Equal(t, "legacy", mode.String())

	_, err = ParseOffsetMode("quadratic")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMapPage(t *testing.T) {
	page := &Page[row]{
		Data: []row{{ID: 1}, {ID: 2}},
		Meta: Meta{CurrentPage: 1, TotalPages: 1, ItemsReturned: 2, TotalItems: 2, Limit: 5},
	}

	mapped := MapPage(page, func(r row) int { return r.ID * 10 })
	assert.Equal(t, []int{10, 20}, mapped.Data)
	assert.Equal(t, page.Meta, mapped.Meta)

	assert.Nil(t, MapPage[row, int](nil, func(r row) int { return r.ID }))
}
