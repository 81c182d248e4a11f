package service

import (
	"testing"

	"github.com/Payphone-Digital/bilemo/internal/dto"
	apperrors "github.com/Payphone-Digital/bilemo/internal/errors"
	"github.com/Payphone-Digital/bilemo/pkg/paginator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageSettings_Parse(t *testing.T) {
	tests := []struct {
		name    string
		query   dto.PageQuery
		want    listRequest
		wantErr bool
	}{
		{name: "defaults", query: dto.PageQuery{}, want: listRequest{page: 1, limit: 5, order: paginator.OrderAsc}},
		{name: "explicit", query: dto.PageQuery{Page: "3", Limit: "10", Order: "desc"}, want: listRequest{page: 3, limit: 10, order: paginator.OrderDesc}},
		{name: "limit clamped", query: dto.PageQuery{Limit: "500"}, want: listRequest{page: 1, limit: 20, order: paginator.OrderAsc}},
		{name: "page zero", query: dto.PageQuery{Page: "0"}, wantErr: true},
		{name: "page not a number", query: dto.PageQuery{Page: "abc"}, wantErr: true},
		{name: "negative limit", query: dto.PageQuery{Limit: "-1"}, wantErr: true},
		{name: "unknown order", query: dto.PageQuery{Order: "sideways"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testPages.parse(tt.query)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageError_Mapping(t *testing.T) {
	_, err := paginator.ParsePageNumber("x")
	mapped := pageError(err)
	assert.ErrorIs(t, mapped, apperrors.ErrInvalidInput)
	assert.NotContains(t, apperrors.GetErrorMessage(mapped), "invalid argument:")

	assert.ErrorIs(t, pageError(paginator.ErrPageNotFound), apperrors.ErrPageNotFound)
	assert.ErrorIs(t, pageError(assert.AnError), apperrors.ErrInternal)
}

func TestListRequest_CacheKey(t *testing.T) {
	req := listRequest{page: 2, limit: 5, order: paginator.OrderDesc}
	assert.Equal(t, "bilemo:products:page=2:limit=5:order=DESC:mode=legacy",
		req.cacheKey("bilemo:products:", paginator.OffsetLegacy))
}
