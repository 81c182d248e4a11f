package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/dto"
	apperrors "github.com/Payphone-Digital/bilemo/internal/errors"
	"github.com/Payphone-Digital/bilemo/internal/middleware"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/Payphone-Digital/bilemo/pkg/validation"
	"github.com/gin-gonic/gin"
)

// respondError writes err with the status of its domain code
func respondError(ctx context.Context, c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)

	entry := logger.WarnWithContext(ctx, "Request failed")
	if status >= http.StatusInternalServerError {
		entry = logger.ErrorWithContext(ctx, "Request failed")
	}
	entry.StatusCode(status).Err(err).Log()

	c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
}

// bindJSON decodes and validates the body into req, answering 400 on failure
func bindJSON(ctx context.Context, c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	details, ok := validation.Messages(err)
	if !ok {
		details = []string{err.Error()}
	}

	logger.WarnWithContext(ctx, "Invalid request body").
		Any("validation_errors", details).
		Log()

	c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, details))
	return false
}

// paramID reads the :id path parameter, answering 400 when it is not a positive integer
func paramID(ctx context.Context, c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		logger.WarnWithContext(ctx, "Invalid ID format").
			String("raw_id", raw).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgInvalidID, nil))
		return 0, false
	}
	return uint(id), true
}

// principal returns the authenticated caller, answering 401 when there is none
func principal(c *gin.Context) (dto.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(apperrors.ErrUnauthorized.Message, nil))
	}
	return p, ok
}

func pageQuery(c *gin.Context) dto.PageQuery {
	return dto.PageQuery{
		Page:  c.Query(constants.QueryParamPage),
		Limit: c.Query(constants.QueryParamLimit),
		Order: c.Query(constants.QueryParamOrder),
	}
}

func created(c *gin.Context, id uint, body interface{}) {
	c.Header(constants.HeaderLocation, c.Request.URL.Path+"/"+strconv.FormatUint(uint64(id), 10))
	c.JSON(http.StatusCreated, body)
}
