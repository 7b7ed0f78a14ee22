package handler

import (
	"errors"
	"net/http"
	"reflect"

	"stockpos/internal/apierror"
	"stockpos/internal/middleware"
	"stockpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQueryAndValidate binds query-string filters and runs validator tags.
func bindQueryAndValidate(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// claimIDs extracts the acting user and store UUIDs from the JWT claims.
// The token issuer guarantees both parse, so errors here mean a forged token
// and the middleware has already rejected those.
func claimIDs(c *gin.Context) (userID, storeID uuid.UUID) {
	claims := middleware.GetClaims(c)
	userID, _ = uuid.Parse(claims.UserID)
	storeID, _ = uuid.Parse(claims.StoreID)
	return userID, storeID
}

// writeServiceError maps service-layer errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var insufficient *service.InsufficientInventoryError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":        insufficient.Error(),
			"product_id":   insufficient.ProductID,
			"product_name": insufficient.ProductName,
			"requested":    insufficient.Requested,
			"available":    insufficient.Available,
		})
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrProductNotOwned),
		errors.Is(err, service.ErrRoomNotOwned):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrTotalMismatch),
		errors.Is(err, service.ErrCashShort),
		errors.Is(err, service.ErrSameRoom),
		errors.Is(err, service.ErrStockBelowZero):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Internal error"))
	}
}
