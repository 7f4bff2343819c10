package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/xZoluGames/InventarioApp-sub001/internal/apierror"
	"github.com/xZoluGames/InventarioApp-sub001/internal/middleware"
	"github.com/xZoluGames/InventarioApp-sub001/internal/scan"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

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
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramUUID parses a path parameter, writing 400 when it is not a UUID.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// sessionOf returns the caller's session. Routes using it sit behind JWTAuth.
func sessionOf(c *gin.Context) session.Session {
	sess, _ := middleware.GetSession(c)
	return sess
}

// writeError maps service errors to HTTP statuses. Anything unrecognised is
// handed to ErrorHandler, which logs it and answers with a generic 500.
func writeError(c *gin.Context, err error) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, apierror.NewStock(stockErr.Error(), stockErr.Available))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, service.ErrDuplicate),
		errors.Is(err, service.ErrSaleAlreadyCancelled),
		errors.Is(err, service.ErrDayClosed),
		errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrOffline):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInactiveProduct),
		errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrInsufficientPayment),
		errors.Is(err, service.ErrInvalidDiscount),
		errors.Is(err, service.ErrInvalidTaxRate),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrNoStockChange),
		errors.Is(err, service.ErrSelfDeactivate),
		errors.Is(err, service.ErrInvalidBackup),
		errors.Is(err, service.ErrUnsupported),
		errors.Is(err, scan.ErrNoCode):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
