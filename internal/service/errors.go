package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xZoluGames/InventarioApp-sub001/internal/backup"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInactiveProduct      = errors.New("product is inactive and cannot be sold")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrInsufficientPayment  = errors.New("amount received is less than the sale total")
	ErrInvalidDiscount      = errors.New("discount must be between zero and the subtotal")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDuplicate            = errors.New("a record with the same unique value already exists")
	ErrSaleAlreadyCancelled = errors.New("sale is already cancelled")
	ErrInvalidBackup        = backup.ErrInvalidBackup
	ErrOffline              = errors.New("remote service is unreachable")
	ErrSelfDeactivate       = errors.New("you cannot deactivate your own account")
	ErrUnsupported          = errors.New("operation not supported by this store")
	ErrForbidden            = errors.New("operation requires the owner role")
	ErrDayClosed            = errors.New("business day is already closed")
	ErrInvalidTaxRate       = errors.New("tax rate must be between 0 and 100")
	ErrConflict             = errors.New("operation conflicts with existing data")
	ErrInvalidDate          = errors.New("dates must use the YYYY-MM-DD format")
)

// InsufficientStockError reports a requested quantity above what is on hand.
type InsufficientStockError struct {
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Product, e.Requested, e.Available)
}

// notFound maps gorm's missing-row error to ErrNotFound and leaves other
// errors untouched.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// uniqueViolation maps driver unique-constraint errors to ErrDuplicate.
func uniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueMessage(err.Error()) {
		return ErrDuplicate
	}
	return err
}

func isUniqueMessage(msg string) bool {
	for _, marker := range []string{"UNIQUE constraint failed", "duplicate key value", "SQLSTATE 23505"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
