// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Business error taxonomy. Handlers map these onto HTTP statuses; none of
// them leaves partially applied state behind.
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrRequestNotFound     = errors.New("change request not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrConcurrencyConflict = errors.New("concurrent update conflict, retry the transaction")
)

// InsufficientStockError carries the remaining quantity so callers can tell
// the user how many units are actually left.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock of %s: only %d left", e.ProductName, e.Available)
}

// ValidationError flags malformed input that the caller can correct and
// resubmit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// isSerializationFailure detects postgres serialization/deadlock failures so
// a racing checkout can be retried as a whole rather than surfaced as an
// internal error.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// isUniqueViolation covers postgres (23505) and the sqlite test database.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
