package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"gorm.io/gorm"
)

// store is embedded by every repository. It bounds each call with a timeout
// and maps gorm/driver errors onto the domain store errors.
type store struct {
	db      *gorm.DB
	timeout time.Duration
}

func newStore(db *gorm.DB, timeout time.Duration) store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return store{db: db, timeout: timeout}
}

func (s store) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicate
	case isUnavailable(err):
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	default:
		return err
	}
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
