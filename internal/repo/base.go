package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/backoffice/pkg/db"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// Base is embedded by the gorm repositories. It carries the connection, or
// the transaction when rebound with WithConn.
type Base struct {
	db *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{db: conn}
}

// WithConn returns a Base bound to conn, usually a transaction handle.
func (b Base) WithConn(conn *gorm.DB) Base {
	return Base{db: conn}
}

// DB returns the connection bound to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Create inserts value. A unique violation becomes a Conflict naming the
// entity, anything else a Dependency error.
func (b Base) Create(ctx context.Context, value any, entity, id string) error {
	if err := b.DB(ctx).Create(value).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "%s %q already exists", entity, id)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create "+entity)
	}
	return nil
}
