package txdb

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Conn returns a gorm session bound to ctx. When tx is not nil the session
// runs on that transaction, so gorm repositories can take part in a
// transaction opened by the service with database/sql.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	g := db.WithContext(ctx)
	if tx != nil {
		g.Statement.ConnPool = tx
	}
	return g
}
