package utils

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var ErrorRecordNotFound = errors.New("record not found")

const mysqlErrDuplicateEntry = 1062

// IsDuplicateKeyErr reports a unique-constraint violation from either dialect.
// Postgres violations arrive as gorm.ErrDuplicatedKey (TranslateError is on);
// raw MySQL errors are matched on their server code.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
		return true
	}
	return false
}
