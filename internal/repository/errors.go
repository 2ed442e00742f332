// Package repository is the record store: the persistence ports used by the
// service layer and their MySQL implementation. Store-level failures are
// reported through the sentinels below so that callers never need to look
// at driver errors.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound is returned when a row addressed by key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate signals a unique key violation, e.g. a second account
	// with the same email or a second active enrollment for the same pair.
	ErrDuplicate = errors.New("duplicate")

	// ErrLinkedData is returned when a delete or insert trips a foreign
	// key: the row is still referenced, or it references a missing row.
	ErrLinkedData = errors.New("linked data")

	// ErrConflict means the database gave up on the transaction because of
	// lock contention (lock wait timeout or deadlock). Nothing was written.
	ErrConflict = errors.New("conflicting write")
)

// MySQL server error numbers translated by translate.
const (
	mysqlDupEntry        = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// translate maps driver errors onto the package sentinels. Anything it does
// not recognise is returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry:
			return fmt.Errorf("%w: %s", ErrDuplicate, me.Message)
		case mysqlRowIsReferenced, mysqlNoReferencedRow:
			return fmt.Errorf("%w: %s", ErrLinkedData, me.Message)
		case mysqlLockWaitTimeout, mysqlDeadlock:
			return fmt.Errorf("%w: %s", ErrConflict, me.Message)
		}
	}
	return err
}
