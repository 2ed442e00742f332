package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories need, so the
// same repository code runs inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLStore implements Store on top of a MySQL connection pool.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore wraps an open pool. It panics on nil.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	if db == nil {
		panic("nil *sql.DB passed to NewMySQLStore")
	}
	return &MySQLStore{db: db}
}

// InTx runs fn in a READ COMMITTED transaction. Consistency of the
// count-then-insert rules comes from the row locks taken by the
// *ForUpdate reads, and READ COMMITTED makes every count after a lock see
// the rows committed by the previous lock holder.
func (s *MySQLStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(newSQLTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", translate(err))
	}
	committed = true
	return nil
}

// View runs fn directly against the pool.
func (s *MySQLStore) View(_ context.Context, fn func(tx Tx) error) error {
	return fn(newSQLTx(s.db))
}

type sqlTx struct {
	users       *UserRepo
	tokens      *TokenRepo
	members     *MemberRepo
	schedules   *ScheduleRepo
	enrollments *EnrollmentRepo
	attendance  *AttendanceRepo
	skills      *SkillRepo
	messages    *MessageRepo
	payments    *PaymentRepo
}

func newSQLTx(q DBTX) *sqlTx {
	return &sqlTx{
		users:       NewUserRepo(q),
		tokens:      NewTokenRepo(q),
		members:     NewMemberRepo(q),
		schedules:   NewScheduleRepo(q),
		enrollments: NewEnrollmentRepo(q),
		attendance:  NewAttendanceRepo(q),
		skills:      NewSkillRepo(q),
		messages:    NewMessageRepo(q),
		payments:    NewPaymentRepo(q),
	}
}

func (t *sqlTx) Users() UserStore             { return t.users }
func (t *sqlTx) Tokens() TokenStore           { return t.tokens }
func (t *sqlTx) Members() MemberStore         { return t.members }
func (t *sqlTx) Schedules() ScheduleStore     { return t.schedules }
func (t *sqlTx) Enrollments() EnrollmentStore { return t.enrollments }
func (t *sqlTx) Attendance() AttendanceStore  { return t.attendance }
func (t *sqlTx) Skills() SkillStore           { return t.skills }
func (t *sqlTx) Messages() MessageStore       { return t.messages }
func (t *sqlTx) Payments() PaymentStore       { return t.payments }

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func uint64Ptr(ni sql.NullInt64) *uint64 {
	if !ni.Valid {
		return nil
	}
	v := uint64(ni.Int64)
	return &v
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullUint64(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// insertID reads LastInsertId from an INSERT result.
func insertID(res sql.Result) (uint64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// mustAffect turns a zero-row UPDATE/DELETE into ErrNotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
