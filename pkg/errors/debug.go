package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is a log-friendly breakdown of an error chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGClass      string `json:"pg_class,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGHint       string `json:"pg_hint,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// pgFields is the subset of a server error both drivers expose.
type pgFields struct {
	code, constraint, table, detail, hint, message string
}

func postgresFields(err error) (pgFields, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgFields{pgxErr.Code, pgxErr.ConstraintName, pgxErr.TableName, pgxErr.Detail, pgxErr.Hint, pgxErr.Message}, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pgFields{string(pqErr.Code), pqErr.Constraint, pqErr.Table, pqErr.Detail, pqErr.Hint, pqErr.Message}, true
	}
	return pgFields{}, false
}

// SQLState returns the five-character postgres error code in err's chain, or "".
func SQLState(err error) string {
	fields, _ := postgresFields(err)
	return fields.code
}

// sqlClasses names the SQLSTATE classes the order paths actually hit.
var sqlClasses = map[string]string{
	"08": "connection_exception",
	"22": "data_exception",
	"23": "integrity_constraint_violation",
	"40": "transaction_rollback",
	"53": "insufficient_resources",
	"57": "operator_intervention",
}

func sqlClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	if name, ok := sqlClasses[code[:2]]; ok {
		return name
	}
	return code[:2]
}

// IsUniqueViolation reports a 23505 anywhere in err's chain.
func IsUniqueViolation(err error) bool {
	return SQLState(err) == "23505"
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	if pg, ok := postgresFields(err); ok {
		d.PGCode = pg.code
		d.PGClass = sqlClass(pg.code)
		d.PGConstraint = pg.constraint
		d.PGTable = pg.table
		d.PGDetail = pg.detail
		d.PGHint = pg.hint
		d.PGMessage = pg.message
	}
	return d
}
