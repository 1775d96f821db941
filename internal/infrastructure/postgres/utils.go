package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Caisse-api/internal/domain"
)

// Códigos SQLSTATE que el adaptador distingue.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
	codeNumericOutOfRange   = "22003"
)

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if pgErr := pgError(err); pgErr != nil {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	if pgErr := pgError(err); pgErr != nil {
		return pgErr.Code == codeForeignKeyViolation
	}
	return false
}

func violatesConstraint(err error, name string) bool {
	if pgErr := pgError(err); pgErr != nil {
		return pgErr.ConstraintName == name
	}
	return false
}

// dbError envuelve un fallo de almacenamiento: las violaciones de CHECK llegan como ErrConflict,
// los valores que la columna no admite como ErrInvalidInput y el resto (timeouts de bloqueo,
// cancelaciones, conexión) como ErrDatabase.
func dbError(op string, err error) error {
	if pgErr := pgError(err); pgErr != nil {
		switch pgErr.Code {
		case codeCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, pgErr.ConstraintName)
		case codeInvalidText, codeNumericOutOfRange:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrDatabase, err)
}

// isUUID indica si id puede compararse con una columna UUID. Un id mal formado
// no existe en la tabla y no debe llegar al servidor.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// where arma cláusulas AND con placeholders numerados ($1, $2...).
type where struct {
	clauses []string
	args    []any
}

// add agrega una condición; cond lleva un %d donde va el número del placeholder.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(cond, len(w.args)))
}

// never agrega una condición que no cumple ninguna fila.
func (w *where) never() {
	w.clauses = append(w.clauses, "FALSE")
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page agrega LIMIT/OFFSET al final de los argumentos.
func (w *where) page(limit, offset int) string {
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

// rowScanner cubre pgx.Row y pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
