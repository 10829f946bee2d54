package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate applies a SELECT ... FOR UPDATE row lock so concurrent
// operations against the same quest serialize on its row. sqlite has no FOR
// UPDATE syntax, but serializes writers at the database level, so the clause
// is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// duplicateAs maps a unique-constraint violation onto the domain sentinel.
// An existence check before Create still races with a concurrent insert, so
// the constraint error from the insert itself must carry the same meaning.
// Requires TranslateError on the gorm config.
func duplicateAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}
