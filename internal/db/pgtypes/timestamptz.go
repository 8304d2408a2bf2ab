// Package pgtypes converts between Go values and pgx types used by the store.
package pgtypes

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Timestamptz converts an optional time to a nullable timestamptz
func Timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// TimePtr converts a nullable timestamptz to an optional time
func TimePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
