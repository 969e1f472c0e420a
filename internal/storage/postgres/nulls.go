package postgres

import (
	"database/sql"
	"time"
)

// nullTimeToPtr and ptrToNullTime convert between the nullable timestamp
// representations used at the domain boundary (*time.Time) and the wire
// representation scanned out of the driver (sql.NullTime).
func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func ptrToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
