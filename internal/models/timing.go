package models

import (
	"database/sql"
	"errors"
	"time"
)

// TimestampLayout is the storage format for start/end timestamps, the text
// sqlite's CURRENT_TIMESTAMP produces.
const TimestampLayout = "2006-01-02 15:04:05"

// Stored values may additionally carry fractional seconds and a zone marker;
// anything outside this family is a parse error.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses a stored timestamp. Malformed values error out; they
// are never coerced into a zero time.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// CompleteTask stamps the task's end date with the current time. Returns true
// when exactly one row changed, false when the id does not exist.
func CompleteTask(db *sql.DB, id int) (bool, error) {
	now := time.Now().UTC().Format(TimestampLayout)
	res, err := db.Exec(`UPDATE proj_tasks SET task_end_date = ? WHERE id = ?`, now, id)
	if err != nil {
		return false, &TimingError{Op: "complete task", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &TimingError{Op: "complete task", Err: err}
	}
	return n == 1, nil
}

// ComputeTimeDelta reads the task's start and end dates, computes end minus
// start in whole seconds and persists it. Returns false with a nil error when
// the task id does not exist. A missing end date or an unparsable timestamp
// is an error, distinct from not-found. The delta is not checked for sign;
// inconsistent clocks produce a negative value.
func ComputeTimeDelta(db *sql.DB, id int) (bool, error) {
	var start string
	var end sql.NullString
	err := db.QueryRow(`SELECT task_start_date, task_end_date FROM proj_tasks WHERE id = ?`, id).Scan(&start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &TimingError{Op: "read task dates", Err: err}
	}
	if !end.Valid {
		return false, &TimingError{Op: "read task dates", Err: ErrEndDateNotSet}
	}
	startAt, err := ParseTimestamp(start)
	if err != nil {
		return false, &TimingError{Op: "parse start date", Err: err}
	}
	endAt, err := ParseTimestamp(end.String)
	if err != nil {
		return false, &TimingError{Op: "parse end date", Err: err}
	}
	delta := int64(endAt.Sub(startAt) / time.Second)
	if _, err := db.Exec(`UPDATE proj_tasks SET time_delta = ? WHERE id = ?`, delta, id); err != nil {
		return false, &TimingError{Op: "store time delta", Err: err}
	}
	return true, nil
}
