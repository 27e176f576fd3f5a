package sqldb

import (
	"fmt"
	"time"
)

// nullTime scans TIMESTAMPTZ values as well as unix seconds.
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (t *nullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
	case int64:
		t.Time, t.Valid = time.Unix(v, 0).UTC(), true
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
	return nil
}

func (t nullTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
