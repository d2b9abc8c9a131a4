package core

import (
	"encoding/json"
	"time"
)

// EpochMillis is a point in time carried on the wire as milliseconds since the Unix epoch
type EpochMillis int64

// NewEpochMillis creates an EpochMillis from time.Time
func NewEpochMillis(t time.Time) EpochMillis {
	return EpochMillis(t.UnixMilli())
}

// Time returns the underlying time.Time in UTC
func (t EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

// IsZero checks if the timestamp is unset
func (t EpochMillis) IsZero() bool {
	return t == 0
}

// JSON marshaling for EpochMillis
func (t EpochMillis) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(t))
}

func (t *EpochMillis) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		var f float64
		if ferr := json.Unmarshal(data, &f); ferr != nil {
			return err
		}
		ms = int64(f)
	}
	*t = EpochMillis(ms)
	return nil
}

// String representation
func (t EpochMillis) String() string { return t.Time().Format(time.RFC3339) }
