package ids

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timestamp decodes either an RFC 3339 string or epoch milliseconds.
type Timestamp struct {
	time.Time
}

func At(t time.Time) Timestamp { return Timestamp{Time: t} }

func FromMillis(ms int64) Timestamp { return Timestamp{Time: time.UnixMilli(ms).UTC()} }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] != '"' {
		ms, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("ids: invalid timestamp %s", string(data))
		}
		*t = FromMillis(int64(ms))
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*t = FromMillis(ms)
		return nil
	}
	// SQL-style timestamps show up from some API deployments.
	if parsed, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	return fmt.Errorf("ids: invalid timestamp %q", raw)
}
