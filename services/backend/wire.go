package backendsvc

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/masomo-storefront/core"
)

// The backend is loose with its types: numbers may come as strings, dates as
// full timestamps or plain dates, ids as `_id` or `id`. The wire types below absorb that.

// number decodes JSON numbers & numeric strings; anything else decodes to 0.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = number(f)
	return nil
}

// timestamp decodes RFC 3339 timestamps & YYYY-MM-DD dates; anything else decodes to the zero time.
type timestamp time.Time

func (t *timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	for _, layout := range []string{time.RFC3339Nano, core.DateLayout} {
		if tm, err := time.Parse(layout, s); err == nil {
			*t = timestamp(tm.UTC())
			return nil
		}
	}
	*t = timestamp(time.Time{})
	return nil
}

func (t timestamp) Time() time.Time { return time.Time(t) }

// date decodes into a YYYY-MM-DD date, whatever precision the backend sent.
type date string

func (d *date) UnmarshalJSON(b []byte) error {
	var t timestamp
	_ = t.UnmarshalJSON(b)
	if tm := t.Time(); !tm.IsZero() {
		*d = date(tm.Format(core.DateLayout))
	} else {
		*d = ""
	}
	return nil
}

// ids holds both id spellings of the backend.
type ids struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
}

func (i ids) get() string {
	if i.MongoID != "" {
		return i.MongoID
	}
	return i.ID
}

func isJSONObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

// decodeInto decodes raw into v when it is a JSON object holding key, returning whether it did.
func decodeInto(raw json.RawMessage, key string, v interface{}) bool {
	var obj map[string]json.RawMessage
	if !isJSONObject(raw) || json.Unmarshal(raw, &obj) != nil {
		return false
	}
	inner, ok := obj[key]
	if !ok || !isJSONObject(inner) {
		return false
	}
	return json.Unmarshal(inner, v) == nil
}
