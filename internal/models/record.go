// Package models defines data structures and domain types.
package models

import (
	"bytes"
	"encoding/json"

	"github.com/guregu/null/v5"
)

// Entry is a single metric key and its optional value.
type Entry struct {
	Key   string
	Value null.Float
}

// Metrics is an immutable, insertion-ordered mapping from metric key to an
// optional number. A key is present even when its value is absent.
type Metrics struct {
	keys   []string
	values map[string]null.Float
}

// NewMetrics builds a Metrics value from entries. A repeated key keeps its
// first position and its last value.
func NewMetrics(entries ...Entry) Metrics {
	m := Metrics{
		keys:   make([]string, 0, len(entries)),
		values: make(map[string]null.Float, len(entries)),
	}
	for _, e := range entries {
		if _, ok := m.values[e.Key]; !ok {
			m.keys = append(m.keys, e.Key)
		}
		m.values[e.Key] = e.Value
	}
	return m
}

// Keys returns the metric keys in record order.
func (m Metrics) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Has reports whether key is present, regardless of its value.
func (m Metrics) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Value returns the value for key, absent when the key is missing or null.
func (m Metrics) Value(key string) null.Float {
	return m.values[key]
}

// Len returns the number of keys.
func (m Metrics) Len() int {
	return len(m.keys)
}

// MarshalJSON writes the metrics as a JSON object preserving key order.
func (m Metrics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DayRecord holds all metric values for one simulated day of one scenario.
type DayRecord struct {
	Day     int
	Metrics Metrics
}

// Series extracts the values of key across records, absent where missing.
func Series(records []DayRecord, key string) []null.Float {
	out := make([]null.Float, len(records))
	for i, rec := range records {
		out[i] = rec.Metrics.Value(key)
	}
	return out
}

// Labels returns the day numbers of records in order.
func Labels(records []DayRecord) []int {
	out := make([]int, len(records))
	for i, rec := range records {
		out[i] = rec.Day
	}
	return out
}
