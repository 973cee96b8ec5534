package synth

import (
	"bytes"
	"encoding/json"
)

// TimestampKey is the reserved record key holding the generation timestamp
const TimestampKey = "generated_at"

// TimestampLayout renders generation timestamps with microsecond precision
// and an explicit UTC offset
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Record is an ordered mapping from field name to generated value. The
// timestamp key comes first, followed by fields in schema order. A nil value
// means the field was generated as null. Records are immutable once returned
// by the synthesizer.
type Record struct {
	keys   []string
	values map[string]interface{}
}

func newRecord(capacity int) Record {
	return Record{
		keys:   make([]string, 0, capacity),
		values: make(map[string]interface{}, capacity),
	}
}

func (r *Record) set(key string, value interface{}) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the field names in insertion order
func (r Record) Keys() []string {
	return r.keys
}

// Get returns the value for a field and whether the field exists
func (r Record) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of fields including the timestamp key
func (r Record) Len() int {
	return len(r.keys)
}

// MarshalJSON renders the record as a JSON object preserving field order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		value, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
