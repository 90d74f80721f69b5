package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a nested keyed record with string-addressable fields.
// It renders to and parses from JSON text.
type Record struct {
	fields map[string]interface{}
}

func NewRecord() *Record {
	return &Record{
		fields: make(map[string]interface{}),
	}
}

// ParseRecord parses the text form produced by Record.String.
func ParseRecord(data string) (*Record, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(data)))
	decoder.UseNumber()

	fields := make(map[string]interface{})
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode record: %v", err)
	}

	return &Record{fields: fields}, nil
}

// AddField sets a field. Supported values are integers, floats, strings, bools and records.
func (r *Record) AddField(key string, value interface{}) {
	r.fields[key] = value
}

func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

func (r *Record) GetInt64(key string) (int64, error) {
	value, ok := r.fields[key]
	if !ok {
		return 0, fmt.Errorf("missing field %s", key)
	}
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("field %s is not a number: %v", key, err)
		}
		return int64(f), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	}
	return 0, fmt.Errorf("field %s is not a number", key)
}

func (r *Record) GetInt(key string) (int, error) {
	i, err := r.GetInt64(key)
	return int(i), err
}

func (r *Record) GetFloat(key string) (float64, error) {
	value, ok := r.fields[key]
	if !ok {
		return 0, fmt.Errorf("missing field %s", key)
	}
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("field %s is not a number: %v", key, err)
		}
		return f, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("field %s is not a number", key)
}

func (r *Record) GetString(key string) (string, error) {
	value, ok := r.fields[key]
	if !ok {
		return "", fmt.Errorf("missing field %s", key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %s is not a string", key)
	}
	return s, nil
}

func (r *Record) GetBool(key string) (bool, error) {
	value, ok := r.fields[key]
	if !ok {
		return false, fmt.Errorf("missing field %s", key)
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("field %s is not a bool", key)
	}
	return b, nil
}

func (r *Record) GetRecord(key string) (*Record, error) {
	value, ok := r.fields[key]
	if !ok {
		return nil, fmt.Errorf("missing field %s", key)
	}
	switch v := value.(type) {
	case *Record:
		return v, nil
	case map[string]interface{}:
		return &Record{fields: v}, nil
	}
	return nil, fmt.Errorf("field %s is not a record", key)
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields)
}

// String renders the record as compact JSON text.
func (r *Record) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		// only reachable with unsupported field values
		return "{}"
	}
	return string(b)
}
