package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONBMap is a custom type for PostgreSQL JSONB columns that maps to map[string]interface{}
type JSONBMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONBMap) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	result := make(JSONBMap)
	if len(bytes) > 0 {
		if err := json.Unmarshal(bytes, &result); err != nil {
			return err
		}
	}
	*j = result
	return nil
}

// Uint64List stores unsigned 64-bit values in a JSONB array. BIGINT columns are
// signed and would overflow for values above 2^63-1.
type Uint64List []uint64

// Value implements driver.Valuer interface
func (l Uint64List) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]uint64(l))
}

// Scan implements sql.Scanner interface
func (l *Uint64List) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	var result []uint64
	if len(bytes) > 0 {
		if err := json.Unmarshal(bytes, &result); err != nil {
			return err
		}
	}
	*l = result
	return nil
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSONB source type %T", value)
	}
}

// DrawBatch is the header of one recorded tester run
type DrawBatch struct {
	ID          string    `json:"id" db:"id"`
	Range       string    `json:"range" db:"range_limit"` // decimal, may exceed BIGINT
	Columns     int64     `json:"columns" db:"columns"`
	LineCount   int64     `json:"line_count" db:"line_count"`
	Hash        string    `json:"hash" db:"hash_name"`
	Policy      string    `json:"policy" db:"policy"`
	Fingerprint string    `json:"fingerprint" db:"fingerprint"`
	Metadata    JSONBMap  `json:"metadata" db:"metadata"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DrawLine is the output of one session inside a batch
type DrawLine struct {
	BatchID   string     `json:"batch_id" db:"batch_id"`
	LineNo    int64      `json:"line_no" db:"line_no"`
	SessionID string     `json:"session_id" db:"session_id"`
	Seed      string     `json:"seed" db:"seed"` // hex, revealed seeds only
	Values    Uint64List `json:"values" db:"draw_values"`
}
