package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
)

// Amount is a signed 128-bit token amount, stored as NUMERIC in the database
// and as a decimal string in JSON. Escrow balances must never go negative at
// rest; callers enforce that before writing.
type Amount struct {
	v big.Int
}

func NewAmount(i int64) Amount {
	var a Amount
	a.v.SetInt64(i)
	return a
}

// ParseAmount parses a base-10 amount string.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if _, ok := a.v.SetString(s, 10); !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	return a, nil
}

func (a Amount) String() string   { return a.v.String() }
func (a Amount) IsPositive() bool { return a.v.Sign() > 0 }
func (a Amount) IsZero() bool     { return a.v.Sign() == 0 }
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }
func (a Amount) Int64() int64     { return a.v.Int64() }

func (a Amount) Add(b Amount) Amount {
	var out Amount
	out.v.Add(&a.v, &b.v)
	return out
}

func (a Amount) Sub(b Amount) Amount {
	var out Amount
	out.v.Sub(&a.v, &b.v)
	return out
}

// GormDataType tells GORM how to store the column.
func (Amount) GormDataType() string { return "numeric(39,0)" }

func (a Amount) Value() (driver.Value, error) {
	return a.v.String(), nil
}

func (a *Amount) Scan(src interface{}) error {
	switch s := src.(type) {
	case nil:
		a.v.SetInt64(0)
		return nil
	case int64:
		a.v.SetInt64(s)
		return nil
	case string:
		if _, ok := a.v.SetString(s, 10); !ok {
			return fmt.Errorf("cannot scan %q into Amount", s)
		}
		return nil
	case []byte:
		if _, ok := a.v.SetString(string(s), 10); !ok {
			return fmt.Errorf("cannot scan %q into Amount", s)
		}
		return nil
	case float64:
		// sqlite hands back NUMERIC as float for small values; beyond 2^53
		// or with a fractional part the conversion would be lossy
		if s != math.Trunc(s) || math.Abs(s) >= 1<<53 {
			return fmt.Errorf("cannot scan %v into Amount without loss", s)
		}
		a.v.SetInt64(int64(s))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// allow bare JSON numbers too
		var n int64
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		a.v.SetInt64(n)
		return nil
	}
	if _, ok := a.v.SetString(s, 10); !ok {
		return fmt.Errorf("invalid amount %q", s)
	}
	return nil
}
