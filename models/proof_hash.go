package models

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ProofHash is a 32-byte digest of the submitted proof, hex-encoded at rest.
// The all-zero value is the invalid sentinel and is rejected on submission.
type ProofHash [32]byte

// ParseProofHash decodes a 64-character hex string.
func ParseProofHash(s string) (ProofHash, error) {
	var h ProofHash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid proof hash: %w", err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("invalid proof hash: got %d bytes, want %d", len(raw), len(h))
	}
	copy(h[:], raw)
	return h, nil
}

func (h ProofHash) IsZero() bool {
	return h == ProofHash{}
}

func (h ProofHash) String() string { return hex.EncodeToString(h[:]) }

func (ProofHash) GormDataType() string { return "char(64)" }

func (h ProofHash) Value() (driver.Value, error) {
	return h.String(), nil
}

func (h *ProofHash) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ProofHash", src)
	}
	parsed, err := ParseProofHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (h ProofHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *ProofHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseProofHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
