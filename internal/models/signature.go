package models

import (
	"database/sql/driver"
	"strings"
	"time"
)

// SignatureMethod distinguishes typed-name signatures from image uploads.
type SignatureMethod string

const (
	SignatureMethodTyped SignatureMethod = "TYPED"
	SignatureMethodImage SignatureMethod = "IMAGE"
)

// Valid returns true when the method is a supported value.
func (m SignatureMethod) Valid() bool {
	return m == SignatureMethodTyped || m == SignatureMethodImage
}

// Signature is an immutable signing record. SignatureRef carries the typed
// name for TYPED signatures or an opaque image reference for IMAGE ones.
// Replacing a signature always creates a new value.
type Signature struct {
	Method       SignatureMethod `json:"method"`
	SignedBy     string          `json:"signed_by"`
	SignedAt     time.Time       `json:"signed_at"`
	SignatureRef string          `json:"signature_ref"`
}

// Present reports whether the signature holds a usable reference.
func (s *Signature) Present() bool {
	if s == nil {
		return false
	}
	return strings.TrimSpace(s.SignatureRef) != ""
}

// Value implements driver.Valuer for JSONB storage.
func (s *Signature) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return jsonbValue(*s)
}

// Scan implements sql.Scanner.
func (s *Signature) Scan(src interface{}) error {
	return jsonbScan(src, s)
}
