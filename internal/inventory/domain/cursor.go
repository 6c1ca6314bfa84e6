package domain

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"time"

	"golang.org/x/crypto/blake2b"
)

const cursorTagSize = 8

// Cursor is the position of the last record of a ledger page
type Cursor struct {
	Timestamp time.Time
	ID        string
}

// After reports whether m sorts strictly after c in ledger order
// (timestamp descending, id descending).
func (c Cursor) After(m *MovementRecord) bool {
	if m.Timestamp.Equal(c.Timestamp) {
		return m.ID < c.ID
	}
	return m.Timestamp.Before(c.Timestamp)
}

// CursorOf returns the cursor positioned at m
func CursorOf(m *MovementRecord) Cursor {
	return Cursor{Timestamp: m.Timestamp, ID: m.ID}
}

// CursorCodec turns cursors into opaque tokens and back
type CursorCodec struct {
	key []byte
}

// NewCursorCodec creates a codec. The key tags tokens so tampered ones are rejected.
func NewCursorCodec(key []byte) *CursorCodec {
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	return &CursorCodec{key: key}
}

// Encode renders c as an opaque token
func (cc *CursorCodec) Encode(c Cursor) string {
	body := make([]byte, 8, 8+len(c.ID)+cursorTagSize)
	binary.BigEndian.PutUint64(body, uint64(c.Timestamp.UnixNano()))
	body = append(body, c.ID...)
	body = append(body, cc.tag(body)...)
	return base64.RawURLEncoding.EncodeToString(body)
}

// Decode parses a token produced by Encode
func (cc *CursorCodec) Decode(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < 8+cursorTagSize {
		return Cursor{}, NewValidationError("decode cursor", "malformed cursor")
	}
	body, tag := raw[:len(raw)-cursorTagSize], raw[len(raw)-cursorTagSize:]
	if subtle.ConstantTimeCompare(tag, cc.tag(body)) != 1 {
		return Cursor{}, NewValidationError("decode cursor", "invalid cursor")
	}
	nanos := int64(binary.BigEndian.Uint64(body[:8]))
	return Cursor{
		Timestamp: time.Unix(0, nanos).UTC(),
		ID:        string(body[8:]),
	}, nil
}

func (cc *CursorCodec) tag(body []byte) []byte {
	h, err := blake2b.New(cursorTagSize, cc.key)
	if err != nil {
		// only possible with an oversized key, which NewCursorCodec truncates
		panic(err)
	}
	h.Write(body)
	return h.Sum(nil)
}
