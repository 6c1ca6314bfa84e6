package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorCodecRoundTrip(t *testing.T) {
	codec := NewCursorCodec([]byte("secret"))
	c := Cursor{Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 123000, time.UTC), ID: "0190-abc"}

	token := codec.Encode(c)
	got, err := codec.Decode(token)
	require.NoError(t, err)
	assert.True(t, c.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, c.ID, got.ID)
}

func TestCursorCodecRejectsTampering(t *testing.T) {
	codec := NewCursorCodec([]byte("secret"))
	token := codec.Encode(Cursor{Timestamp: time.Now(), ID: "x"})

	_, err := NewCursorCodec([]byte("other")).Decode(token)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = codec.Decode("not-a-cursor")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCursorAfter(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Cursor{Timestamp: ts, ID: "m5"}

	assert.True(t, c.After(&MovementRecord{ID: "m9", Timestamp: ts.Add(-time.Second)}))
	assert.True(t, c.After(&MovementRecord{ID: "m4", Timestamp: ts}))
	assert.False(t, c.After(&MovementRecord{ID: "m5", Timestamp: ts}))
	assert.False(t, c.After(&MovementRecord{ID: "m1", Timestamp: ts.Add(time.Second)}))
}
