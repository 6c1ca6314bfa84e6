package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestWithContextAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("stock-ledger-test", &buf)
	SetLevel("debug")
	t.Cleanup(func() { SetLevel("info") })

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	Info(ctx).Str("item_id", "a").Msg("movement applied")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stock-ledger-test", entry["service"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, "a", entry["item_id"])
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetLevel("bogus")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
