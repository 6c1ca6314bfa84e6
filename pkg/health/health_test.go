package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunReportsEachCheck(t *testing.T) {
	boom := errors.New("down")
	checks := Checks{
		"db":    func(context.Context) error { return nil },
		"kafka": func(context.Context) error { return boom },
	}

	res := checks.Run(context.Background(), time.Second)
	assert.False(t, res.Healthy)
	assert.NoError(t, res.Errors["db"])
	assert.ErrorIs(t, res.Errors["kafka"], boom)
	assert.Equal(t, []string{"db", "kafka"}, checks.Names())
}

func TestRunBoundsSlowChecks(t *testing.T) {
	checks := Checks{
		"slow": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	res := checks.Run(context.Background(), 10*time.Millisecond)
	assert.False(t, res.Healthy)
	assert.ErrorIs(t, res.Errors["slow"], context.DeadlineExceeded)
}

func TestNoChecksIsHealthy(t *testing.T) {
	assert.True(t, Checks{}.Run(context.Background(), time.Second).Healthy)
}
