package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fib-lab/urbansim-core/clock"
)

func TestAdvanceIsExactMultipleOfDT(t *testing.T) {
	c := clock.New(0.1)
	var last float64
	for i := 0; i < 100; i++ {
		last = c.Advance()
	}
	assert.InDelta(t, 10.0, last, 1e-9)
}

func TestResetReturnsToZero(t *testing.T) {
	c := clock.New(0.5)
	c.Advance()
	c.Advance()
	c.Reset()
	assert.Equal(t, 0.0, c.T)
	assert.Equal(t, int64(0), c.Step)
}

func TestStringFormatsHMS(t *testing.T) {
	c := clock.New(1)
	for i := 0; i < 3661; i++ {
		c.Advance()
	}
	assert.Equal(t, "01:01:01", c.String())
}
