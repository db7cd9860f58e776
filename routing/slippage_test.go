package routing

import (
	"testing"

	"github.com/zeebo/assert"
)

func TestCalculateMinOutput(t *testing.T) {
	out, err := CalculateMinOutput("10000", 100)
	assert.NoError(t, err)
	assert.Equal(t, "9900", out)

	out, err = CalculateMinOutput("10000", 0)
	assert.NoError(t, err)
	assert.Equal(t, "10000", out)

	out, err = CalculateMinOutput("123.45", 50)
	assert.NoError(t, err)
	assert.Equal(t, "122.83275", out)

	_, err = CalculateMinOutput("not-a-number", 100)
	assert.Error(t, err)

	_, err = CalculateMinOutput("10000", 10001)
	assert.Error(t, err)
}

func TestSlippageToBps(t *testing.T) {
	assert.Equal(t, uint32(50), SlippageToBps(0.005))
	assert.Equal(t, uint32(100), SlippageToBps(0.01))
	assert.Equal(t, uint32(0), SlippageToBps(-1))
	assert.Equal(t, uint32(10000), SlippageToBps(2))
}
