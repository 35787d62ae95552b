package valueobjects_test

import (
	"testing"

	"wikigraph-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
)

func TestComputeWeight_Bounds(t *testing.T) {
	assert.Equal(t, valueobjects.MinNodeWeight, valueobjects.ComputeWeight(0, 0))
	assert.Equal(t, valueobjects.MaxNodeWeight, valueobjects.ComputeWeight(1000000, 5000))
	assert.Equal(t, valueobjects.MinNodeWeight, valueobjects.ComputeWeight(-10, -5))
}

func TestComputeWeight_GrowsWithContent(t *testing.T) {
	short := valueobjects.ComputeWeight(100, 0)
	medium := valueobjects.ComputeWeight(1500, 0)
	long := valueobjects.ComputeWeight(8000, 0)

	assert.Greater(t, medium, short)
	assert.Greater(t, long, medium)
}

func TestComputeWeight_LinkBonus(t *testing.T) {
	// No bonus at ten links or fewer
	assert.Equal(t,
		valueobjects.ComputeWeight(1000, 0),
		valueobjects.ComputeWeight(1000, 10),
	)

	// Bonus kicks in above ten
	assert.Greater(t,
		valueobjects.ComputeWeight(1000, 30),
		valueobjects.ComputeWeight(1000, 10),
	)

	// Logarithmic tail past fifty
	assert.Greater(t,
		valueobjects.ComputeWeight(1000, 200),
		valueobjects.ComputeWeight(1000, 50),
	)
}

func TestComputeWeight_Deterministic(t *testing.T) {
	first := valueobjects.ComputeWeight(3456, 23)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, valueobjects.ComputeWeight(3456, 23))
	}
}

func TestColorSeed_StablePerID(t *testing.T) {
	seed := valueobjects.ColorSeed("Albert Einstein")

	assert.Equal(t, seed, valueobjects.ColorSeed("Albert Einstein"))
	assert.NotEqual(t, seed, valueobjects.ColorSeed("Quantum mechanics"))
}
