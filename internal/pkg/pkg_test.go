package pkg

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionID(t *testing.T) {
	first, err := GenerateSessionID()
	require.NoError(t, err)

	second, err := GenerateSessionID()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, IsValidID(first))
	assert.False(t, IsValidID("not-an-id"))
}

func TestPick(t *testing.T) {
	t.Run("Empty slice yields zero value", func(t *testing.T) {
		assert.Equal(t, "", Pick(DefaultRand(), []string{}))
	})

	t.Run("Always returns an element of the slice", func(t *testing.T) {
		rnd := rand.New(rand.NewPCG(1, 2))
		items := []int{3, 5, 7}

		for range 50 {
			assert.Contains(t, items, Pick(rnd, items))
		}
	})
}
