package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeAndSatisfies(t *testing.T) {
	t.Run("unconstrained matches everything", func(t *testing.T) {
		r, err := ParseRange("")
		require.NoError(t, err)
		assert.True(t, r.Satisfies(MustParseVersion("0.0.1")))
	})

	t.Run("bare version is shorthand for equality", func(t *testing.T) {
		r, err := ParseRange("1.2.3")
		require.NoError(t, err)
		assert.True(t, r.Satisfies(MustParseVersion("1.2.3")))
		assert.False(t, r.Satisfies(MustParseVersion("1.2.4")))
	})

	t.Run("AND of multiple constraints", func(t *testing.T) {
		r, err := ParseRange(">=1.0,<2.0")
		require.NoError(t, err)
		assert.True(t, r.Satisfies(MustParseVersion("1.5.0")))
		assert.False(t, r.Satisfies(MustParseVersion("2.0.0")))
		assert.False(t, r.Satisfies(MustParseVersion("0.9.0")))
	})

	t.Run("approx matches within level", func(t *testing.T) {
		r, err := ParseRange("~1.2")
		require.NoError(t, err)
		assert.True(t, r.Satisfies(MustParseVersion("1.2.9")))
		assert.False(t, r.Satisfies(MustParseVersion("1.3.0")))
	})
}

func TestRangeExact(t *testing.T) {
	r := MustParseRange("==1.0.0")
	v, ok := r.Exact()
	require.True(t, ok)
	assert.True(t, v.Equal(MustParseVersion("1.0.0")))

	r2 := MustParseRange(">=1.0.0")
	_, ok = r2.Exact()
	assert.False(t, ok)
}
