package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		span  Span
		valid bool
	}{
		"valid":                  {span: Span{Start: 0, End: 1}, valid: true},
		"empty valid":            {span: Span{Start: 3, End: 3}, valid: true},
		"negative start invalid": {span: Span{Start: -1, End: 1}, valid: false},
		"negative end invalid":   {span: Span{Start: 0, End: -1}, valid: false},
		"end before start":       {span: Span{Start: 5, End: 4}, valid: false},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.valid, tc.span.IsValid())
			if tc.valid {
				assert.NoError(t, tc.span.Validate())
			} else {
				assert.Error(t, tc.span.Validate())
			}
		})
	}
}

func TestNewSpan(t *testing.T) {
	t.Parallel()

	_, err := NewSpan(2, 1)
	require.Error(t, err)

	s, err := NewSpan(2, 5)
	require.NoError(t, err)
	assert.Equal(t, Span{Start: 2, End: 5}, s)
}

func TestSpanContainsHalfOpen(t *testing.T) {
	t.Parallel()

	s := Span{Start: 2, End: 5}
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(5))
	assert.False(t, s.Contains(1))
	assert.False(t, Span{Start: 7, End: 7}.Contains(7))
}

func TestSpanContainsSpanAndIntersects(t *testing.T) {
	t.Parallel()

	base := Span{Start: 10, End: 20}
	assert.True(t, base.ContainsSpan(Span{Start: 12, End: 18}))
	assert.False(t, base.ContainsSpan(Span{Start: 5, End: 10}))
	assert.False(t, base.Intersects(Span{Start: 5, End: 10}))
	assert.False(t, base.Intersects(Span{Start: 20, End: 25}))
	assert.True(t, base.Intersects(Span{Start: 19, End: 25}))
}

func TestSpanCoverAndSlice(t *testing.T) {
	t.Parallel()

	src := []byte("uint256 x = 1;")
	a := Span{Start: 0, End: 7}
	b := Span{Start: 8, End: 9}

	assert.Equal(t, Span{Start: 0, End: 9}, a.Cover(b))
	assert.Equal(t, Span{Start: 0, End: 9}, b.Cover(a))
	assert.Equal(t, "uint256", string(a.Slice(src)))
	assert.Equal(t, "1;", string(Span{Start: 12, End: 40}.Slice(src)))
	assert.Equal(t, Span{Start: 3, End: 9}, b.WithStart(3))
	assert.Equal(t, Span{Start: 0, End: 2}, a.WithEnd(2))
}
