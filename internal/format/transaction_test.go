package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commentedSource = "// one\ncontract A {} // two\n"

func TestTryOnSingleLineCommitsFittingAttempt(t *testing.T) {
	t.Parallel()

	f := newTestFormatter(t, commentedSource, Options{})
	require.Equal(t, 2, f.comments.Len())

	fits, err := f.tryOnSingleLine(func() error {
		f.comments.Pop()
		return f.write("short")
	})
	require.NoError(t, err)
	assert.True(t, fits)
	assert.Equal(t, "short", f.buf().String())
	assert.Equal(t, 1, f.comments.Len())
}

func TestTryOnSingleLineDiscardsFailedAttempt(t *testing.T) {
	t.Parallel()

	tests := map[string]func(f *formatter) error{
		"line break": func(f *formatter) error {
			f.comments.Pop()
			return f.write("a\nb")
		},
		"too wide": func(f *formatter) error {
			f.comments.Pop()
			return f.write("0123456789abcdef")
		},
	}

	for name, render := range tests {
		render := render
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newTestFormatter(t, commentedSource, Options{LineLength: 10})
			require.NoError(t, f.write("x"))
			before, beforeLen := f.comments.Len(), f.buf().Len()

			fits, err := f.tryOnSingleLine(func() error { return render(f) })
			require.NoError(t, err)
			assert.False(t, fits)
			assert.Equal(t, before, f.comments.Len())
			assert.Equal(t, beforeLen, f.buf().Len())
			assert.Equal(t, "x", f.buf().String())
			assert.Len(t, f.sinks, 1)
		})
	}
}

func TestTryOnSingleLinePropagatesRealErrors(t *testing.T) {
	t.Parallel()

	f := newTestFormatter(t, commentedSource, Options{})
	boom := errors.New("boom")
	fits, err := f.tryOnSingleLine(func() error {
		f.comments.Pop()
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, fits)
	assert.Equal(t, 2, f.comments.Len())
	assert.Len(t, f.sinks, 1)
}

func TestTransactLeavesOutputUntouchedUntilCommit(t *testing.T) {
	t.Parallel()

	f := newTestFormatter(t, commentedSource, Options{})
	require.NoError(t, f.write("a"))

	tx, err := f.transact(func() error {
		f.comments.Pop()
		return f.write("b\nc")
	})
	require.NoError(t, err)
	assert.Equal(t, "b\nc", tx.buffer)
	assert.Equal(t, "a", f.buf().String())
	assert.Equal(t, 2, f.comments.Len())

	require.NoError(t, tx.commit())
	assert.Equal(t, "a\nb\nc", f.buf().String(), "multi-line content starts on a new line")
	assert.Equal(t, 1, f.comments.Len())
}

func TestSimulateToSingleLine(t *testing.T) {
	t.Parallel()

	f := newTestFormatter(t, commentedSource, Options{LineLength: 12})
	out, ok, err := f.simulateToSingleLine(func() error { return f.write("fits") })
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fits", out)

	_, ok, err = f.simulateToSingleLine(func() error { return f.write("much too long") })
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.buf().String())
}

func TestNextCharNeedsSpace(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		written string
		next    rune
		bracket bool
		want    bool
	}{
		"line start":            {written: "", next: 'a', want: false},
		"words":                 {written: "a", next: 'b', want: true},
		"after open paren":      {written: "(", next: 'a', want: false},
		"after dot":             {written: "a.", next: 'b', want: false},
		"comment after paren":   {written: "(", next: '/', want: true},
		"close paren":           {written: "a", next: ')', want: false},
		"comma":                 {written: "a", next: ',', want: false},
		"semicolon":             {written: "a", next: ';', want: false},
		"brace content":         {written: "{", next: 'a', want: false},
		"brace content spaced":  {written: "{", next: 'a', bracket: true, want: true},
		"nested brace":          {written: "{", next: '{', bracket: true, want: false},
		"closing brace":         {written: "a", next: '}', want: false},
		"closing brace spaced":  {written: "a", next: '}', bracket: true, want: true},
		"after whitespace":      {written: "a ", next: 'b', want: false},
		"after comment slash":   {written: "/", next: 'a', want: true},
		"open brace after word": {written: "a", next: '{', want: true},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := newTestFormatter(t, "", Options{BracketSpacing: tt.bracket})
			require.NoError(t, f.write(tt.written))
			assert.Equal(t, tt.want, f.nextCharNeedsSpace(tt.next))
		})
	}
}
