package format

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// transaction is a rendering attempt that has not reached the output yet.
// The active sink and the comment store are untouched until commit.
type transaction struct {
	f      *formatter
	buffer string
	// before and comments are the store states around the attempt.
	before   commentSnapshot
	comments commentSnapshot
}

// transact renders into a temporary buffer and rewinds the comment store, so
// the attempt can be inspected and then committed or dropped.
func (f *formatter) transact(render func() error) (*transaction, error) {
	before := f.comments.snapshot()
	out, err := f.withTempBuf(render)
	after := f.comments.snapshot()
	f.comments.restore(before)
	if err != nil {
		return nil, err
	}
	return &transaction{f: f, buffer: out, before: before, comments: after}, nil
}

func (tx *transaction) commit() error {
	tx.f.comments.restore(tx.comments)
	return tx.f.writeText(tx.buffer)
}

// rollback drops the attempt and puts the comment store back where it was
// before the attempt started.
func (tx *transaction) rollback() {
	tx.f.comments.restore(tx.before)
	tx.buffer = ""
}

// simulateToString renders without committing anything.
func (f *formatter) simulateToString(render func() error) (string, error) {
	tx, err := f.transact(render)
	if err != nil {
		return "", err
	}
	return tx.buffer, nil
}

// simulateToSingleLine renders restricted to one line and reports whether the
// result fits on the current line.
func (f *formatter) simulateToSingleLine(render func() error) (string, bool, error) {
	tx, fits, err := f.transactSingleLine(render)
	if err != nil || !fits {
		return "", false, err
	}
	return tx.buffer, true, nil
}

// tryOnSingleLine commits the single-line rendering if it fits.
func (f *formatter) tryOnSingleLine(render func() error) (bool, error) {
	tx, fits, err := f.transactSingleLine(render)
	if err != nil || !fits {
		return false, err
	}
	return true, tx.commit()
}

func (f *formatter) transactSingleLine(render func() error) (*transaction, bool, error) {
	completed := false
	tx, err := f.transact(func() error {
		f.buf().restrictToSingleLine(true)
		switch err := render(); {
		case err == nil:
			completed = true
		case errors.Is(err, errSingleLineBudget):
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !completed || strings.Contains(tx.buffer, "\n") || !f.willItFit(tx.buffer) {
		f.log.Trace().Str("attempt", tx.buffer).Msg("single line attempt discarded")
		return tx, false, nil
	}
	return tx, true, nil
}
