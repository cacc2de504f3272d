package format

import (
	"bytes"
	"context"
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/kpumuk/sol-weaver/internal/syntax"
)

// Document formats a full syntax tree.
func Document(ctx context.Context, tree *syntax.Tree, opts Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	normOpts, policy, diags, err := prepareFormatting(ctx, tree, opts)
	if err != nil {
		return Result{Diagnostics: diags}, err
	}

	work := tree
	if policy.needsNormalization() {
		work, err = syntax.Parse(ctx, policy.Body, syntax.ParseOptions{URI: tree.URI})
		if err != nil {
			return Result{Diagnostics: diags}, errors.Errorf("parse normalized source: %w", err)
		}
		if work.HasErrors() {
			return Result{Diagnostics: diags}, unsafeFormattingErr(tree.URI, UnsafeReasonSyntaxErrors, "normalized source does not parse", work.Diagnostics)
		}
	}

	out, inlineDiags, err := formatTree(ctx, work, normOpts)
	diags = append(diags, inlineDiags...)
	if err != nil {
		return Result{Diagnostics: diags}, err
	}
	if err := verifyOutput(ctx, tree.URI, out); err != nil {
		return Result{Diagnostics: diags}, err
	}

	final := policy.apply(out)
	return Result{
		Output:      final,
		Changed:     !bytes.Equal(final, tree.Source),
		Diagnostics: diags,
	}, nil
}

// Source parses and formats source bytes in one step.
func Source(ctx context.Context, src []byte, uri string, opts Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	tree, err := syntax.Parse(ctx, src, syntax.ParseOptions{URI: uri})
	if err != nil {
		return Result{}, err
	}
	return Document(ctx, tree, opts)
}

// Write formats tree into w. Nothing is written when formatting fails.
func Write(ctx context.Context, w io.Writer, tree *syntax.Tree, opts Options) error {
	res, err := Document(ctx, tree, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(res.Output); err != nil {
		return errors.WithStack(&IOError{Err: err})
	}
	return nil
}

func formatTree(ctx context.Context, tree *syntax.Tree, opts Options) ([]byte, []syntax.Diagnostic, error) {
	log := zerolog.Ctx(ctx).With().Str("uri", tree.URI).Logger()
	f, diags := newFormatter(tree, opts, log)
	out, err := f.format()
	if err != nil {
		log.Debug().Err(err).Msg("formatting failed")
		return nil, diags, err
	}
	return []byte(out), diags, nil
}

// verifyOutput refuses output that no longer parses.
func verifyOutput(ctx context.Context, uri string, out []byte) error {
	check, err := syntax.Parse(ctx, out, syntax.ParseOptions{URI: uri})
	if err != nil {
		return errors.Errorf("parse formatted output: %w", err)
	}
	if check.HasErrors() {
		return unsafeFormattingErr(uri, UnsafeReasonInternalError, "formatted output does not parse", check.Diagnostics)
	}
	return nil
}

func prepareFormatting(ctx context.Context, tree *syntax.Tree, opts Options) (Options, SourcePolicy, []syntax.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return Options{}, SourcePolicy{}, nil, errors.WithStack(err)
	}
	if tree == nil {
		return Options{}, SourcePolicy{}, nil, errors.New("nil syntax tree")
	}

	normOpts, err := normalizeOptions(opts)
	if err != nil {
		return Options{}, SourcePolicy{}, nil, err
	}

	diags := append([]syntax.Diagnostic(nil), tree.Diagnostics...)
	policy, policyDiags := analyzeSourcePolicy(tree.Source)
	diags = append(diags, policyDiags...)

	switch {
	case !policy.ValidUTF8:
		return normOpts, policy, diags, unsafeFormattingErr(tree.URI, UnsafeReasonInvalidUTF8, "input contains invalid UTF-8 bytes", nil)
	case tree.Unit == nil:
		return normOpts, policy, diags, unsafeFormattingErr(tree.URI, UnsafeReasonSyntaxErrors, "syntax tree root is missing", nil)
	case tree.HasErrors():
		return normOpts, policy, diags, unsafeFormattingErr(tree.URI, UnsafeReasonSyntaxErrors, "unsafe lexer/parser diagnostics present", tree.Diagnostics)
	default:
		return normOpts, policy, diags, nil
	}
}

func unsafeFormattingErr(uri string, reason UnsafeReason, msg string, diags []syntax.Diagnostic) error {
	return errors.WithStack(&ErrUnsafeToFormat{
		Reason:      reason,
		Message:     msg,
		URI:         uri,
		Diagnostics: diags,
	})
}
