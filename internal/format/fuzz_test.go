package format

import (
	"context"
	"testing"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/testutil"
)

func FuzzDocument(f *testing.F) {
	addFormatSeeds(f)

	f.Fuzz(func(t *testing.T, src []byte) {
		if len(src) > 512*1024 {
			t.Skip()
		}

		tree, err := syntax.Parse(context.Background(), src, syntax.ParseOptions{URI: "fuzz.sol"})
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}

		res, err := Document(context.Background(), tree, Options{})
		if err != nil {
			if !IsErrUnsafeToFormat(err) {
				t.Fatalf("Document unexpected error: %v", err)
			}
			return
		}

		again, err := Source(context.Background(), res.Output, "fuzz.sol", Options{})
		if err != nil {
			t.Fatalf("formatted output rejected: %v\noutput:\n%s", err, res.Output)
		}
		if string(again.Output) != string(res.Output) {
			t.Fatalf("formatting is not idempotent\nfirst:\n%s\nsecond:\n%s", res.Output, again.Output)
		}
	})
}

func addFormatSeeds(f *testing.F) {
	f.Helper()

	for _, s := range [][]byte{
		nil,
		[]byte(""),
		[]byte("pragma solidity ^0.8.0;\ncontract A{uint x;}\n"),
		[]byte("contract C {\n    function f() public {}\n}\n"),
		[]byte("import './y.sol';\n"),
		[]byte("string constant S = 'unterminated\n"), // unsafe refusal expected
		[]byte("/* unterminated block comment"),       // unsafe refusal expected
		[]byte("contract A {\n    // forgefmt: disable-next-line\n    uint   x;\n}\n"),
		{0xff, 0xfe, 0xfd}, // invalid UTF-8 -> unsafe refusal expected
	} {
		f.Add(s)
	}

	if cases, err := testutil.FormatGoldenCases(); err == nil {
		for _, c := range cases {
			f.Add(testutil.ReadFile(f, c.InputPath))
		}
	}
}
