package format_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpumuk/sol-weaver/internal/format"
	"github.com/kpumuk/sol-weaver/internal/testutil"
)

func TestFormattedOutputParsesWithSolc(t *testing.T) {
	t.Parallel()

	oracle := testutil.RequireSolcOracle(t)
	cases, err := testutil.FormatGoldenCases()
	require.NoError(t, err)

	for _, tc := range cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			input := testutil.ReadFile(t, tc.InputPath)
			if bytes.Contains(input, []byte("import ")) {
				t.Skip("imported files are not part of the fixture")
			}
			res, err := format.Source(context.Background(), input, filepath.Base(tc.InputPath), goldenOptions(t, tc))
			require.NoError(t, err)

			outPath := filepath.Join(t.TempDir(), filepath.Base(tc.InputPath))
			require.NoError(t, os.WriteFile(outPath, res.Output, 0o600))
			require.NoError(t, oracle.ValidateFile(context.Background(), outPath), "output:\n%s", res.Output)
		})
	}
}
