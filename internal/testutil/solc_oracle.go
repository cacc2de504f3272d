package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/tozd/go/errors"
)

const (
	envSolcOracleBin           = "SOLC_ORACLE_BIN"
	envSolcOracleVersionPrefix = "SOLC_ORACLE_VERSION_PREFIX"
	envSolcOracleRequired      = "SOLC_ORACLE_REQUIRED"
)

// SolcOracle runs the Solidity compiler's parser as a syntax compatibility oracle.
type SolcOracle struct {
	Bin           string
	VersionPrefix string
	Required      bool
}

// SolcOracleFromEnv builds oracle configuration from environment variables.
func SolcOracleFromEnv() SolcOracle {
	bin := strings.TrimSpace(os.Getenv(envSolcOracleBin))
	if bin == "" {
		bin = "solc"
	}
	required := strings.TrimSpace(os.Getenv(envSolcOracleRequired))
	return SolcOracle{
		Bin:           bin,
		VersionPrefix: strings.TrimSpace(os.Getenv(envSolcOracleVersionPrefix)),
		Required:      required == "1" || strings.EqualFold(required, "true"),
	}
}

// RequireSolcOracle returns a configured oracle or skips the test when unavailable.
func RequireSolcOracle(t testing.TB) SolcOracle {
	t.Helper()

	oracle := SolcOracleFromEnv()
	if err := oracle.CheckAvailability(context.Background()); err != nil {
		if oracle.Required {
			t.Fatalf("solc oracle unavailable: %v", err)
		}
		t.Skipf("skipping solc oracle compatibility test: %v", err)
	}
	return oracle
}

// CheckAvailability verifies the binary exists and matches the configured version prefix (if any).
func (o SolcOracle) CheckAvailability(ctx context.Context) error {
	if _, err := exec.LookPath(o.Bin); err != nil {
		return errors.Errorf("look up %q: %w", o.Bin, err)
	}
	if o.VersionPrefix == "" {
		return nil
	}

	version, err := o.Version(ctx)
	if err != nil {
		return err
	}
	if !strings.Contains(version, o.VersionPrefix) {
		return errors.Errorf("oracle version %q does not match required prefix %q", version, o.VersionPrefix)
	}
	return nil
}

// Version returns `solc --version` output.
func (o SolcOracle) Version(ctx context.Context) (string, error) {
	//nolint:gosec // Test helper intentionally executes a configured local solc binary.
	cmd := exec.CommandContext(ctx, o.Bin, "--version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.Errorf("run %s --version: %w (%s)", o.Bin, err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// ValidateFile parses path with solc and returns an error when it is rejected.
func (o SolcOracle) ValidateFile(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("empty path")
	}

	//nolint:gosec // Test helper intentionally executes a configured local solc binary on a temporary fixture path.
	cmd := exec.CommandContext(ctx, o.Bin, "--stop-after", "parsing", filepath.Clean(path))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Errorf("solc oracle validation failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}
