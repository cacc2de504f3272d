package testutil

import (
	"os"
	"path/filepath"
	"sort"

	"gitlab.com/tozd/go/errors"
)

// CorpusFiles returns sorted .sol files under testdata/corpus/<setName>.
func CorpusFiles(setName string) ([]string, error) {
	root, err := RepoRoot()
	if err != nil {
		return nil, err
	}
	setDir := filepath.Join(root, "testdata", "corpus", setName)
	entries, err := os.ReadDir(setDir)
	if err != nil {
		return nil, errors.Errorf("read corpus set %q: %w", setName, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sol" {
			continue
		}
		out = append(out, filepath.Join(setDir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
