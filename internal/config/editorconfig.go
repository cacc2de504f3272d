package config

import (
	"bytes"
	"path/filepath"
	"strconv"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const editorconfigName = ".editorconfig"

type editorWidths struct {
	lineLength int
	tabWidth   int
}

// editorSettings reads the .editorconfig files from the directory of file up
// to the first one marked root. Closer files win.
func editorSettings(fs afero.Fs, file string) (editorWidths, error) {
	var out editorWidths
	dir := filepath.Dir(filepath.Clean(file))
	for {
		p := filepath.Join(dir, editorconfigName)
		data, err := afero.ReadFile(fs, p)
		switch {
		case err == nil:
			ec, err := editorconfig.Parse(bytes.NewReader(data))
			if err != nil {
				return editorWidths{}, errors.Errorf("parse %s: %w", p, err)
			}
			rel, err := filepath.Rel(dir, file)
			if err != nil {
				return editorWidths{}, errors.WithStack(err)
			}
			def, err := ec.GetDefinitionForFilename(filepath.ToSlash(rel))
			if err != nil {
				return editorWidths{}, errors.Errorf("match %s: %w", p, err)
			}
			out.merge(widthsFromRaw(def.Raw))
			if ec.Root {
				return out, nil
			}
		case !isNotExist(fs, p):
			return editorWidths{}, errors.Errorf("read %s: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return out, nil
		}
		dir = parent
	}
}

func isNotExist(fs afero.Fs, p string) bool {
	ok, err := afero.Exists(fs, p)
	return err == nil && !ok
}

// merge fills the widths o has not set yet.
func (o *editorWidths) merge(src editorWidths) {
	if o.lineLength == 0 {
		o.lineLength = src.lineLength
	}
	if o.tabWidth == 0 {
		o.tabWidth = src.tabWidth
	}
}

func widthsFromRaw(raw map[string]string) editorWidths {
	var out editorWidths
	if n, err := strconv.Atoi(raw["max_line_length"]); err == nil && n > 0 {
		out.lineLength = n
	}
	for _, key := range []string{"indent_size", "tab_width"} {
		if n, err := strconv.Atoi(raw[key]); err == nil && n > 0 {
			out.tabWidth = n
			break
		}
	}
	return out
}
