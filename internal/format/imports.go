package format

import (
	"strings"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// importGroup is a run of imports not separated by a blank line. It is
// written sorted by path when SortImports is set.
type importGroup struct {
	imports []*syntax.ImportDirective
}

func (g *importGroup) Span() text.Span {
	return g.imports[0].Loc.Cover(g.imports[len(g.imports)-1].Loc)
}

func isImport(n syntax.Node) bool {
	switch n.(type) {
	case *syntax.ImportDirective, *importGroup:
		return true
	}
	return false
}

func importPath(imp *syntax.ImportDirective) string {
	var b strings.Builder
	for _, p := range imp.Path.Parts {
		b.WriteString(p.Value)
	}
	return b.String()
}

// sourceUnitItems returns the top-level items, with adjacent imports
// collected into groups when they are to be sorted.
func (f *formatter) sourceUnitItems(u *syntax.SourceUnit) []syntax.Node {
	items := make([]syntax.Node, 0, len(u.Parts))
	var group []*syntax.ImportDirective
	flush := func() {
		switch len(group) {
		case 0:
		case 1:
			items = append(items, group[0])
		default:
			items = append(items, &importGroup{imports: group})
		}
		group = nil
	}
	for _, part := range u.Parts {
		imp, ok := part.(*syntax.ImportDirective)
		if !ok || !f.opts.SortImports {
			flush()
			items = append(items, part)
			continue
		}
		if n := len(group); n > 0 && f.blankLines(group[n-1].Loc.End, imp.Loc.Start) > 1 {
			flush()
		}
		group = append(group, imp)
	}
	flush()
	return items
}

// visitImportGroup writes the imports of g ordered by path, one per line.
// Each import keeps the comments around it.
func (f *formatter) visitImportGroup(g *importGroup) error {
	last := g.imports[len(g.imports)-1]
	chunks, err := itemsToChunks(f, f.nextLineOrEOF(last.Loc.End), g.imports)
	if err != nil {
		return err
	}
	sorted := reorderChunks(chunks, func(a, b int) int {
		return strings.Compare(importPath(g.imports[a]), importPath(g.imports[b]))
	})
	return f.writeChunksSeparated(sorted, "", true)
}

func (f *formatter) visitImport(imp *syntax.ImportDirective) error {
	pathStart := imp.Path.Loc.Start
	switch {
	case imp.Braces:
		return f.visitImportSymbols(imp)
	case imp.Star || (imp.Alias != nil && imp.Alias.Loc.Start < pathStart):
		_, err := f.grouped(func() error {
			if err := f.writeChunkAt(imp.Loc.Start, "import"); err != nil {
				return err
			}
			if imp.Star {
				if err := f.writeText("*"); err != nil {
					return err
				}
				if err := f.writeChunkSpan(imp.Alias.Loc.Start, imp.Alias.Loc.Start, "as"); err != nil {
					return err
				}
			}
			if err := f.visit(imp.Alias); err != nil {
				return err
			}
			if err := f.writeChunkSpan(imp.Alias.Loc.End, pathStart, "from"); err != nil {
				return err
			}
			if err := f.visit(imp.Path); err != nil {
				return err
			}
			return f.writeSemicolon()
		})
		return err
	}
	_, err := f.grouped(func() error {
		if err := f.writeChunkSpan(imp.Loc.Start, pathStart, "import"); err != nil {
			return err
		}
		if err := f.visit(imp.Path); err != nil {
			return err
		}
		if imp.Alias != nil {
			if err := f.writeChunkSpan(imp.Loc.Start, imp.Alias.Loc.Start, "as"); err != nil {
				return err
			}
			if err := f.visit(imp.Alias); err != nil {
				return err
			}
		}
		return f.writeSemicolon()
	})
	return err
}

// visitImportSymbols writes `import {a, b as c} from "path";`. With
// SortImports the symbols are ordered by their imported name.
func (f *formatter) visitImportSymbols(imp *syntax.ImportDirective) error {
	pathStart := imp.Path.Loc.Start
	writeFrom := func() error {
		_, err := f.grouped(func() error {
			if err := f.writeChunkAt(pathStart, "from"); err != nil {
				return err
			}
			if err := f.visit(imp.Path); err != nil {
				return err
			}
			return f.writeSemicolon()
		})
		return err
	}

	if len(imp.Symbols) == 0 {
		if err := f.writeChunkAt(imp.Loc.Start, "import"); err != nil {
			return err
		}
		if err := f.writeEmptyBrackets(); err != nil {
			return err
		}
		return writeFrom()
	}

	symbolsStart := imp.Symbols[0].Loc.Start
	if err := f.writeChunkSpan(imp.Loc.Start, symbolsStart, "import"); err != nil {
		return err
	}
	err := f.surrounded(
		surrounding("{", symbolsStart, noOffset),
		surrounding("}", noOffset, pathStart),
		func(bool) error {
			chunks, err := f.importSymbolChunks(imp.Symbols)
			if err != nil {
				return err
			}
			quoted, err := f.simulateToString(func() error { return f.visit(imp.Path) })
			if err != nil {
				return err
			}
			multiline, err := f.areChunksSeparatedMultiline("{} } from "+quoted+";", chunks, ",")
			if err != nil {
				return err
			}
			return f.writeChunksSeparated(chunks, ",", multiline)
		},
	)
	if err != nil {
		return err
	}
	return writeFrom()
}

func (f *formatter) importSymbolChunks(symbols []*syntax.ImportSymbol) ([]Chunk, error) {
	chunks := make([]Chunk, 0, len(symbols))
	for i, sym := range symbols {
		next := noOffset
		if i+1 < len(symbols) {
			next = symbols[i+1].Loc.Start
		}
		c, err := f.chunked(sym.Loc.Start, next, func() error {
			_, err := f.grouped(func() error {
				if err := f.visit(sym.Name); err != nil {
					return err
				}
				if sym.Alias == nil {
					return nil
				}
				if err := f.writeChunkSpan(sym.Name.Loc.End, sym.Alias.Loc.Start, "as"); err != nil {
					return err
				}
				return f.visit(sym.Alias)
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	if !f.opts.SortImports {
		return chunks, nil
	}
	return reorderChunks(chunks, func(a, b int) int {
		return strings.Compare(symbols[a].Name.Name, symbols[b].Name.Name)
	}), nil
}
