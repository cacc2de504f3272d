package syntax

// Items returns every source unit part, contract part and statement of unit in
// source order. Enclosing items precede the items nested inside them.
func Items(unit *SourceUnit) []Node {
	if unit == nil {
		return nil
	}
	var out []Node
	for _, part := range unit.Parts {
		out = append(out, part)
		switch part := part.(type) {
		case *ContractDefinition:
			for _, cp := range part.Parts {
				out = append(out, cp)
				if fn, ok := cp.(*FunctionDefinition); ok && fn.Body != nil {
					out = appendStatementItems(out, fn.Body)
				}
			}
		case *FunctionDefinition:
			if part.Body != nil {
				out = appendStatementItems(out, part.Body)
			}
		}
	}
	return out
}

func appendStatementItems(out []Node, stmt Statement) []Node {
	if stmt == nil {
		return out
	}
	out = append(out, stmt)
	switch s := stmt.(type) {
	case *Block:
		for _, inner := range s.Statements {
			out = appendStatementItems(out, inner)
		}
	case *IfStatement:
		out = appendStatementItems(out, s.Then)
		out = appendStatementItems(out, s.Else)
	case *WhileStatement:
		out = appendStatementItems(out, s.Body)
	case *DoWhileStatement:
		out = appendStatementItems(out, s.Body)
	case *ForStatement:
		out = appendStatementItems(out, s.Init)
		out = appendStatementItems(out, s.Body)
	case *TryStatement:
		out = appendStatementItems(out, s.Body)
		for _, c := range s.Catches {
			out = appendStatementItems(out, c.Body)
		}
	case *AssemblyStatement:
		if s.Block != nil {
			for _, inner := range s.Block.Statements {
				out = appendStatementItems(out, inner)
			}
		}
	case *YulBlock:
		for _, inner := range s.Statements {
			out = appendStatementItems(out, inner)
		}
	case *YulIf:
		out = appendStatementItems(out, s.Body)
	case *YulFor:
		out = appendStatementItems(out, s.Body)
	case *YulSwitch:
		for _, c := range s.Cases {
			out = appendStatementItems(out, c.Body)
		}
		if s.Default != nil {
			out = appendStatementItems(out, s.Default.Body)
		}
	case *YulFunctionDefinition:
		out = appendStatementItems(out, s.Body)
	}
	return out
}
