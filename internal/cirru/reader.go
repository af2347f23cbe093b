package cirru

import (
	"fmt"
	"strings"
)

// Parse reads a whole Cirru source (a compact.cirru file's `:code` value is
// serialized from this too) into its top-level list of expressions: one
// expression per top-level (zero-indented) line, each carrying its nested
// lines as trailing children per Cirru's indentation-folding rule.
//
// This is a from-scratch recursive-descent indentation parser: no Cirru
// parser exists anywhere in the reference pack (DESIGN.md "Dropped/absent
// dependencies"), and the real `cirru-parser` crate that the original Rust
// source depends on is an external crate not vendored in original_source/.
// Grammar grounded on original_source/src/data/cirru.rs's leaf handling and
// on spec.md §4.3/§6 ("indentation-based S-expressions").
func Parse(src string) ([]Node, error) {
	lines := splitLines(src)
	p := &parser{lines: lines}
	return p.parseTop()
}

type rawLine struct {
	indent int
	tokens []string
	lineNo int
}

func splitLines(src string) []rawLine {
	raw := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	out := make([]rawLine, 0, len(raw))
	for i, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := 0
		for indent < len(l) && l[indent] == ' ' {
			indent++
		}
		if indent%2 != 0 {
			// odd indentation: treat as rounded down rather than erroring, to
			// tolerate hand-edited snapshots with stray trailing spaces.
			indent--
		}
		toks, err := tokenize(l[indent:])
		if err != nil {
			continue
		}
		if len(toks) == 0 {
			continue
		}
		out = append(out, rawLine{indent: indent / 2, tokens: toks, lineNo: i + 1})
	}
	return out
}

type parser struct {
	lines []rawLine
	pos   int
}

func (p *parser) parseTop() ([]Node, error) {
	var out []Node
	for p.pos < len(p.lines) {
		n, err := p.parseLine(0)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// parseLine consumes the line at p.pos (which must be at exactly `indent`)
// plus every following line more indented than `indent`, folding each into
// the result as a trailing child — Cirru's defining indentation rule.
func (p *parser) parseLine(indent int) (Node, error) {
	line := p.lines[p.pos]
	if line.indent != indent {
		return Node{}, fmt.Errorf("cirru: line %d: expected indent %d, got %d", line.lineNo, indent, line.indent)
	}
	p.pos++
	children, err := tokensToNodes(line.tokens)
	if err != nil {
		return Node{}, fmt.Errorf("cirru: line %d: %w", line.lineNo, err)
	}
	for p.pos < len(p.lines) && p.lines[p.pos].indent > indent {
		if p.lines[p.pos].indent != indent+1 {
			return Node{}, fmt.Errorf("cirru: line %d: indentation jumps from %d to %d", p.lines[p.pos].lineNo, indent, p.lines[p.pos].indent)
		}
		child, err := p.parseLine(indent + 1)
		if err != nil {
			return Node{}, err
		}
		children = append(children, child)
	}
	return Node{Expr: children}, nil
}

// tokenize splits one physical line into top-level tokens, respecting `(…)`
// nesting and quoted strings, but does NOT recurse into parens — that is
// done by tokensToNodes so `$` tail-grouping and paren nesting compose.
func tokenize(s string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	depth := 0
	inStr := false
	var strQuote byte
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case inStr:
			cur.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				cur.WriteByte(s[i])
			} else if c == strQuote {
				inStr = false
			}
		case c == '"':
			inStr = true
			strQuote = '"'
			cur.WriteByte(c)
		case c == '(':
			if depth == 0 {
				flush()
				cur.WriteByte(c)
			} else {
				cur.WriteByte(c)
			}
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parens")
			}
			cur.WriteByte(c)
			if depth == 0 {
				flush()
			}
		case c == ' ' && depth == 0:
			flush()
		case c == ';' && depth == 0 && !inStr:
			// line comment: rest of physical line is ignored, but a leaf
			// token of exactly ";" is still meaningful as a comment-expr
			// head (spec.md §4.3 "lists beginning with ; are skipped"), so
			// only swallow the rest when ';' starts a fresh token.
			if cur.Len() == 0 {
				flush()
				toks = append(toks, ";")
				i = len(s)
				continue
			}
			cur.WriteByte(c)
		default:
			cur.WriteByte(c)
		}
		i++
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parens")
	}
	flush()
	return toks, nil
}

// tokensToNodes turns one line's flat token list into child Nodes, parsing
// `(...)` groups as nested Exprs and `$` as "everything after this point on
// the line becomes one more nested Expr" (Cirru's tail-grouping shorthand,
// used pervasively in calcit.core to avoid an extra indent level).
func tokensToNodes(toks []string) ([]Node, error) {
	var out []Node
	i := 0
	for i < len(toks) {
		t := toks[i]
		switch {
		case t == "$":
			rest := toks[i+1:]
			children, err := tokensToNodes(rest)
			if err != nil {
				return nil, err
			}
			out = append(out, Node{Expr: children})
			i = len(toks)
		case strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")"):
			inner, err := tokenize(t[1 : len(t)-1])
			if err != nil {
				return nil, err
			}
			children, err := tokensToNodes(inner)
			if err != nil {
				return nil, err
			}
			out = append(out, Node{Expr: children})
			i++
		default:
			out = append(out, NewLeaf(unescapeLeaf(t)))
			i++
		}
	}
	return out, nil
}

func unescapeLeaf(t string) string {
	if len(t) >= 2 && t[0] == '"' && t[len(t)-1] == '"' {
		inner := t[1 : len(t)-1]
		var b strings.Builder
		b.WriteByte('"')
		for i := 0; i < len(inner); i++ {
			if inner[i] == '\\' && i+1 < len(inner) {
				i++
				switch inner[i] {
				case 'n':
					b.WriteByte('\n')
				case 't':
					b.WriteByte('\t')
				default:
					b.WriteByte(inner[i])
				}
				continue
			}
			b.WriteByte(inner[i])
		}
		return b.String()
	}
	return t
}
