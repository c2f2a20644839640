package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Program is a compiled filter predicate evaluated against one response item.
//
// Supported forms:
//   - truthiness: `active`
//   - comparisons: `status == "open"`, `kind != 'legacy'`, `score >= 10`
//   - composition: `a && (b || !c)`
//
// Identifiers are dot paths into the item (`owner.name`). The identifier `it`
// refers to the item itself, which is how scalar arrays are filtered.
type Program struct {
	source string
	root   node
}

// Compile parses a filter expression. An empty expression matches everything.
func Compile(source string) (*Program, error) {
	trimmed := strings.TrimSpace(source)
	prog := &Program{source: trimmed}
	if trimmed == "" {
		return prog, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	root, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	prog.root = root
	return prog, nil
}

// String returns the expression text.
func (p *Program) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Match evaluates the predicate against item.
func (p *Program) Match(item any) (bool, error) {
	if p == nil || p.root == nil {
		return true, nil
	}
	return p.root.eval(item)
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|', '<', '>':
		return true
	}
	return false
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}
	emit := func(kind tokenKind, raw string) {
		tokens = append(tokens, token{kind: kind, raw: raw})
		i += len(raw)
	}

	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			emit(tokLParen, "(")
		case ch == ')':
			emit(tokRParen, ")")
		case ch == '!' && peek(1) == '=':
			emit(tokNeq, "!=")
		case ch == '!':
			emit(tokNot, "!")
		case ch == '=' && peek(1) == '=':
			emit(tokEq, "==")
		case ch == '=':
			return nil, errors.New("transform/expr: unexpected '='; use '=='")
		case ch == '<' && peek(1) == '=':
			emit(tokLte, "<=")
		case ch == '<':
			emit(tokLt, "<")
		case ch == '>' && peek(1) == '=':
			emit(tokGte, ">=")
		case ch == '>':
			emit(tokGt, ">")
		case ch == '&' && peek(1) == '&':
			emit(tokAnd, "&&")
		case ch == '|' && peek(1) == '|':
			emit(tokOr, "||")
		case ch == '&' || ch == '|':
			return nil, fmt.Errorf("transform/expr: unexpected %q; use %q", string(ch), string(ch)+string(ch))
		case ch == '"' || ch == '\'':
			value, width, err := readString(input[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, raw: value})
			i += width
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokBool, raw: strings.ToLower(raw)})
			case "null", "nil":
				tokens = append(tokens, token{kind: tokNull, raw: "null"})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{kind: tokNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokIdent, raw: raw})
				}
			}
		}
	}
	return tokens, nil
}

// readString reads a quoted literal at the start of input and returns the
// unquoted value and the number of bytes consumed.
func readString(input string) (string, int, error) {
	quote := input[0]
	escaped := false
	for j := 1; j < len(input); j++ {
		c := input[j]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := input[1:j]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `\'`, `'`)
			body = strings.ReplaceAll(body, `"`, `\"`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, fmt.Errorf("transform/expr: invalid string literal: %w", err)
		}
		return value, j + 1, nil
	}
	return "", 0, errors.New("transform/expr: unterminated string literal")
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	if c := raw[0]; !(c >= '0' && c <= '9') && c != '-' && c != '+' && c != '.' {
		return false
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}

type node interface {
	eval(item any) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(item any) (bool, error) {
	ok, err := n.left.eval(item)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(item)
}

type andNode struct{ left, right node }

func (n andNode) eval(item any) (bool, error) {
	ok, err := n.left.eval(item)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(item)
}

type notNode struct{ inner node }

func (n notNode) eval(item any) (bool, error) {
	ok, err := n.inner.eval(item)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type truthyNode struct{ path string }

func (n truthyNode) eval(item any) (bool, error) {
	value, ok := Lookup(item, n.path)
	if !ok {
		return false, nil
	}
	return truthy(value), nil
}

type compareNode struct {
	path    string
	op      tokenKind
	literal token
}

func (n compareNode) eval(item any) (bool, error) {
	value, _ := Lookup(item, n.path)

	switch n.literal.kind {
	case tokNull:
		switch n.op {
		case tokEq:
			return value == nil, nil
		case tokNeq:
			return value != nil, nil
		}
	case tokBool:
		want := n.literal.raw == "true"
		got := truthy(value)
		if text, ok := value.(string); ok {
			if parsed, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
				got = parsed
			}
		}
		switch n.op {
		case tokEq:
			return got == want, nil
		case tokNeq:
			return got != want, nil
		}
	case tokNumber:
		want, _ := strconv.ParseFloat(n.literal.raw, 64)
		got, ok := toNumber(value)
		if !ok {
			return n.op == tokNeq, nil
		}
		return compareOrdered(n.op, got, want), nil
	case tokString, tokIdent:
		got := toString(value)
		if n.op == tokEq || n.op == tokNeq {
			return (got == n.literal.raw) == (n.op == tokEq), nil
		}
		return compareOrdered(n.op, strings.Compare(got, n.literal.raw), 0), nil
	}
	return false, fmt.Errorf("transform/expr: operator %s not supported for %s", opString(n.op), n.literal.raw)
}

func compareOrdered[T int | float64](op tokenKind, got, want T) bool {
	switch op {
	case tokEq:
		return got == want
	case tokNeq:
		return got != want
	case tokLt:
		return got < want
	case tokLte:
		return got <= want
	case tokGt:
		return got > want
	case tokGte:
		return got >= want
	}
	return false
}

func opString(op tokenKind) string {
	switch op {
	case tokEq:
		return "=="
	case tokNeq:
		return "!="
	case tokLt:
		return "<"
	case tokLte:
		return "<="
	case tokGt:
		return ">"
	case tokGte:
		return ">="
	}
	return "?"
}

type parser struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	p := &parser{tokens: tokens}
	root, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("transform/expr: unexpected token %q", p.tokens[p.pos].raw)
	}
	return root, nil
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.match(tokOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(tokAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.match(tokNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.match(tokLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.match(tokRParen) {
			return nil, errors.New("transform/expr: missing closing ')'")
		}
		return inner, nil
	}

	if p.pos >= len(p.tokens) {
		return nil, errors.New("transform/expr: empty expression")
	}
	ident := p.tokens[p.pos]
	if ident.kind != tokIdent {
		return nil, fmt.Errorf("transform/expr: expected identifier, got %q", ident.raw)
	}
	p.pos++

	if p.pos < len(p.tokens) {
		switch op := p.tokens[p.pos].kind; op {
		case tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte:
			p.pos++
			lit, err := p.literal()
			if err != nil {
				return nil, err
			}
			if lit.kind == tokBool || lit.kind == tokNull {
				if op != tokEq && op != tokNeq {
					return nil, fmt.Errorf("transform/expr: operator %s not supported for %s", opString(op), lit.raw)
				}
			}
			return compareNode{path: ident.raw, op: op, literal: lit}, nil
		}
	}
	return truthyNode{path: ident.raw}, nil
}

func (p *parser) match(kind tokenKind) bool {
	if p.pos < len(p.tokens) && p.tokens[p.pos].kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) literal() (token, error) {
	if p.pos >= len(p.tokens) {
		return token{}, errors.New("transform/expr: missing literal")
	}
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.kind {
	case tokString, tokNumber, tokBool, tokNull, tokIdent:
		// Bare identifiers on the right-hand side read as strings.
		return tok, nil
	default:
		return token{}, fmt.Errorf("transform/expr: expected literal, got %q", tok.raw)
	}
}

// Lookup resolves a dot path against a decoded JSON value. The path `it`
// returns the value itself; an exact key match wins over path traversal.
func Lookup(value any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	if path == "it" {
		return value, true
	}
	if m, ok := value.(map[string]any); ok {
		if v, exists := m[path]; exists {
			return v, true
		}
	}

	current := value
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
