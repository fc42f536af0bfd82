package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter expression grammar, closed by design:
//
//	expr       := term { "or" term }
//	term       := factor { "and" factor }
//	factor     := "(" expr ")" | comparison
//	comparison := column op value
//	            | column ["not"] "in" "{" value { "," value } "}"
//	op         := "==" | "!=" | ">" | "<" | ">=" | "<="
//	            | "is" | "is not" | "greater than" | "less than"
//
// Keywords are case-insensitive. Values containing spaces must be quoted
// outside of set braces; inside braces, members run until "," or "}".
// Anything outside this grammar is a syntax error.

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpLt
	OpGe
	OpLe
	OpIn
	OpNotIn
)

// String returns the symbolic form used when re-rendering expressions
func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpGe:
		return ">="
	case OpLe:
		return "<="
	case OpIn:
		return "in"
	case OpNotIn:
		return "not in"
	default:
		return "?"
	}
}

// Expr is a parsed boolean predicate over dataset columns.
type Expr interface {
	fmt.Stringer
	// Eval evaluates the predicate against one row. get returns the raw
	// cell value for a column and false when the cell is missing.
	Eval(get func(column string) (string, bool)) bool
	isExpr()
}

// Comparison is a single column/operator/value predicate.
type Comparison struct {
	Column string
	Op     Op
	// Value holds the scalar operand for non-set operators.
	Value string
	// Values holds the set members for OpIn / OpNotIn.
	Values []string
}

func (c *Comparison) isExpr() {}

// String re-renders the comparison in canonical grammar form
func (c *Comparison) String() string {
	switch c.Op {
	case OpIn, OpNotIn:
		return fmt.Sprintf("%s %s {%s}", quoteIfNeeded(c.Column), c.Op, strings.Join(c.Values, ", "))
	default:
		return fmt.Sprintf("%s %s %s", quoteIfNeeded(c.Column), c.Op, quoteIfNeeded(c.Value))
	}
}

// Eval evaluates the comparison against one row
func (c *Comparison) Eval(get func(string) (string, bool)) bool {
	raw, ok := get(c.Column)
	if !ok {
		return false
	}
	cell := strings.TrimSpace(raw)
	if cell == "" {
		return false
	}
	switch c.Op {
	case OpEq:
		return valuesEqual(cell, c.Value)
	case OpNe:
		return !valuesEqual(cell, c.Value)
	case OpIn:
		for _, v := range c.Values {
			if valuesEqual(cell, v) {
				return true
			}
		}
		return false
	case OpNotIn:
		for _, v := range c.Values {
			if valuesEqual(cell, v) {
				return false
			}
		}
		return true
	default:
		// Ordering operators require both sides to parse as numbers.
		a, errA := strconv.ParseFloat(cell, 64)
		b, errB := strconv.ParseFloat(c.Value, 64)
		if errA != nil || errB != nil {
			return false
		}
		switch c.Op {
		case OpGt:
			return a > b
		case OpLt:
			return a < b
		case OpGe:
			return a >= b
		case OpLe:
			return a <= b
		}
		return false
	}
}

// LogicalOp joins two sub-expressions.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

func (o LogicalOp) String() string {
	if o == LogicalOr {
		return "or"
	}
	return "and"
}

// Logical is a boolean combination of two sub-expressions.
type Logical struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (l *Logical) isExpr() {}

func (l *Logical) String() string {
	return fmt.Sprintf("(%s %s %s)", l.Left, l.Op, l.Right)
}

// Eval evaluates the combination against one row
func (l *Logical) Eval(get func(string) (string, bool)) bool {
	if l.Op == LogicalAnd {
		return l.Left.Eval(get) && l.Right.Eval(get)
	}
	return l.Left.Eval(get) || l.Right.Eval(get)
}

// Comparisons returns every leaf comparison of e, left to right. Pointers
// into the AST are returned so the auto-correction resolver can repair
// column and value references in place before re-rendering.
func Comparisons(e Expr) []*Comparison {
	switch n := e.(type) {
	case *Comparison:
		return []*Comparison{n}
	case *Logical:
		return append(Comparisons(n.Left), Comparisons(n.Right)...)
	default:
		return nil
	}
}

// valuesEqual compares a cell against an operand, numerically when both
// sides parse as numbers ("1" matches "1.0"), otherwise as trimmed strings.
func valuesEqual(cell, operand string) bool {
	operand = strings.TrimSpace(operand)
	if cell == operand {
		return true
	}
	a, errA := strconv.ParseFloat(cell, 64)
	b, errB := strconv.ParseFloat(operand, 64)
	return errA == nil && errB == nil && a == b
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t{},()") {
		return strconv.Quote(s)
	}
	return s
}

// ParseFilter parses a full boolean filter expression.
func ParseFilter(input string) (Expr, error) {
	p := newFilterParser(input)
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, fmt.Errorf("unexpected %q after expression", tok.text)
	}
	return expr, nil
}

// ParseCondition parses a single comparison, the only form permitted for
// case/control cohort conditions.
func ParseCondition(input string) (*Comparison, error) {
	p := newFilterParser(input)
	cmp, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, fmt.Errorf("cohort condition must be a single comparison, found %q", tok.text)
	}
	return cmp, nil
}

// --- lexer ---

type tokenType int

const (
	tokEOF tokenType = iota
	tokWord
	tokString
	tokSymbol
)

type token struct {
	typ  tokenType
	text string
}

type filterParser struct {
	toks []token
	pos  int
	err  error
}

func newFilterParser(input string) *filterParser {
	return &filterParser{toks: lexFilter(input)}
}

func lexFilter(input string) []token {
	var toks []token
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '\'' || ch == '"':
			quote := ch
			j := i + 1
			for j < len(input) && input[j] != quote {
				j++
			}
			if j >= len(input) {
				toks = append(toks, token{tokSymbol, string(quote)})
				i++
				continue
			}
			toks = append(toks, token{tokString, input[i+1 : j]})
			i = j + 1
		case strings.ContainsRune("(){},", rune(ch)):
			toks = append(toks, token{tokSymbol, string(ch)})
			i++
		case ch == '=' || ch == '!' || ch == '>' || ch == '<':
			if i+1 < len(input) && input[i+1] == '=' {
				toks = append(toks, token{tokSymbol, input[i : i+2]})
				i += 2
			} else {
				toks = append(toks, token{tokSymbol, string(ch)})
				i++
			}
		default:
			j := i
			for j < len(input) && !strings.ContainsRune(" \t\n\r(){},=!<>'\"", rune(input[j])) {
				j++
			}
			toks = append(toks, token{tokWord, input[i:j]})
			i = j
		}
	}
	toks = append(toks, token{typ: tokEOF})
	return toks
}

// --- parser ---

func (p *filterParser) peek() token {
	return p.toks[p.pos]
}

func (p *filterParser) next() token {
	tok := p.toks[p.pos]
	if tok.typ != tokEOF {
		p.pos++
	}
	return tok
}

func (p *filterParser) keyword(tok token, kw string) bool {
	return tok.typ == tokWord && strings.EqualFold(tok.text, kw)
}

func (p *filterParser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.keyword(p.peek(), "or") {
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: LogicalOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *filterParser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.keyword(p.peek(), "and") {
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: LogicalAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *filterParser) parseFactor() (Expr, error) {
	if tok := p.peek(); tok.typ == tokSymbol && tok.text == "(" {
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.typ != tokSymbol || tok.text != ")" {
			return nil, fmt.Errorf("expected ')', found %q", tok.text)
		}
		return expr, nil
	}
	return p.parseComparison()
}

func (p *filterParser) parseComparison() (*Comparison, error) {
	col := p.next()
	if col.typ != tokWord && col.typ != tokString {
		return nil, fmt.Errorf("expected column name, found %q", col.text)
	}

	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}

	if op == OpIn || op == OpNotIn {
		values, err := p.parseValueSet()
		if err != nil {
			return nil, err
		}
		return &Comparison{Column: col.text, Op: op, Values: values}, nil
	}

	val := p.next()
	if val.typ != tokWord && val.typ != tokString {
		return nil, fmt.Errorf("expected value after operator, found %q", val.text)
	}
	return &Comparison{Column: col.text, Op: op, Value: val.text}, nil
}

func (p *filterParser) parseOperator() (Op, error) {
	tok := p.next()
	if tok.typ == tokSymbol {
		switch tok.text {
		case "==", "=":
			return OpEq, nil
		case "!=":
			return OpNe, nil
		case ">":
			return OpGt, nil
		case "<":
			return OpLt, nil
		case ">=":
			return OpGe, nil
		case "<=":
			return OpLe, nil
		}
		return 0, fmt.Errorf("unknown operator %q", tok.text)
	}
	if tok.typ != tokWord {
		return 0, fmt.Errorf("expected operator, found %q", tok.text)
	}

	// Word operators mirror the generator's natural-language forms.
	switch strings.ToLower(tok.text) {
	case "is":
		if p.keyword(p.peek(), "not") {
			p.next()
			if p.keyword(p.peek(), "in") {
				p.next()
				return OpNotIn, nil
			}
			return OpNe, nil
		}
		if p.keyword(p.peek(), "in") {
			p.next()
			return OpIn, nil
		}
		return OpEq, nil
	case "in":
		return OpIn, nil
	case "not":
		if p.keyword(p.peek(), "in") {
			p.next()
			return OpNotIn, nil
		}
		return 0, fmt.Errorf("expected 'in' after 'not', found %q", p.peek().text)
	case "greater":
		if p.keyword(p.peek(), "than") {
			p.next()
			return OpGt, nil
		}
		return 0, fmt.Errorf("expected 'than' after 'greater'")
	case "less":
		if p.keyword(p.peek(), "than") {
			p.next()
			return OpLt, nil
		}
		return 0, fmt.Errorf("expected 'than' after 'less'")
	}
	return 0, fmt.Errorf("unknown operator %q", tok.text)
}

// parseValueSet reads "{member, member, ...}". Members may contain spaces;
// each runs until the next comma or closing brace.
func (p *filterParser) parseValueSet() ([]string, error) {
	if tok := p.next(); tok.typ != tokSymbol || tok.text != "{" {
		return nil, fmt.Errorf("expected '{' after membership operator, found %q", tok.text)
	}
	var values []string
	var parts []string
	for {
		tok := p.next()
		switch {
		case tok.typ == tokEOF:
			return nil, fmt.Errorf("unterminated value set, expected '}'")
		case tok.typ == tokSymbol && tok.text == "}":
			if len(parts) > 0 {
				values = append(values, strings.Join(parts, " "))
			}
			if len(values) == 0 {
				return nil, fmt.Errorf("empty value set")
			}
			return values, nil
		case tok.typ == tokSymbol && tok.text == ",":
			if len(parts) == 0 {
				return nil, fmt.Errorf("empty member in value set")
			}
			values = append(values, strings.Join(parts, " "))
			parts = nil
		case tok.typ == tokWord || tok.typ == tokString:
			parts = append(parts, tok.text)
		default:
			return nil, fmt.Errorf("unexpected %q in value set", tok.text)
		}
	}
}
