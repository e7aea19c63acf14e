package expr

import (
	"fmt"
	"strconv"
	"sync"
)

// Expr is a parsed expression, evaluated with Eval.
type Expr interface {
	eval(s *Scope) (any, error)
}

// AST node types.

type litNode struct{ val any }

type identNode struct{ name string }

type memberNode struct {
	obj  Expr
	name string
}

type indexNode struct {
	obj Expr
	idx Expr
}

type callNode struct {
	callee Expr
	args   []Expr
}

type unaryNode struct {
	op string
	x  Expr
}

type binaryNode struct {
	op   string
	l, r Expr
}

type condNode struct {
	cond Expr
	then Expr
	els  Expr
}

// Parse parses an expression source string into an AST.
func Parse(src string) (Expr, error) {
	p := &parser{lex: newLexer(src), src: src}
	e, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if t := p.lex.next(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d in %q", t.text, t.pos, src)
	}
	return e, nil
}

// parseCache memoizes Parse by source string. Templates evaluate the same
// expressions on every render pass; parsing happens once.
var parseCache sync.Map // string -> Expr

// Compile returns the cached AST for src, parsing on first use.
func Compile(src string) (Expr, error) {
	if e, ok := parseCache.Load(src); ok {
		return e.(Expr), nil
	}
	e, err := Parse(src)
	if err != nil {
		return nil, err
	}
	parseCache.Store(src, e)
	return e, nil
}

type parser struct {
	lex *lexer
	src string
}

func (p *parser) errf(t token, format string, args ...any) error {
	return fmt.Errorf("%s at offset %d in %q", fmt.Sprintf(format, args...), t.pos, p.src)
}

func (p *parser) expectOp(op string) error {
	t := p.lex.next()
	if t.kind != tokOp || t.text != op {
		return p.errf(t, "expected %q, got %q", op, t.text)
	}
	return nil
}

func (p *parser) parseTernary() (Expr, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if t := p.lex.lookahead(); t.kind == tokOp && t.text == "?" {
		p.lex.next()
		then, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(":"); err != nil {
			return nil, err
		}
		els, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		return &condNode{cond: cond, then: then, els: els}, nil
	}
	return cond, nil
}

// binary operator precedence levels, low to high.
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (p *parser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.lex.lookahead()
		if t.kind != tokOp {
			return left, nil
		}
		prec, ok := precedence[t.text]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.lex.next()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.text, l: left, r: right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	t := p.lex.lookahead()
	if t.kind == tokOp && (t.text == "!" || t.text == "-") {
		p.lex.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: t.text, x: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.lex.lookahead()
		if t.kind != tokOp {
			return e, nil
		}
		switch t.text {
		case ".":
			p.lex.next()
			name := p.lex.next()
			if name.kind != tokIdent {
				return nil, p.errf(name, "expected member name, got %q", name.text)
			}
			e = &memberNode{obj: e, name: name.text}
		case "[":
			p.lex.next()
			idx, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			e = &indexNode{obj: e, idx: idx}
		case "(":
			p.lex.next()
			var args []Expr
			if la := p.lex.lookahead(); !(la.kind == tokOp && la.text == ")") {
				for {
					a, err := p.parseTernary()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					la := p.lex.lookahead()
					if la.kind == tokOp && la.text == "," {
						p.lex.next()
						continue
					}
					break
				}
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			e = &callNode{callee: e, args: args}
		default:
			return e, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.lex.next()
	switch t.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errf(t, "bad number %q", t.text)
		}
		return &litNode{val: f}, nil
	case tokString:
		return &litNode{val: t.text}, nil
	case tokIdent:
		switch t.text {
		case "true":
			return &litNode{val: true}, nil
		case "false":
			return &litNode{val: false}, nil
		case "nil", "null":
			return &litNode{val: nil}, nil
		}
		return &identNode{name: t.text}, nil
	case tokOp:
		if t.text == "(" {
			e, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return e, nil
		}
		return nil, p.errf(t, "unexpected %q", t.text)
	case tokError:
		return nil, p.errf(t, "%s", t.text)
	default:
		return nil, p.errf(t, "unexpected end of expression")
	}
}
