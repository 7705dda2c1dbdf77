package access

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// FilterMode decide cómo se trata el texto de un row filter.
type FilterMode string

const (
	// FilterRaw interpola el filtro tal cual (operador único y de confianza).
	FilterRaw FilterMode = "raw"
	// FilterStrict sólo acepta la gramática de predicados de ParseFilter.
	FilterStrict FilterMode = "strict"
)

// ParseFilterMode normaliza el valor de configuración. Vacío => raw.
func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterRaw:
		return FilterRaw, nil
	case FilterStrict:
		return FilterStrict, nil
	default:
		return "", fmt.Errorf("access: unknown filter mode %q", s)
	}
}

// ErrInvalidFilter se devuelve cuando un filtro no cumple la gramática estricta.
var ErrInvalidFilter = errors.New("invalid row filter")

// Filter es un predicado validado. String() devuelve la forma canónica que se
// interpola en el WHERE.
type Filter interface {
	String() string
}

// ParseFilter valida src contra la gramática:
//
//	expr      := and ( OR and )*
//	and       := unary ( AND unary )*
//	unary     := NOT unary | '(' expr ')' | predicate
//	predicate := ident op literal
//	           | ident [NOT] IN '(' literal { ',' literal } ')'
//	           | ident [NOT] LIKE string
//	           | ident IS [NOT] NULL
//	op        := = | != | <> | < | <= | > | >=
//	literal   := number | 'string' | TRUE | FALSE | NULL
func ParseFilter(src string) (Filter, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	f, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.peek().text)
	}
	return f, nil
}

// ─── AST ───

type boolChain struct {
	op    string // AND | OR
	terms []Filter
}

func (b boolChain) String() string {
	parts := make([]string, len(b.terms))
	for i, t := range b.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " "+b.op+" ")
}

type notExpr struct{ inner Filter }

func (n notExpr) String() string { return "NOT " + n.inner.String() }

type group struct{ inner Filter }

func (g group) String() string { return "(" + g.inner.String() + ")" }

type comparison struct {
	ident string
	op    string
	value literal
}

func (c comparison) String() string { return c.ident + " " + c.op + " " + c.value.String() }

type inList struct {
	ident  string
	negate bool
	values []literal
}

func (in inList) String() string {
	vals := make([]string, len(in.values))
	for i, v := range in.values {
		vals[i] = v.String()
	}
	kw := " IN ("
	if in.negate {
		kw = " NOT IN ("
	}
	return in.ident + kw + strings.Join(vals, ", ") + ")"
}

type likeExpr struct {
	ident   string
	negate  bool
	pattern literal
}

func (l likeExpr) String() string {
	if l.negate {
		return l.ident + " NOT LIKE " + l.pattern.String()
	}
	return l.ident + " LIKE " + l.pattern.String()
}

type isNull struct {
	ident  string
	negate bool
}

func (n isNull) String() string {
	if n.negate {
		return n.ident + " IS NOT NULL"
	}
	return n.ident + " IS NULL"
}

type literal struct {
	kind tokKind // tokNumber | tokString | tokKeyword (TRUE/FALSE/NULL)
	text string  // número o keyword tal cual; string sin comillas
}

func (l literal) String() string {
	if l.kind == tokString {
		return "'" + strings.ReplaceAll(l.text, "'", "''") + "'"
	}
	return l.text
}

// ─── Lexer ───

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokKeyword
	tokNumber
	tokString
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	text string
	pos  int
}

var keywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "IN": true, "IS": true,
	"NULL": true, "TRUE": true, "FALSE": true, "LIKE": true,
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case r == '=':
			toks = append(toks, token{tokOp, "=", i})
			i++
		case r == '<' || r == '>' || r == '!':
			op := string(r)
			if i+1 < len(rs) && (rs[i+1] == '=' || (r == '<' && rs[i+1] == '>')) {
				op += string(rs[i+1])
			}
			if op == "!" {
				return nil, fmt.Errorf("%w: unexpected '!' at %d", ErrInvalidFilter, i)
			}
			toks = append(toks, token{tokOp, op, i})
			i += len(op)
		case r == '\'':
			start := i
			var b strings.Builder
			i++
			closed := false
			for i < len(rs) {
				if rs[i] == '\'' {
					if i+1 < len(rs) && rs[i+1] == '\'' {
						b.WriteRune('\'')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				// BigQuery interpreta \' como comilla escapada; el único escape válido es ''
				if rs[i] == '\\' {
					return nil, fmt.Errorf("%w: backslash in string at %d", ErrInvalidFilter, i)
				}
				b.WriteRune(rs[i])
				i++
			}
			if !closed {
				return nil, fmt.Errorf("%w: unterminated string at %d", ErrInvalidFilter, start)
			}
			toks = append(toks, token{tokString, b.String(), start})
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			i++
			dot := false
			for i < len(rs) && (unicode.IsDigit(rs[i]) || (rs[i] == '.' && !dot)) {
				if rs[i] == '.' {
					dot = true
				}
				i++
			}
			toks = append(toks, token{tokNumber, string(rs[start:i]), start})
		case r == '_' || (r < unicode.MaxASCII && unicode.IsLetter(r)):
			start := i
			for i < len(rs) && (rs[i] == '_' || (rs[i] < unicode.MaxASCII && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i])))) {
				i++
			}
			word := string(rs[start:i])
			if up := strings.ToUpper(word); keywords[up] {
				toks = append(toks, token{tokKeyword, up, start})
			} else {
				toks = append(toks, token{tokIdent, word, start})
			}
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrInvalidFilter, r, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(rs)})
	return toks, nil
}

// ─── Parser ───

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokKeyword && t.text == kw
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at %d", ErrInvalidFilter, fmt.Sprintf(format, args...), p.peek().pos)
}

func (p *parser) expr() (Filter, error) {
	return p.chain("OR", p.and)
}

func (p *parser) and() (Filter, error) {
	return p.chain("AND", p.unary)
}

func (p *parser) chain(op string, sub func() (Filter, error)) (Filter, error) {
	first, err := sub()
	if err != nil {
		return nil, err
	}
	terms := []Filter{first}
	for p.isKeyword(op) {
		p.next()
		t, err := sub()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return boolChain{op: op, terms: terms}, nil
}

func (p *parser) unary() (Filter, error) {
	switch {
	case p.isKeyword("NOT"):
		p.next()
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notExpr{inner: inner}, nil
	case p.peek().kind == tokLParen:
		p.next()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf("expected ')'")
		}
		p.next()
		return group{inner: inner}, nil
	default:
		return p.predicate()
	}
}

func (p *parser) predicate() (Filter, error) {
	id := p.peek()
	if id.kind != tokIdent {
		return nil, p.errorf("expected column name")
	}
	p.next()

	switch t := p.peek(); {
	case t.kind == tokOp:
		p.next()
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return comparison{ident: id.text, op: t.text, value: lit}, nil

	case p.isKeyword("IS"):
		p.next()
		negate := false
		if p.isKeyword("NOT") {
			p.next()
			negate = true
		}
		if !p.isKeyword("NULL") {
			return nil, p.errorf("expected NULL")
		}
		p.next()
		return isNull{ident: id.text, negate: negate}, nil

	case p.isKeyword("NOT"), p.isKeyword("IN"), p.isKeyword("LIKE"):
		negate := false
		if p.isKeyword("NOT") {
			p.next()
			negate = true
		}
		switch {
		case p.isKeyword("IN"):
			p.next()
			return p.inList(id.text, negate)
		case p.isKeyword("LIKE"):
			p.next()
			if p.peek().kind != tokString {
				return nil, p.errorf("LIKE expects a quoted pattern")
			}
			pat := p.next()
			return likeExpr{ident: id.text, negate: negate, pattern: literal{kind: tokString, text: pat.text}}, nil
		default:
			return nil, p.errorf("expected IN or LIKE")
		}

	default:
		return nil, p.errorf("expected operator after %q", id.text)
	}
}

func (p *parser) inList(ident string, negate bool) (Filter, error) {
	if p.peek().kind != tokLParen {
		return nil, p.errorf("expected '(' after IN")
	}
	p.next()
	var vals []literal
	for {
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		vals = append(vals, lit)
		if p.peek().kind == tokComma {
			p.next()
			continue
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf("expected ',' or ')'")
		}
		p.next()
		return inList{ident: ident, negate: negate, values: vals}, nil
	}
}

func (p *parser) literal() (literal, error) {
	t := p.peek()
	switch {
	case t.kind == tokNumber, t.kind == tokString:
		p.next()
		return literal{kind: t.kind, text: t.text}, nil
	case t.kind == tokKeyword && (t.text == "TRUE" || t.text == "FALSE" || t.text == "NULL"):
		p.next()
		return literal{kind: tokKeyword, text: t.text}, nil
	default:
		return literal{}, p.errorf("expected literal")
	}
}
