package criterion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SteakFisher/arazzo-writer/expression"
)

// Operator is a comparison or logical operator usable in a simple condition.
type Operator string

const (
	OperatorLT  Operator = "<"
	OperatorLTE Operator = "<="
	OperatorGT  Operator = ">"
	OperatorGTE Operator = ">="
	OperatorEQ  Operator = "=="
	OperatorNE  Operator = "!="
	OperatorNot Operator = "!"
	OperatorAnd Operator = "&&"
	OperatorOr  Operator = "||"
)

var comparisonOperators = []Operator{OperatorLTE, OperatorGTE, OperatorEQ, OperatorNE, OperatorLT, OperatorGT}

// Condition is a parsed simple condition such as "$statusCode == 200 && $response.body#/ok == true".
type Condition struct {
	raw  string
	root conditionNode
}

type conditionNode interface {
	expressions() []expression.Expression
	eval(r *Runtime) (any, error)
}

type literalNode struct {
	value any
}

type expressionNode struct {
	expression expression.Expression
}

type notNode struct {
	operand conditionNode
}

type binaryNode struct {
	operator    Operator
	left, right conditionNode
}

// ParseCondition parses a simple condition.
func ParseCondition(raw string) (*Condition, error) {
	tokens, err := tokenize(raw)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.New("condition is empty")
	}

	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("unexpected %q at position %d", p.tokens[p.pos].text, p.tokens[p.pos].pos)
	}

	return &Condition{raw: raw, root: root}, nil
}

// String returns the condition as written.
func (c *Condition) String() string {
	return c.raw
}

// Expressions returns the runtime expressions referenced by the condition.
func (c *Condition) Expressions() []expression.Expression {
	return c.root.expressions()
}

// Validate validates the runtime expressions referenced by the condition.
func (c *Condition) Validate() []error {
	var errs []error
	for _, e := range c.Expressions() {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Evaluate evaluates the condition against r.
func (c *Condition) Evaluate(r *Runtime) (bool, error) {
	v, err := c.root.eval(r)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

func (n literalNode) expressions() []expression.Expression { return nil }

func (n literalNode) eval(_ *Runtime) (any, error) { return n.value, nil }

func (n expressionNode) expressions() []expression.Expression {
	return []expression.Expression{n.expression}
}

func (n expressionNode) eval(r *Runtime) (any, error) {
	return r.Resolve(n.expression)
}

func (n notNode) expressions() []expression.Expression { return n.operand.expressions() }

func (n notNode) eval(r *Runtime) (any, error) {
	v, err := n.operand.eval(r)
	if err != nil {
		return nil, err
	}
	return !truthy(v), nil
}

func (n binaryNode) expressions() []expression.Expression {
	return append(n.left.expressions(), n.right.expressions()...)
}

func (n binaryNode) eval(r *Runtime) (any, error) {
	left, err := n.left.eval(r)
	if err != nil {
		return nil, err
	}

	switch n.operator {
	case OperatorAnd:
		if !truthy(left) {
			return false, nil
		}
		right, err := n.right.eval(r)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	case OperatorOr:
		if truthy(left) {
			return true, nil
		}
		right, err := n.right.eval(r)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	}

	right, err := n.right.eval(r)
	if err != nil {
		return nil, err
	}

	return compare(n.operator, left, right)
}

func compare(op Operator, left, right any) (bool, error) {
	if lf, lok := toNumber(left); lok {
		if rf, rok := toNumber(right); rok {
			switch op {
			case OperatorEQ:
				return lf == rf, nil
			case OperatorNE:
				return lf != rf, nil
			case OperatorLT:
				return lf < rf, nil
			case OperatorLTE:
				return lf <= rf, nil
			case OperatorGT:
				return lf > rf, nil
			case OperatorGTE:
				return lf >= rf, nil
			}
		}
	}

	switch op {
	case OperatorEQ:
		return equal(left, right), nil
	case OperatorNE:
		return !equal(left, right), nil
	}

	ls, lok := left.(string)
	rs, rok := right.(string)
	if !lok || !rok {
		return false, fmt.Errorf("operator %s cannot compare %T and %T", op, left, right)
	}

	c := strings.Compare(ls, rs)
	switch op {
	case OperatorLT:
		return c < 0, nil
	case OperatorLTE:
		return c <= 0, nil
	case OperatorGT:
		return c > 0, nil
	case OperatorGTE:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("unsupported operator %s", op)
	}
}

func equal(left, right any) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	return fmt.Sprint(left) == fmt.Sprint(right)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

type tokenKind int

const (
	tokenOperator tokenKind = iota
	tokenOpenParen
	tokenCloseParen
	tokenExpression
	tokenLiteral
)

type token struct {
	kind  tokenKind
	text  string
	value any
	pos   int
}

func tokenize(raw string) ([]token, error) {
	var tokens []token

	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenOpenParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenCloseParen, text: ")", pos: i})
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(raw[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string literal at position %d", i)
			}
			text := raw[i : i+end+2]
			tokens = append(tokens, token{kind: tokenLiteral, text: text, value: raw[i+1 : i+end+1], pos: i})
			i += end + 2
		case c == '$':
			end := i
			for end < len(raw) && !strings.ContainsRune(" \t\n\r()", rune(raw[end])) {
				end++
			}
			tokens = append(tokens, token{kind: tokenExpression, text: raw[i:end], pos: i})
			i = end
		default:
			if op, ok := matchOperator(raw[i:]); ok {
				tokens = append(tokens, token{kind: tokenOperator, text: string(op), pos: i})
				i += len(op)
				continue
			}

			end := i
			for end < len(raw) && !strings.ContainsRune(" \t\n\r()<>=!&|", rune(raw[end])) {
				end++
			}
			if end == i {
				return nil, fmt.Errorf("unexpected character %q at position %d", c, i)
			}
			word := raw[i:end]
			tokens = append(tokens, token{kind: tokenLiteral, text: word, value: literalValue(word), pos: i})
			i = end
		}
	}

	return tokens, nil
}

func matchOperator(s string) (Operator, bool) {
	for _, op := range []Operator{OperatorAnd, OperatorOr, OperatorLTE, OperatorGTE, OperatorEQ, OperatorNE, OperatorLT, OperatorGT, OperatorNot} {
		if strings.HasPrefix(s, string(op)) {
			return op, true
		}
	}
	return "", false
}

func literalValue(word string) any {
	switch word {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return f
	}
	return word
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() *token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) peekOperator(ops ...Operator) (Operator, bool) {
	t := p.peek()
	if t == nil || t.kind != tokenOperator {
		return "", false
	}
	for _, op := range ops {
		if t.text == string(op) {
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseOr() (conditionNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.peekOperator(OperatorOr); !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binaryNode{operator: OperatorOr, left: left, right: right}
	}
}

func (p *parser) parseAnd() (conditionNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.peekOperator(OperatorAnd); !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{operator: OperatorAnd, left: left, right: right}
	}
}

func (p *parser) parseUnary() (conditionNode, error) {
	if _, ok := p.peekOperator(OperatorNot); ok {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{operand: operand}, nil
	}

	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	op, ok := p.peekOperator(comparisonOperators...)
	if !ok {
		return left, nil
	}
	p.pos++

	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	return binaryNode{operator: op, left: left, right: right}, nil
}

func (p *parser) parsePrimary() (conditionNode, error) {
	t := p.peek()
	if t == nil {
		return nil, errors.New("condition must at least be in the format [expression] [operator] [value]")
	}

	switch t.kind {
	case tokenOpenParen:
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing := p.peek()
		if closing == nil || closing.kind != tokenCloseParen {
			return nil, fmt.Errorf("missing closing parenthesis for group opened at position %d", t.pos)
		}
		p.pos++
		return inner, nil
	case tokenExpression:
		p.pos++
		return expressionNode{expression: expression.Expression(t.text)}, nil
	case tokenLiteral:
		p.pos++
		return literalNode{value: t.value}, nil
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}
