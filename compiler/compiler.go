package compiler

import (
	"fmt"
	"strconv"

	"github.com/lookbusy1344/script-vm/bytecode"
	"github.com/lookbusy1344/script-vm/scanner"
	"github.com/lookbusy1344/script-vm/value"
)

// Precedence levels, lowest to highest
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecConditional
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(p *Parser)

// parseRule pairs the prefix and infix handlers for one token type
// with the token's infix precedence
type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is indexed by token type. Populated in init because the
// handlers refer back to the table through parsePrecedence.
var rules [scanner.TokenTypeCount]parseRule

func init() {
	rules[scanner.TokenLeftParen] = parseRule{prefix: (*Parser).grouping}
	rules[scanner.TokenMinus] = parseRule{prefix: (*Parser).unary, infix: (*Parser).binary, precedence: PrecTerm}
	rules[scanner.TokenPlus] = parseRule{infix: (*Parser).binary, precedence: PrecTerm}
	rules[scanner.TokenSlash] = parseRule{infix: (*Parser).binary, precedence: PrecFactor}
	rules[scanner.TokenStar] = parseRule{infix: (*Parser).binary, precedence: PrecFactor}
	rules[scanner.TokenBang] = parseRule{prefix: (*Parser).unary}
	rules[scanner.TokenBangEqual] = parseRule{infix: (*Parser).binary, precedence: PrecEquality}
	rules[scanner.TokenEqualEqual] = parseRule{infix: (*Parser).binary, precedence: PrecEquality}
	rules[scanner.TokenGreater] = parseRule{infix: (*Parser).binary, precedence: PrecComparison}
	rules[scanner.TokenGreaterEqual] = parseRule{infix: (*Parser).binary, precedence: PrecComparison}
	rules[scanner.TokenLess] = parseRule{infix: (*Parser).binary, precedence: PrecComparison}
	rules[scanner.TokenLessEqual] = parseRule{infix: (*Parser).binary, precedence: PrecComparison}
	rules[scanner.TokenNumber] = parseRule{prefix: (*Parser).number}
	rules[scanner.TokenString] = parseRule{prefix: (*Parser).stringLiteral}
	rules[scanner.TokenTrue] = parseRule{prefix: (*Parser).literal}
	rules[scanner.TokenFalse] = parseRule{prefix: (*Parser).literal}
	rules[scanner.TokenNil] = parseRule{prefix: (*Parser).literal}
	// Every other token type keeps the zero rule: no handlers, PrecNone
}

// Parser is a single-pass Pratt parser that emits bytecode directly
// into a chunk as it consumes tokens. There is no AST.
type Parser struct {
	scanner   *scanner.Scanner
	current   scanner.Token
	previous  scanner.Token
	chunk     *bytecode.Chunk
	pool      *value.StringPool
	errors    *ErrorList
	panicMode bool
}

// Compile parses one expression from source and emits its bytecode,
// followed by a RETURN instruction, into chunk. String constants are
// interned through pool. On failure it returns the collected
// diagnostics as an *ErrorList.
func Compile(source string, chunk *bytecode.Chunk, pool *value.StringPool) error {
	p := &Parser{
		scanner: scanner.NewScanner(source),
		chunk:   chunk,
		pool:    pool,
		errors:  &ErrorList{},
	}

	p.advance()
	p.expression()
	p.consume(scanner.TokenEOF, "Expect end of expression.")
	p.emitOp(bytecode.OpReturn)

	if p.errors.HasErrors() {
		return p.errors
	}
	return nil
}

// advance consumes the current token. Error tokens from the scanner
// are reported and skipped so the parser only ever sees real tokens.
func (p *Parser) advance() {
	p.previous = p.current

	for {
		p.current = p.scanner.NextToken()
		if p.current.Type != scanner.TokenError {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

// consume advances past a token of the expected type, reporting an
// error if the current token does not match
func (p *Parser) consume(t scanner.TokenType, message string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *Parser) errorAtCurrent(message string) {
	p.errorAt(p.current, message)
}

func (p *Parser) errorAtPrevious(message string) {
	p.errorAt(p.previous, message)
}

// errorAt records a diagnostic for the given token. The first error
// puts the parser into panic mode; subsequent errors are suppressed
// until compilation ends, preventing cascades.
func (p *Parser) errorAt(tok scanner.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	var where string
	switch tok.Type {
	case scanner.TokenEOF:
		where = " at end"
	case scanner.TokenError:
		// The scanner message stands on its own
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}

	p.errors.AddError(&Error{Line: tok.Line, Where: where, Message: message})
}

// Emitters attach the previous token's line to everything they write

func (p *Parser) emitByte(b byte) {
	p.chunk.Write(b, p.previous.Line)
}

func (p *Parser) emitOp(op bytecode.OpCode) {
	p.chunk.WriteOp(op, p.previous.Line)
}

func (p *Parser) emitOps(first, second bytecode.OpCode) {
	p.emitOp(first)
	p.emitOp(second)
}

func (p *Parser) emitConstant(v value.Value) {
	index, err := p.chunk.AddConstant(v)
	if err != nil {
		p.errorAtPrevious("Too many constants in one chunk.")
		return
	}
	p.emitOp(bytecode.OpConstant)
	p.emitByte(byte(index))
}

func (p *Parser) expression() {
	p.parsePrecedence(PrecAssignment)
}

// parsePrecedence parses everything at the given precedence level or
// higher: the prefix handler for the consumed token, then any infix
// handlers whose precedence meets the minimum.
func (p *Parser) parsePrecedence(min Precedence) {
	if min > PrecPrimary {
		min = PrecPrimary
	}

	p.advance()
	prefix := rules[p.previous.Type].prefix
	if prefix == nil {
		p.errorAtPrevious("Expect expression.")
		return
	}
	prefix(p)

	for min <= rules[p.current.Type].precedence {
		p.advance()
		rules[p.previous.Type].infix(p)
	}
}

// number emits the previous token's lexeme as a number constant
func (p *Parser) number() {
	n, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.errorAtPrevious("Invalid number literal.")
		return
	}
	p.emitConstant(value.NumberValue(n))
}

// stringLiteral interns the previous token's content (the scanner has
// already stripped the quotes) and emits it as a constant
func (p *Parser) stringLiteral() {
	s := p.pool.InternString(p.previous.Lexeme)
	p.emitConstant(value.ObjectValue(s))
}

func (p *Parser) literal() {
	switch p.previous.Type {
	case scanner.TokenNil:
		p.emitOp(bytecode.OpNil)
	case scanner.TokenTrue:
		p.emitOp(bytecode.OpTrue)
	case scanner.TokenFalse:
		p.emitOp(bytecode.OpFalse)
	}
}

func (p *Parser) grouping() {
	p.expression()
	p.consume(scanner.TokenRightParen, "Expect ')' after expression.")
}

func (p *Parser) unary() {
	op := p.previous.Type

	p.parsePrecedence(PrecUnary)

	switch op {
	case scanner.TokenMinus:
		p.emitOp(bytecode.OpNegate)
	case scanner.TokenBang:
		p.emitOp(bytecode.OpNot)
	}
}

// binary parses the right operand one level above its own precedence,
// making binary operators left-associative, then emits the operator
func (p *Parser) binary() {
	op := p.previous.Type
	rule := rules[op]

	p.parsePrecedence(rule.precedence + 1)

	switch op {
	case scanner.TokenPlus:
		p.emitOp(bytecode.OpAdd)
	case scanner.TokenMinus:
		p.emitOp(bytecode.OpSubtract)
	case scanner.TokenStar:
		p.emitOp(bytecode.OpMultiply)
	case scanner.TokenSlash:
		p.emitOp(bytecode.OpDivide)
	case scanner.TokenEqualEqual:
		p.emitOp(bytecode.OpEqual)
	case scanner.TokenBangEqual:
		p.emitOps(bytecode.OpEqual, bytecode.OpNot)
	case scanner.TokenGreater:
		p.emitOp(bytecode.OpGreater)
	case scanner.TokenGreaterEqual:
		p.emitOps(bytecode.OpLess, bytecode.OpNot)
	case scanner.TokenLess:
		p.emitOp(bytecode.OpLess)
	case scanner.TokenLessEqual:
		p.emitOps(bytecode.OpGreater, bytecode.OpNot)
	}
}
