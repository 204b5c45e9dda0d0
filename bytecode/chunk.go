package bytecode

import (
	"fmt"

	"github.com/lookbusy1344/script-vm/value"
)

// MaxConstants is the size limit of a chunk's constant pool, fixed by
// the single-byte operand of OpConstant.
const MaxConstants = 256

// Chunk is a self-contained bytecode program: instructions, a constant
// pool, and a line-number table parallel to the instruction bytes.
type Chunk struct {
	Code      []byte
	Lines     []int // one entry per code byte, for error reporting
	Constants []value.Value
}

// NewChunk creates an empty chunk
func NewChunk() *Chunk {
	return &Chunk{}
}

// Len returns the number of bytecode bytes
func (c *Chunk) Len() int {
	return len(c.Code)
}

// Write appends one raw byte with its source line
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends one opcode with its source line
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends a value to the constant pool and returns its
// index. The pool is capped at MaxConstants entries.
func (c *Chunk) AddConstant(v value.Value) (int, error) {
	if len(c.Constants) >= MaxConstants {
		return 0, fmt.Errorf("constant pool full (max %d entries)", MaxConstants)
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1, nil
}

// WriteConstant appends a value to the constant pool and emits the
// OpConstant instruction referencing it
func (c *Chunk) WriteConstant(v value.Value, line int) error {
	index, err := c.AddConstant(v)
	if err != nil {
		return err
	}
	c.WriteOp(OpConstant, line)
	c.Write(byte(index), line)
	return nil
}
