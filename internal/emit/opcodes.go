// Package emit implements the narrow instruction set used for the bodies of
// generated accessors and redirection shims, together with its interpreter.
package emit

// OpCode defines the type for body instructions.
type OpCode uint8

// Stack machine opcodes. Operands follow the opcode byte, 16-bit operands are big endian.
const (
	OpNop     OpCode = 0 // No operands.
	OpLdArg   OpCode = 1 // Idx(8bit): push argument Idx. Argument 0 is the receiver.
	OpLdFld   OpCode = 2 // Slot(16bit): pop receiver, push receiver.fields[Slot].
	OpStFld   OpCode = 3 // Slot(16bit): pop value, pop receiver, receiver.fields[Slot] = value.
	OpLdConst OpCode = 4 // ConstIdx(16bit): push Constants[ConstIdx].
	OpCall    OpCode = 5 // ConstIdx(16bit) ArgCount(8bit): pop ArgCount args and a target, call Constants[ConstIdx].
	OpPop     OpCode = 6 // No operands: discard the top of the stack.
	OpRet     OpCode = 7 // No operands: return, popping the result when the method has one.
)

// String returns the mnemonic of the opcode
func (op OpCode) String() string {
	switch op {
	case OpNop:
		return "nop"
	case OpLdArg:
		return "ldarg"
	case OpLdFld:
		return "ldfld"
	case OpStFld:
		return "stfld"
	case OpLdConst:
		return "ldconst"
	case OpCall:
		return "call"
	case OpPop:
		return "pop"
	case OpRet:
		return "ret"
	default:
		return "unknown"
	}
}

// operandWidth returns the number of operand bytes following op, or -1 for an unknown opcode.
func (op OpCode) operandWidth() int {
	switch op {
	case OpNop, OpPop, OpRet:
		return 0
	case OpLdArg:
		return 1
	case OpLdFld, OpStFld, OpLdConst:
		return 2
	case OpCall:
		return 3
	default:
		return -1
	}
}

// FieldRef identifies a storage slot of the type under construction.
type FieldRef interface {
	Slot() int
	Name() string
}

// Callable is a native target of OpCall. The target popped from the stack is
// passed as recv.
type Callable interface {
	Name() string
	NumIn() int
	HasResult() bool
	Call(recv any, args []any) (any, error)
}

// Receiver is an instance whose fields can be loaded and stored by slot.
type Receiver interface {
	LoadField(slot int) (any, error)
	StoreField(slot int, value any) error
}
