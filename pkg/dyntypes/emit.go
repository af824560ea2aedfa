package dyntypes

import "github.com/toyz/dyntypes/internal/emit"

// ILGenerator accumulates the instructions of a generated method body.
type ILGenerator = emit.ILGenerator

// OpCode is a body instruction.
type OpCode = emit.OpCode

// Callable is a native call target usable with ILGenerator.EmitCall.
type Callable = emit.Callable

const (
	OpNop     = emit.OpNop
	OpLdArg   = emit.OpLdArg
	OpLdFld   = emit.OpLdFld
	OpStFld   = emit.OpStFld
	OpLdConst = emit.OpLdConst
	OpCall    = emit.OpCall
	OpPop     = emit.OpPop
	OpRet     = emit.OpRet
)
