package emit

import (
	"fmt"
	"strings"

	"github.com/toyz/dyntypes/internal/errors"
)

// Body is a validated, immutable instruction sequence.
type Body struct {
	code       []byte
	constants  []any
	fieldNames map[int]string
	argc       int
	hasResult  bool
	maxStack   int
}

// NumArgs returns the number of arguments the body expects, receiver excluded
func (b *Body) NumArgs() int { return b.argc }

// HasResult reports whether the body returns a value
func (b *Body) HasResult() bool { return b.hasResult }

// MaxStack returns the deepest stack the body reaches
func (b *Body) MaxStack() int { return b.maxStack }

// Invoke executes the body. args[0] is the receiver followed by NumArgs arguments.
func (b *Body) Invoke(args []any) (any, error) {
	if len(args) != b.argc+1 {
		return nil, errors.Newf(errors.InvocationErrorCode, "expected %d arguments, got %d", b.argc, len(args)-1)
	}

	stack := make([]any, 0, b.maxStack)
	pop := func() any {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for ip := 0; ip < len(b.code); {
		op := OpCode(b.code[ip])
		switch op {
		case OpNop:
		case OpLdArg:
			stack = append(stack, args[b.code[ip+1]])
		case OpLdFld:
			slot := int(readUint16(b.code, ip+1))
			recv, err := receiverOf(pop(), op)
			if err != nil {
				return nil, err
			}
			v, err := recv.LoadField(slot)
			if err != nil {
				return nil, err
			}
			stack = append(stack, v)
		case OpStFld:
			slot := int(readUint16(b.code, ip+1))
			value := pop()
			recv, err := receiverOf(pop(), op)
			if err != nil {
				return nil, err
			}
			if err := recv.StoreField(slot, value); err != nil {
				return nil, err
			}
		case OpLdConst:
			stack = append(stack, b.constants[readUint16(b.code, ip+1)])
		case OpCall:
			target := b.constants[readUint16(b.code, ip+1)].(Callable)
			argc := int(b.code[ip+3])
			callArgs := make([]any, argc)
			for i := argc - 1; i >= 0; i-- {
				callArgs[i] = pop()
			}
			recv := pop()
			result, err := target.Call(recv, callArgs)
			if err != nil {
				return nil, err
			}
			if target.HasResult() {
				stack = append(stack, result)
			}
		case OpPop:
			pop()
		case OpRet:
			if b.hasResult {
				return pop(), nil
			}
			return nil, nil
		}
		ip += 1 + op.operandWidth()
	}
	return nil, errors.New(errors.InvocationErrorCode, "body ended without ret")
}

func receiverOf(v any, op OpCode) (Receiver, error) {
	if v == nil {
		return nil, errors.Newf(errors.InvocationErrorCode, "%s on nil receiver", op)
	}
	recv, ok := v.(Receiver)
	if !ok {
		return nil, errors.Newf(errors.InvocationErrorCode, "%s on non-instance value of type %T", op, v)
	}
	return recv, nil
}

// String disassembles the body, one instruction per line
func (b *Body) String() string {
	var sb strings.Builder
	for ip := 0; ip < len(b.code); {
		op := OpCode(b.code[ip])
		fmt.Fprintf(&sb, "%04d %s", ip, op)
		switch op {
		case OpLdArg:
			fmt.Fprintf(&sb, " %d", b.code[ip+1])
		case OpLdFld, OpStFld:
			slot := int(readUint16(b.code, ip+1))
			fmt.Fprintf(&sb, " %d (%s)", slot, b.fieldNames[slot])
		case OpLdConst:
			fmt.Fprintf(&sb, " %v", b.constants[readUint16(b.code, ip+1)])
		case OpCall:
			target := b.constants[readUint16(b.code, ip+1)].(Callable)
			fmt.Fprintf(&sb, " %s/%d", target.Name(), b.code[ip+3])
		}
		sb.WriteString("\n")
		ip += 1 + op.operandWidth()
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
