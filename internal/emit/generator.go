package emit

import (
	"fmt"
	"math"
	"reflect"

	"github.com/toyz/dyntypes/internal/errors"
)

// ILGenerator accumulates the instruction sequence of one method body.
type ILGenerator struct {
	code       []byte
	constants  []any
	fieldNames map[int]string
	err        error
}

// NewILGenerator creates an empty generator
func NewILGenerator() *ILGenerator {
	return &ILGenerator{fieldNames: make(map[int]string)}
}

// Emit appends an opcode without operands
func (g *ILGenerator) Emit(op OpCode) {
	if op.operandWidth() != 0 {
		g.fail(fmt.Errorf("%s requires operands", op))
		return
	}
	g.code = append(g.code, byte(op))
}

// EmitArg appends an OpLdArg for argument idx
func (g *ILGenerator) EmitArg(idx int) {
	if idx < 0 || idx > math.MaxUint8 {
		g.fail(fmt.Errorf("argument index %d out of range", idx))
		return
	}
	g.code = append(g.code, byte(OpLdArg), byte(idx))
}

// EmitField appends an OpLdFld or OpStFld referencing field
func (g *ILGenerator) EmitField(op OpCode, field FieldRef) {
	if op != OpLdFld && op != OpStFld {
		g.fail(fmt.Errorf("%s does not take a field operand", op))
		return
	}
	if field == nil {
		g.fail(fmt.Errorf("%s with nil field", op))
		return
	}
	slot := field.Slot()
	if slot < 0 || slot > math.MaxUint16 {
		g.fail(fmt.Errorf("field slot %d out of range", slot))
		return
	}
	g.fieldNames[slot] = field.Name()
	g.code = append(g.code, byte(op))
	g.writeUint16(uint16(slot))
}

// EmitConst appends an OpLdConst pushing v
func (g *ILGenerator) EmitConst(v any) {
	idx, ok := g.addConstant(v)
	if !ok {
		return
	}
	g.code = append(g.code, byte(OpLdConst))
	g.writeUint16(idx)
}

// EmitCall appends an OpCall of target with argc arguments
func (g *ILGenerator) EmitCall(target Callable, argc int) {
	if target == nil {
		g.fail(fmt.Errorf("call with nil target"))
		return
	}
	if argc != target.NumIn() {
		g.fail(fmt.Errorf("call %s with %d arguments, want %d", target.Name(), argc, target.NumIn()))
		return
	}
	if argc > math.MaxUint8 {
		g.fail(fmt.Errorf("call %s with too many arguments", target.Name()))
		return
	}
	idx, ok := g.addConstant(target)
	if !ok {
		return
	}
	g.code = append(g.code, byte(OpCall))
	g.writeUint16(idx)
	g.code = append(g.code, byte(argc))
}

// Len returns the number of encoded bytes
func (g *ILGenerator) Len() int {
	return len(g.code)
}

// Body validates the accumulated sequence for a method taking argc arguments
// (receiver excluded) and produces an immutable Body.
func (g *ILGenerator) Body(argc int, hasResult bool) (*Body, error) {
	if g.err != nil {
		return nil, errors.Wrap(errors.EmissionErrorCode, "emission failed", g.err)
	}
	if len(g.code) == 0 {
		return nil, errors.New(errors.EmissionErrorCode, "empty body")
	}

	depth, maxDepth := 0, 0
	returned := false
	for ip := 0; ip < len(g.code); {
		if returned {
			return nil, errors.Newf(errors.EmissionErrorCode, "unreachable instruction at offset %d", ip)
		}
		op := OpCode(g.code[ip])
		width := op.operandWidth()
		if width < 0 || ip+width >= len(g.code) {
			return nil, errors.Newf(errors.EmissionErrorCode, "malformed instruction at offset %d", ip)
		}

		pop, push := 0, 0
		switch op {
		case OpLdArg:
			if idx := int(g.code[ip+1]); idx > argc {
				return nil, errors.Newf(errors.EmissionErrorCode, "ldarg %d exceeds %d arguments", idx, argc)
			}
			push = 1
		case OpLdFld:
			pop, push = 1, 1
		case OpStFld:
			pop = 2
		case OpLdConst:
			push = 1
		case OpCall:
			target := g.constants[readUint16(g.code, ip+1)].(Callable)
			pop = int(g.code[ip+3]) + 1
			if target.HasResult() {
				push = 1
			}
		case OpPop:
			pop = 1
		case OpRet:
			if hasResult {
				pop = 1
			}
			returned = true
		}

		if depth < pop {
			return nil, errors.Newf(errors.EmissionErrorCode, "stack underflow at offset %d (%s)", ip, op)
		}
		depth = depth - pop + push
		if depth > maxDepth {
			maxDepth = depth
		}
		if op == OpRet && depth != 0 {
			return nil, errors.Newf(errors.EmissionErrorCode, "%d values left on the stack at return", depth)
		}
		ip += 1 + width
	}
	if !returned {
		return nil, errors.New(errors.EmissionErrorCode, "body does not end with ret")
	}

	names := make(map[int]string, len(g.fieldNames))
	for k, v := range g.fieldNames {
		names[k] = v
	}
	return &Body{
		code:       append([]byte(nil), g.code...),
		constants:  append([]any(nil), g.constants...),
		fieldNames: names,
		argc:       argc,
		hasResult:  hasResult,
		maxStack:   maxDepth,
	}, nil
}

func (g *ILGenerator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *ILGenerator) writeUint16(v uint16) {
	g.code = append(g.code, byte(v>>8), byte(v&0xff))
}

// addConstant adds v to the constant pool, reusing an identical comparable entry.
func (g *ILGenerator) addConstant(v any) (uint16, bool) {
	if v != nil && reflect.TypeOf(v).Comparable() {
		for i, existing := range g.constants {
			if existing != nil && reflect.TypeOf(existing) == reflect.TypeOf(v) && existing == v {
				return uint16(i), true
			}
		}
	}
	if len(g.constants) >= math.MaxUint16 {
		g.fail(fmt.Errorf("constant pool exhausted"))
		return 0, false
	}
	g.constants = append(g.constants, v)
	return uint16(len(g.constants) - 1), true
}

func readUint16(code []byte, at int) uint16 {
	return uint16(code[at])<<8 | uint16(code[at+1])
}
