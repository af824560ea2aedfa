package dyntypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Account interface {
	ID() int
	Email() string
	SetEmail(string)
	Rename(prefix string) string
}

type Sink interface {
	SetLevel(int)
}

type Streamer interface {
	Write(parts ...string)
}

type account struct {
	id    int
	email string
}

func (a *account) ID() int                     { return a.id }
func (a *account) Email() string               { return a.email }
func (a *account) SetEmail(email string)       { a.email = email }
func (a *account) Rename(prefix string) string { return prefix + a.email }

func TestContractOf(t *testing.T) {
	contract, err := ContractOf[Account]()
	require.NoError(t, err)

	assert.Equal(t, "Account", contract.Name())
	assert.Equal(t, KindContract, contract.Kind())
	assert.Equal(t, []string{"Email", "ID"}, contract.PropertyNames())

	id, ok := contract.Property("ID")
	require.True(t, ok)
	assert.Equal(t, TypeOf[int](), id.Type())
	assert.True(t, id.CanRead())
	assert.False(t, id.CanWrite())

	email, ok := contract.Property("Email")
	require.True(t, ok)
	assert.True(t, email.CanRead())
	assert.True(t, email.CanWrite())

	rename, ok := contract.Method("Rename")
	require.True(t, ok)
	assert.True(t, rename.IsAbstract())
	assert.True(t, rename.IsVirtual())
	assert.Equal(t, "Rename(string) string", rename.Signature())

	_, ok = contract.Method("SetEmail")
	assert.False(t, ok, "setter folded into the Email property")

	again, err := ContractOf[Account]()
	require.NoError(t, err)
	assert.Same(t, contract, again)
}

func TestContractOfSetterOnly(t *testing.T) {
	contract, err := ContractOf[Sink]()
	require.NoError(t, err)

	level, ok := contract.Property("Level")
	require.True(t, ok)
	assert.False(t, level.CanRead())
	assert.True(t, level.CanWrite())
}

func TestContractOfErrors(t *testing.T) {
	_, err := ContractOf[int]()
	assert.True(t, HasCode(err, CodeValidation))

	_, err = ContractOf[Streamer]()
	assert.True(t, HasCode(err, CodeDefinition))
}

func TestContractMatchesGoValues(t *testing.T) {
	contract, err := ContractOf[Account]()
	require.NoError(t, err)

	assert.True(t, TypeOf[*account]().Implements(contract))
	assert.False(t, TypeOf[account]().Implements(contract))
	assert.True(t, contract.IsInstance(&account{}))
	assert.False(t, contract.IsInstance(account{}))
	assert.True(t, contract.IsInstance(nil))
}

func TestNewContract(t *testing.T) {
	contract, err := NewContract("Shape").
		Property("Area", TypeOf[float64](), AccessGet).
		Property("Label", TypeOf[string](), AccessGetSet).
		Method("Scale", nil, TypeOf[float64]()).
		Build()
	require.NoError(t, err)

	var names []string
	for _, m := range contract.Methods() {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"get_Area", "get_Label", "set_Label", "Scale"}, names)

	scale, _ := contract.Method("Scale")
	assert.Nil(t, scale.ReturnType())
	assert.Equal(t, []*Type{TypeOf[float64]()}, scale.Parameters())
	assert.Nil(t, contract.GoType())
}

func TestNewContractErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *ContractBuilder
		code    ErrorCode
	}{
		{"invalid name", NewContract("bad name"), CodeValidation},
		{"duplicate property", NewContract("C").
			Property("X", TypeOf[int](), AccessGet).
			Property("X", TypeOf[int](), AccessGet), CodeDefinition},
		{"method clashes with accessor", NewContract("C").
			Property("X", TypeOf[int](), AccessGet).
			Method("get_X", TypeOf[int]()), CodeDefinition},
		{"no accessor", NewContract("C").Property("X", TypeOf[int](), 0), CodeDefinition},
		{"untyped property", NewContract("C").Property("X", nil, AccessGet), CodeDefinition},
		{"untyped parameter", NewContract("C").Method("M", nil, nil), CodeDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract, err := tt.builder.Build()
			assert.Nil(t, contract)
			assert.True(t, HasCode(err, tt.code), "got %v", err)
		})
	}

	assert.Panics(t, func() { NewContract("").MustBuild() })
}

func TestContractMethodResolution(t *testing.T) {
	contract, err := ContractOf[Account]()
	require.NoError(t, err)

	for name, want := range map[string]string{
		"Rename":   "Rename",
		"Email":    "get_Email",
		"SetEmail": "set_Email",
		"ID":       "get_ID",
	} {
		m, ok := ContractMethod(contract, name)
		require.True(t, ok, name)
		assert.Equal(t, want, m.Name())
	}
	_, ok := ContractMethod(contract, "SetID")
	assert.False(t, ok)
}

func TestGeneratedTypeImplementsGoInterfaceContract(t *testing.T) {
	contract, err := ContractOf[Account]()
	require.NoError(t, err)

	id, err := NewPropertyFor[Account]("ID")
	require.NoError(t, err)
	email, err := NewPropertyFor[Account]("Email")
	require.NoError(t, err)
	rename := NewMethodGenerator("Rename", TypeOf[string](), []*Type{TypeOf[string]()}, func(il *ILGenerator) {
		il.EmitArg(1)
		il.Emit(OpRet)
	})
	rename.SetOverrideDefinition(contract)

	typ, obj := compileOne(t, "GeneratedAccount", id, email, rename)
	assert.True(t, typ.Implements(contract))
	assert.Equal(t, []*Type{contract}, typ.Interfaces())

	_, err = obj.CallInterface(contract, "set_Email", "a@b.c")
	require.NoError(t, err)
	v, err := obj.CallInterface(contract, "get_Email")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", v)

	v, err = obj.CallInterface(contract, "Rename", "x")
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = obj.CallInterface(contract, "set_ID", 1)
	assert.True(t, HasCode(err, CodeResolution))
}

func TestMissingContractMemberFailsFinalization(t *testing.T) {
	id, err := NewPropertyFor[Account]("ID")
	require.NoError(t, err)

	_, err = NewTypeGenerator("Partial", id).Compile()
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeOverrideRegistration))
	assert.Contains(t, err.Error(), "Rename")
	assert.Contains(t, err.Error(), "get_Email")
}
