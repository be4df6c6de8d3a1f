package vm

import (
	"math"

	"github.com/Luminiscental/clearvm/pkg/bytecode"
	"github.com/Luminiscental/clearvm/pkg/value"
)

func init() {
	registerHandler(bytecode.PushConst, opPushConst)
	registerHandler(bytecode.PushTrue, opPushTrue)
	registerHandler(bytecode.PushFalse, opPushFalse)
	registerHandler(bytecode.PushNil, opPushNil)

	registerHandler(bytecode.SetGlobal, opSetGlobal)
	registerHandler(bytecode.PushGlobal, opPushGlobal)
	registerHandler(bytecode.SetLocal, opSetLocal)
	registerHandler(bytecode.PushLocal, opPushLocal)

	registerHandler(bytecode.OpInt, opConvInt)
	registerHandler(bytecode.OpBool, opConvBool)
	registerHandler(bytecode.OpNum, opConvNum)
	registerHandler(bytecode.OpStr, opConvStr)
}

func opPushConst(vm *VM, offset int) *VMError {
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	if int(i) >= len(vm.constants) {
		return newError(KindRange, offset, "constant index %d out of range (pool has %d)", i, len(vm.constants))
	}
	return vm.stack.push(vm.constants[i], offset)
}

func opPushTrue(vm *VM, offset int) *VMError  { return vm.stack.push(value.True, offset) }
func opPushFalse(vm *VM, offset int) *VMError { return vm.stack.push(value.False, offset) }
func opPushNil(vm *VM, offset int) *VMError   { return vm.stack.push(value.NilValue, offset) }

func opSetGlobal(vm *VM, offset int) *VMError {
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	vm.globals[i] = global{present: true, value: v}
	return nil
}

func opPushGlobal(vm *VM, offset int) *VMError {
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	g := vm.globals[i]
	if !g.present {
		return newError(KindRange, offset, "global %d is not set", i)
	}
	return vm.stack.push(g.value, offset)
}

func opSetLocal(vm *VM, offset int) *VMError {
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	return vm.stack.set(vm.fp+int(i), v, offset)
}

func opPushLocal(vm *VM, offset int) *VMError {
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	v, aerr := vm.stack.at(vm.fp+int(i), offset)
	if aerr != nil {
		return aerr
	}
	return vm.stack.push(v, offset)
}

// convert replaces the top of stack in place (preserving its back-link
// list, same rationale as SET_LOCAL) with the result of f, which reports
// a TYPE error for operand kinds the conversion rejects.
func convert(vm *VM, offset int, f func(value.Value) (value.Value, *VMError)) *VMError {
	top, perr := vm.stack.peek(0, offset)
	if perr != nil {
		return perr
	}
	converted, cerr := f(top)
	if cerr != nil {
		return cerr
	}
	return vm.stack.set(vm.stack.sp-1, converted, offset)
}

func opConvInt(vm *VM, offset int) *VMError {
	return convert(vm, offset, func(v value.Value) (value.Value, *VMError) {
		switch v.Tag() {
		case value.Bool:
			if v.AsBool() {
				return value.MakeInt(1), nil
			}
			return value.MakeInt(0), nil
		case value.Int:
			return v, nil
		case value.Nil:
			return value.MakeInt(0), nil
		case value.Num:
			return value.MakeInt(int32(v.AsNum())), nil
		default:
			return value.Value{}, newError(KindType, offset, "cannot convert %s to int", v.Tag())
		}
	})
}

func opConvBool(vm *VM, offset int) *VMError {
	return convert(vm, offset, func(v value.Value) (value.Value, *VMError) {
		switch v.Tag() {
		case value.Bool:
			return v, nil
		case value.Int:
			return value.MakeBool(v.AsInt() != 0), nil
		case value.Nil:
			return value.False, nil
		case value.Num:
			return value.MakeBool(math.Abs(v.AsNum()) < value.Epsilon), nil
		default:
			return value.Value{}, newError(KindType, offset, "cannot convert %s to bool", v.Tag())
		}
	})
}

func opConvNum(vm *VM, offset int) *VMError {
	return convert(vm, offset, func(v value.Value) (value.Value, *VMError) {
		switch v.Tag() {
		case value.Bool:
			if v.AsBool() {
				return value.MakeNum(1.0), nil
			}
			return value.MakeNum(0.0), nil
		case value.Int:
			return value.MakeNum(float64(v.AsInt())), nil
		case value.Nil:
			return value.MakeNum(0.0), nil
		case value.Num:
			return v, nil
		default:
			return value.Value{}, newError(KindType, offset, "cannot convert %s to num", v.Tag())
		}
	})
}

func opConvStr(vm *VM, offset int) *VMError {
	return convert(vm, offset, func(v value.Value) (value.Value, *VMError) {
		str := vm.internString(value.Print(v))
		return value.MakeObj(str), nil
	})
}
