package vm

import (
	"github.com/Luminiscental/clearvm/pkg/bytecode"
	"github.com/Luminiscental/clearvm/pkg/value"
)

func init() {
	registerHandler(bytecode.IntNeg, opIntNeg)
	registerHandler(bytecode.NumNeg, opNumNeg)
	registerHandler(bytecode.IntAdd, opIntAdd)
	registerHandler(bytecode.IntSub, opIntSub)
	registerHandler(bytecode.IntMul, opIntMul)
	registerHandler(bytecode.IntDiv, opIntDiv)
	registerHandler(bytecode.NumAdd, opNumAdd)
	registerHandler(bytecode.NumSub, opNumSub)
	registerHandler(bytecode.NumMul, opNumMul)
	registerHandler(bytecode.NumDiv, opNumDiv)
	registerHandler(bytecode.StrCat, opStrCat)
	registerHandler(bytecode.Not, opNot)
	registerHandler(bytecode.IntLess, opIntLess)
	registerHandler(bytecode.IntGreater, opIntGreater)
	registerHandler(bytecode.NumLess, opNumLess)
	registerHandler(bytecode.NumGreater, opNumGreater)
	registerHandler(bytecode.Equal, opEqual)
}

// popInts pops two operands pushed as `PUSH a; PUSH b; OP`, returning
// (a, b) in that source order, failing with KindType if either isn't int.
func popInts(vm *VM, offset int) (int32, int32, *VMError) {
	b, a, err := popPair(vm, offset)
	if err != nil {
		return 0, 0, err
	}
	if a.Tag() != value.Int || b.Tag() != value.Int {
		return 0, 0, newError(KindType, offset, "expected two ints, got %s and %s", a.Tag(), b.Tag())
	}
	return a.AsInt(), b.AsInt(), nil
}

func popNums(vm *VM, offset int) (float64, float64, *VMError) {
	b, a, err := popPair(vm, offset)
	if err != nil {
		return 0, 0, err
	}
	if a.Tag() != value.Num || b.Tag() != value.Num {
		return 0, 0, newError(KindType, offset, "expected two nums, got %s and %s", a.Tag(), b.Tag())
	}
	return a.AsNum(), b.AsNum(), nil
}

// popPair pops the top two stack values, returning (top, secondFromTop).
func popPair(vm *VM, offset int) (value.Value, value.Value, *VMError) {
	top, err := vm.stack.pop(offset)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	second, err := vm.stack.pop(offset)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	return top, second, nil
}

func opIntNeg(vm *VM, offset int) *VMError {
	return convert(vm, offset, func(v value.Value) (value.Value, *VMError) {
		if v.Tag() != value.Int {
			return value.Value{}, newError(KindType, offset, "INT_NEG requires int, got %s", v.Tag())
		}
		return value.MakeInt(-v.AsInt()), nil
	})
}

func opNumNeg(vm *VM, offset int) *VMError {
	return convert(vm, offset, func(v value.Value) (value.Value, *VMError) {
		if v.Tag() != value.Num {
			return value.Value{}, newError(KindType, offset, "NUM_NEG requires num, got %s", v.Tag())
		}
		return value.MakeNum(-v.AsNum()), nil
	})
}

func opIntAdd(vm *VM, offset int) *VMError {
	a, b, err := popInts(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeInt(a+b), offset)
}

func opIntSub(vm *VM, offset int) *VMError {
	a, b, err := popInts(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeInt(a-b), offset)
}

func opIntMul(vm *VM, offset int) *VMError {
	a, b, err := popInts(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeInt(a*b), offset)
}

func opIntDiv(vm *VM, offset int) *VMError {
	a, b, err := popInts(vm, offset)
	if err != nil {
		return err
	}
	if b == 0 {
		return newError(KindArith, offset, "integer division by zero")
	}
	return vm.stack.push(value.MakeInt(a/b), offset) // Go's int division truncates toward zero
}

func opNumAdd(vm *VM, offset int) *VMError {
	a, b, err := popNums(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeNum(a+b), offset)
}

func opNumSub(vm *VM, offset int) *VMError {
	a, b, err := popNums(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeNum(a-b), offset)
}

func opNumMul(vm *VM, offset int) *VMError {
	a, b, err := popNums(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeNum(a*b), offset)
}

func opNumDiv(vm *VM, offset int) *VMError {
	a, b, err := popNums(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeNum(a/b), offset) // ±Inf/NaN per IEEE-754, never an error
}

func opStrCat(vm *VM, offset int) *VMError {
	top, second, err := popPair(vm, offset)
	if err != nil {
		return err
	}
	a, aok := asString(second)
	b, bok := asString(top)
	if !aok || !bok {
		return newError(KindType, offset, "STR_CAT requires two strings")
	}
	cat := vm.internString(string(a.Bytes) + string(b.Bytes))
	return vm.stack.push(value.MakeObj(cat), offset)
}

func asString(v value.Value) (*value.String, bool) {
	if v.Tag() != value.Obj {
		return nil, false
	}
	s, ok := v.AsObj().(*value.String)
	return s, ok
}

func opNot(vm *VM, offset int) *VMError {
	return convert(vm, offset, func(v value.Value) (value.Value, *VMError) {
		if v.Tag() != value.Bool {
			return value.Value{}, newError(KindType, offset, "NOT requires bool, got %s", v.Tag())
		}
		return value.MakeBool(!v.AsBool()), nil
	})
}

func opIntLess(vm *VM, offset int) *VMError {
	a, b, err := popInts(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeBool(a < b), offset)
}

func opIntGreater(vm *VM, offset int) *VMError {
	a, b, err := popInts(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeBool(a > b), offset)
}

func opNumLess(vm *VM, offset int) *VMError {
	a, b, err := popNums(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeBool(a < b-value.Epsilon), offset)
}

func opNumGreater(vm *VM, offset int) *VMError {
	a, b, err := popNums(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeBool(a > b+value.Epsilon), offset)
}

func opEqual(vm *VM, offset int) *VMError {
	top, second, err := popPair(vm, offset)
	if err != nil {
		return err
	}
	return vm.stack.push(value.MakeBool(value.Equal(second, top)), offset)
}
