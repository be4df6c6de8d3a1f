package vm

import (
	"github.com/Luminiscental/clearvm/pkg/bytecode"
	"github.com/Luminiscental/clearvm/pkg/value"
)

func init() {
	registerHandler(bytecode.RefLocal, opRefLocal)
	registerHandler(bytecode.Deref, opDeref)
	registerHandler(bytecode.SetRef, opSetRef)
}

func asUpvalue(v value.Value) (*Upvalue, bool) {
	if v.Tag() != value.Obj {
		return nil, false
	}
	u, ok := v.AsObj().(*Upvalue)
	return u, ok
}

func opRefLocal(vm *VM, offset int) *VMError {
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	idx := vm.fp + int(i)
	if _, aerr := vm.stack.at(idx, offset); aerr != nil {
		return aerr
	}

	up := vm.newUpvalue(idx)
	vm.heap.Alloc(up)
	vm.stack.slots[idx].Refs = append(vm.stack.slots[idx].Refs, up)

	return vm.stack.push(value.MakeObj(up), offset)
}

func opDeref(vm *VM, offset int) *VMError {
	return convert(vm, offset, func(v value.Value) (value.Value, *VMError) {
		up, ok := asUpvalue(v)
		if !ok {
			return value.Value{}, newError(KindType, offset, "DEREF requires an upvalue reference, got %s", v.Tag())
		}
		return up.Deref(), nil
	})
}

func opSetRef(vm *VM, offset int) *VMError {
	ref, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	up, ok := asUpvalue(ref)
	if !ok {
		return newError(KindType, offset, "SET_REF requires an upvalue reference, got %s", ref.Tag())
	}
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	return up.SetThrough(v, offset)
}
