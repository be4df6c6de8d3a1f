package vm

import (
	"github.com/Luminiscental/clearvm/pkg/bytecode"
	"github.com/Luminiscental/clearvm/pkg/value"
)

func init() {
	registerHandler(bytecode.IsValType, opIsValType)
	registerHandler(bytecode.IsObjType, opIsObjType)
}

func opIsValType(vm *VM, offset int) *VMError {
	t, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	top, perr := vm.stack.peek(0, offset)
	if perr != nil {
		return perr
	}
	return vm.stack.push(value.MakeBool(top.Tag() == value.Tag(t)), offset)
}

func opIsObjType(vm *VM, offset int) *VMError {
	t, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	top, perr := vm.stack.peek(0, offset)
	if perr != nil {
		return perr
	}
	if top.Tag() != value.Obj {
		return vm.stack.push(value.False, offset)
	}
	return vm.stack.push(value.MakeBool(top.AsObj().Kind() == value.ObjKind(t)), offset)
}
