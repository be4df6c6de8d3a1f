package vm

import (
	"github.com/Luminiscental/clearvm/pkg/bytecode"
	"github.com/Luminiscental/clearvm/pkg/value"
)

func init() {
	registerHandler(bytecode.Struct, opStruct)
	registerHandler(bytecode.Destruct, opDestruct)
	registerHandler(bytecode.GetField, opGetField)
	registerHandler(bytecode.ExtractField, opExtractField)
	registerHandler(bytecode.SetField, opSetField)
	registerHandler(bytecode.InsertField, opInsertField)
}

func asStruct(v value.Value) (*value.Struct, bool) {
	if v.Tag() != value.Obj {
		return nil, false
	}
	s, ok := v.AsObj().(*value.Struct)
	return s, ok
}

func opStruct(vm *VM, offset int) *VMError {
	n, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	fields := make([]value.Value, n)
	for i := 0; i < int(n); i++ {
		v, perr := vm.stack.pop(offset)
		if perr != nil {
			return perr
		}
		v.Refs = nil
		fields[i] = v
	}
	s := vm.heap.Alloc(&value.Struct{Fields: fields}).(*value.Struct)
	return vm.stack.push(value.MakeObj(s), offset)
}

func opDestruct(vm *VM, offset int) *VMError {
	k, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	top, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	s, ok := asStruct(top)
	if !ok {
		return newError(KindType, offset, "DESTRUCT requires a struct, got %s", top.Tag())
	}
	if int(k) > len(s.Fields) {
		return newError(KindRange, offset, "DESTRUCT skip %d exceeds field count %d", k, len(s.Fields))
	}
	for _, f := range s.Fields[k:] {
		if perr := vm.stack.push(f, offset); perr != nil {
			return perr
		}
	}
	return nil
}

func opGetField(vm *VM, offset int) *VMError {
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	top, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	s, ok := asStruct(top)
	if !ok {
		return newError(KindType, offset, "GET_FIELD requires a struct, got %s", top.Tag())
	}
	f, ok := s.GetField(int(i))
	if !ok {
		return newError(KindRange, offset, "field index %d out of range (count %d)", i, len(s.Fields))
	}
	return vm.stack.push(f, offset)
}

func opExtractField(vm *VM, offset int) *VMError {
	off, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	top, perr := vm.stack.peek(int(off), offset)
	if perr != nil {
		return perr
	}
	s, ok := asStruct(top)
	if !ok {
		return newError(KindType, offset, "EXTRACT_FIELD requires a struct, got %s", top.Tag())
	}
	f, ok := s.GetField(int(i))
	if !ok {
		return newError(KindRange, offset, "field index %d out of range (count %d)", i, len(s.Fields))
	}
	return vm.stack.push(f, offset)
}

func opSetField(vm *VM, offset int) *VMError {
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	v.Refs = nil
	top, perr := vm.stack.peek(0, offset)
	if perr != nil {
		return perr
	}
	s, ok := asStruct(top)
	if !ok {
		return newError(KindType, offset, "SET_FIELD requires a struct, got %s", top.Tag())
	}
	if !s.SetField(int(i), v) {
		return newError(KindRange, offset, "field index %d out of range (count %d)", i, len(s.Fields))
	}
	return nil
}

func opInsertField(vm *VM, offset int) *VMError {
	off, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	i, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	v.Refs = nil
	target, perr := vm.stack.peek(int(off), offset)
	if perr != nil {
		return perr
	}
	s, ok := asStruct(target)
	if !ok {
		return newError(KindType, offset, "INSERT_FIELD requires a struct, got %s", target.Tag())
	}
	if !s.SetField(int(i), v) {
		return newError(KindRange, offset, "field index %d out of range (count %d)", i, len(s.Fields))
	}
	return nil
}
