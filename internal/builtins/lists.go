package builtins

import "lang417/internal/object"

// Lists are never modified in place; every procedure returns a new one.

func funcCons(args []object.Expression) (object.Expression, error) {
	if len(args) == 0 {
		return &object.List{Elements: []object.Expression{}}, nil
	}
	if err := arity("cons", args, 2); err != nil {
		return nil, err
	}
	list, err := listArg("cons", args[1])
	if err != nil {
		return nil, err
	}
	elements := make([]object.Expression, 0, len(list.Elements)+1)
	elements = append(elements, args[0])
	elements = append(elements, list.Elements...)
	return &object.List{Elements: elements}, nil
}

func funcHead(args []object.Expression) (object.Expression, error) {
	if err := arity("head", args, 1); err != nil {
		return nil, err
	}
	list, err := listArg("head", args[0])
	if err != nil {
		return nil, err
	}
	if len(list.Elements) == 0 {
		return nil, object.NewError(object.InvalidArgument, "cannot get head of an empty list")
	}
	return list.Elements[0], nil
}

func funcTail(args []object.Expression) (object.Expression, error) {
	if err := arity("tail", args, 1); err != nil {
		return nil, err
	}
	list, err := listArg("tail", args[0])
	if err != nil {
		return nil, err
	}
	if len(list.Elements) == 0 {
		return nil, object.NewError(object.InvalidArgument, "cannot get tail of an empty list")
	}
	elements := make([]object.Expression, len(list.Elements)-1)
	copy(elements, list.Elements[1:])
	return &object.List{Elements: elements}, nil
}

func funcIsEmpty(args []object.Expression) (object.Expression, error) {
	if err := arity("isEmpty?", args, 1); err != nil {
		return nil, err
	}
	list, err := listArg("isEmpty?", args[0])
	if err != nil {
		return nil, err
	}
	return object.NativeBoolToBooleanObject(len(list.Elements) == 0), nil
}

func funcReverse(args []object.Expression) (object.Expression, error) {
	if err := arity("reverse", args, 1); err != nil {
		return nil, err
	}
	list, err := listArg("reverse", args[0])
	if err != nil {
		return nil, err
	}
	n := len(list.Elements)
	elements := make([]object.Expression, n)
	for i, e := range list.Elements {
		elements[n-1-i] = e
	}
	return &object.List{Elements: elements}, nil
}

// funcAppend puts the elements of the first list in front of the second.
func funcAppend(args []object.Expression) (object.Expression, error) {
	if err := arity("append", args, 2); err != nil {
		return nil, err
	}
	front, err := listArg("append", args[0])
	if err != nil {
		return nil, err
	}
	back, err := listArg("append", args[1])
	if err != nil {
		return nil, err
	}
	elements := make([]object.Expression, 0, len(front.Elements)+len(back.Elements))
	elements = append(elements, front.Elements...)
	elements = append(elements, back.Elements...)
	return &object.List{Elements: elements}, nil
}

// funcMap calls a procedure or a lambda of one argument on every element.
func (lib *library) funcMap(args []object.Expression) (object.Expression, error) {
	if err := arity("map", args, 2); err != nil {
		return nil, err
	}
	fn := args[0]
	switch fn.(type) {
	case *object.Procedure, *object.Lambda:
	default:
		return nil, typeError("map", "PROCEDURE or LAMBDA", fn)
	}
	list, err := listArg("map", args[1])
	if err != nil {
		return nil, err
	}
	if lib.apply == nil {
		return nil, object.NewError(object.Internal, "`map` is not available without an evaluator")
	}

	elements := make([]object.Expression, len(list.Elements))
	for i, e := range list.Elements {
		val, err := lib.apply(fn, []object.Expression{e})
		if err != nil {
			return nil, err
		}
		elements[i] = val
	}
	return &object.List{Elements: elements}, nil
}
