package builtins

import "lang417/internal/object"

func funcEquals(args []object.Expression) (object.Expression, error) {
	if err := arity("equals?", args, 2); err != nil {
		return nil, err
	}
	return object.NativeBoolToBooleanObject(object.Equal(args[0], args[1])), nil
}

func funcGreaterThan(args []object.Expression) (object.Expression, error) {
	a, b, err := binaryIntegers("greaterThan?", args)
	if err != nil {
		return nil, err
	}
	return object.NativeBoolToBooleanObject(a > b), nil
}

func funcLessThan(args []object.Expression) (object.Expression, error) {
	a, b, err := binaryIntegers("lessThan?", args)
	if err != nil {
		return nil, err
	}
	return object.NativeBoolToBooleanObject(a < b), nil
}

func funcZero(args []object.Expression) (object.Expression, error) {
	if err := arity("zero?", args, 1); err != nil {
		return nil, err
	}
	values, err := integers("zero?", args)
	if err != nil {
		return nil, err
	}
	return object.NativeBoolToBooleanObject(values[0] == 0), nil
}

// funcOr checks the type of every argument before looking at any value.
func funcOr(args []object.Expression) (object.Expression, error) {
	if err := atLeast("or?", args, 2); err != nil {
		return nil, err
	}
	values, err := booleans("or?", args)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if v {
			return object.TRUE, nil
		}
	}
	return object.FALSE, nil
}

func funcAnd(args []object.Expression) (object.Expression, error) {
	if err := atLeast("and?", args, 2); err != nil {
		return nil, err
	}
	values, err := booleans("and?", args)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if !v {
			return object.FALSE, nil
		}
	}
	return object.TRUE, nil
}

func funcNot(args []object.Expression) (object.Expression, error) {
	if err := arity("not?", args, 1); err != nil {
		return nil, err
	}
	values, err := booleans("not?", args)
	if err != nil {
		return nil, err
	}
	return object.NativeBoolToBooleanObject(!values[0]), nil
}
