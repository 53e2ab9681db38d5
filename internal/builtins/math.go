package builtins

import (
	"lang417/internal/object"
	"math"
)

func binaryIntegers(name string, args []object.Expression) (int64, int64, error) {
	if err := arity(name, args, 2); err != nil {
		return 0, 0, err
	}
	values, err := integers(name, args)
	if err != nil {
		return 0, 0, err
	}
	return values[0], values[1], nil
}

func overflow(name string, a, b int64) error {
	return object.NewError(object.ArithmeticOverflow, "integer overflow in `%s` of %d and %d", name, a, b)
}

func funcAdd(args []object.Expression) (object.Expression, error) {
	a, b, err := binaryIntegers("add", args)
	if err != nil {
		return nil, err
	}
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return nil, overflow("add", a, b)
	}
	return &object.Integer{Value: a + b}, nil
}

func funcSub(args []object.Expression) (object.Expression, error) {
	a, b, err := binaryIntegers("sub", args)
	if err != nil {
		return nil, err
	}
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return nil, overflow("sub", a, b)
	}
	return &object.Integer{Value: a - b}, nil
}

func funcMul(args []object.Expression) (object.Expression, error) {
	a, b, err := binaryIntegers("mul", args)
	if err != nil {
		return nil, err
	}
	if a == 0 || b == 0 {
		return &object.Integer{Value: 0}, nil
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return nil, overflow("mul", a, b)
	}
	return &object.Integer{Value: c}, nil
}

// funcDiv truncates toward zero.
func funcDiv(args []object.Expression) (object.Expression, error) {
	a, b, err := binaryIntegers("div", args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, object.NewError(object.DivisionByZero, "division by zero in `div`")
	}
	if a == math.MinInt64 && b == -1 {
		return nil, overflow("div", a, b)
	}
	return &object.Integer{Value: a / b}, nil
}

// funcMod takes the sign of the dividend.
func funcMod(args []object.Expression) (object.Expression, error) {
	a, b, err := binaryIntegers("mod", args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, object.NewError(object.DivisionByZero, "division by zero in `mod`")
	}
	return &object.Integer{Value: a % b}, nil
}
