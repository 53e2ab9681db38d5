package builtins

import (
	"lang417/internal/object"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// String positions count runes, not bytes.

func funcConcat(args []object.Expression) (object.Expression, error) {
	if err := atLeast("concat", args, 2); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, arg := range args {
		s, err := stringArg("concat", arg)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	return &object.String{Value: sb.String()}, nil
}

func funcCharAt(args []object.Expression) (object.Expression, error) {
	if err := arity("charAt", args, 2); err != nil {
		return nil, err
	}
	s, err := stringArg("charAt", args[0])
	if err != nil {
		return nil, err
	}
	index, ok := args[1].(*object.Integer)
	if !ok {
		return nil, typeError("charAt", object.INTEGER_OBJ, args[1])
	}

	runes := []rune(s)
	if index.Value < 0 || index.Value >= int64(len(runes)) {
		return nil, object.NewError(object.InvalidArgument,
			"index %d out of bounds for string %q", index.Value, s)
	}
	return &object.String{Value: string(runes[index.Value])}, nil
}

func funcSubstring(args []object.Expression) (object.Expression, error) {
	if err := arity("substring", args, 3); err != nil {
		return nil, err
	}
	s, err := stringArg("substring", args[0])
	if err != nil {
		return nil, err
	}
	bounds, err := integers("substring", args[1:])
	if err != nil {
		return nil, err
	}

	runes := []rune(s)
	start, end := bounds[0], bounds[1]
	if start < 0 || end > int64(len(runes)) || start > end {
		return nil, object.NewError(object.InvalidArgument,
			"invalid substring indices %d and %d for string %q", start, end, s)
	}
	return &object.String{Value: string(runes[start:end])}, nil
}

func funcLength(args []object.Expression) (object.Expression, error) {
	if err := arity("length", args, 1); err != nil {
		return nil, err
	}
	s, err := stringArg("length", args[0])
	if err != nil {
		return nil, err
	}
	return &object.Integer{Value: int64(utf8.RuneCountInString(s))}, nil
}

func singleRune(name string, args []object.Expression) (rune, error) {
	if err := arity(name, args, 1); err != nil {
		return 0, err
	}
	s, err := stringArg(name, args[0])
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, object.NewError(object.InvalidArgument, "string %q is not 1 character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func funcIsDigit(args []object.Expression) (object.Expression, error) {
	r, err := singleRune("isDigit?", args)
	if err != nil {
		return nil, err
	}
	return object.NativeBoolToBooleanObject(unicode.IsDigit(r)), nil
}

func funcIsLetter(args []object.Expression) (object.Expression, error) {
	r, err := singleRune("isLetter?", args)
	if err != nil {
		return nil, err
	}
	return object.NativeBoolToBooleanObject(unicode.IsLetter(r)), nil
}

// funcParseInt yields false when the text is not a base 10 integer.
func funcParseInt(args []object.Expression) (object.Expression, error) {
	if err := arity("parseInt", args, 1); err != nil {
		return nil, err
	}
	s, err := stringArg("parseInt", args[0])
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return object.FALSE, nil
	}
	return &object.Integer{Value: n}, nil
}
