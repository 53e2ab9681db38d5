package object

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	Internal ErrorKind = iota
	UnboundIdentifier
	UsedBeforeDefinition
	WrongArity
	NotCallable
	TypeMismatch
	ArithmeticOverflow
	DivisionByZero
	InvalidArgument
	UserFailure
	IOFailure
)

func (k ErrorKind) String() string {
	switch k {
	case UnboundIdentifier:
		return "UnboundIdentifier"
	case UsedBeforeDefinition:
		return "UsedBeforeDefinition"
	case WrongArity:
		return "WrongArity"
	case NotCallable:
		return "NotCallable"
	case TypeMismatch:
		return "TypeMismatch"
	case ArithmeticOverflow:
		return "ArithmeticOverflow"
	case DivisionByZero:
		return "DivisionByZero"
	case InvalidArgument:
		return "InvalidArgument"
	case UserFailure:
		return "UserFailure"
	case IOFailure:
		return "IOFailure"
	}
	return "Internal"
}

// RuntimeError aborts the whole evaluation. The language has no way to catch one.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewError(kind ErrorKind, format string, a ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// WrapError keeps err reachable through errors.Is and errors.As.
func WrapError(kind ErrorKind, err error, format string, a ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, a...), Err: err}
}

func (re *RuntimeError) Error() string {
	if re.Err != nil {
		return fmt.Sprintf("%s: %s: %v", re.Kind, re.Message, re.Err)
	}
	return fmt.Sprintf("%s: %s", re.Kind, re.Message)
}

func (re *RuntimeError) Unwrap() error { return re.Err }

// KindOf extracts the kind of the first RuntimeError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return Internal, false
}

// IsKind reports whether err carries a RuntimeError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
