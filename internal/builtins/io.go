package builtins

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"lang417/internal/object"
	"os"
	"strings"
)

// display renders strings without quotes and everything else in its textual form.
func display(args []object.Expression) string {
	var sb strings.Builder
	for _, arg := range args {
		if s, ok := arg.(*object.String); ok {
			sb.WriteString(s.Value)
		} else {
			sb.WriteString(arg.Inspect())
		}
	}
	return sb.String()
}

// funcPrint writes its arguments as one line and returns that line.
func (lib *library) funcPrint(args []object.Expression) (object.Expression, error) {
	line := display(args)
	if _, err := fmt.Fprintln(lib.out, line); err != nil {
		return nil, object.WrapError(object.IOFailure, err, "print")
	}
	return &object.String{Value: line}, nil
}

func funcFail(args []object.Expression) (object.Expression, error) {
	if len(args) == 0 {
		return nil, object.NewError(object.UserFailure, "fail called")
	}
	return nil, object.NewError(object.UserFailure, "%s", display(args))
}

// funcReadInput reads the rest of the input and joins its lines without separators.
func (lib *library) funcReadInput(args []object.Expression) (object.Expression, error) {
	if err := arity("readInput", args, 0); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for {
		line, err := lib.in.ReadString('\n')
		sb.WriteString(strings.TrimRight(line, "\r\n"))
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, object.WrapError(object.IOFailure, err, "reading input")
		}
	}
	return &object.String{Value: sb.String()}, nil
}

// funcReadLine returns one line without its terminator, or "" at end of input.
func (lib *library) funcReadLine(args []object.Expression) (object.Expression, error) {
	if err := arity("readLine", args, 0); err != nil {
		return nil, err
	}
	line, err := lib.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, object.WrapError(object.IOFailure, err, "reading a line")
	}
	return &object.String{Value: strings.TrimRight(line, "\r\n")}, nil
}

// funcReadFile returns the file with every line terminated by "\n".
func funcReadFile(args []object.Expression) (object.Expression, error) {
	if err := arity("readFile", args, 1); err != nil {
		return nil, err
	}
	path, err := stringArg("readFile", args[0])
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, object.WrapError(object.IOFailure, err, "reading the file %s", path)
	}
	defer f.Close()

	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		sb.WriteString(strings.TrimRight(scanner.Text(), "\r"))
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, object.WrapError(object.IOFailure, err, "reading the file %s", path)
	}
	return &object.String{Value: sb.String()}, nil
}
