package object

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is one frame of the binding chain. Frames are shared by every closure that captured
// them and live for as long as any of those closures does.
type Environment struct {
	ID       uint64
	Bindings map[string]Expression
	Outer    *Environment
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextEnvID(),
		Bindings: make(map[string]Expression),
	}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	if outer != nil && slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("new frame",
			slog.Uint64("id", env.ID),
			slog.Uint64("outer", outer.ID),
		)
	}
	return env
}

// Get walks outward and returns the nearest binding of name.
func (e *Environment) Get(name string) (Expression, bool) {
	for env := e; env != nil; env = env.Outer {
		if val, ok := env.Bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// GetLocal looks at this frame only.
func (e *Environment) GetLocal(name string) (Expression, bool) {
	val, ok := e.Bindings[name]
	return val, ok
}

// Define binds name in this frame, replacing a binding of the same name.
func (e *Environment) Define(name string, val Expression) {
	e.Bindings[name] = val
}

// Declare reserves name in this frame with the placeholder.
func (e *Environment) Declare(name string) {
	e.Bindings[name] = DUMMY
}

// FindBinding returns the nearest frame that binds name.
func (e *Environment) FindBinding(name string) (*Environment, bool) {
	for env := e; env != nil; env = env.Outer {
		if _, ok := env.Bindings[name]; ok {
			return env, true
		}
	}
	return nil, false
}

// FindPlaceholder returns the nearest frame in which name is still bound to the placeholder.
func (e *Environment) FindPlaceholder(name string) (*Environment, bool) {
	for env := e; env != nil; env = env.Outer {
		if val, ok := env.Bindings[name]; ok && IsDummy(val) {
			return env, true
		}
	}
	return nil, false
}

// Names lists the bindings of this frame in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.Bindings))
	for name := range e.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
