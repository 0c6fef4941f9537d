// Package query evaluates expressions against a CV document.
//
// Expressions use the expr language. Every top-level document key is a
// variable, so "len(skills)", "personal.fullName" and
// "map(filter(jobs, .current), .company)" all work.
package query

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aretw0/cvpro/pkg/core"
)

// ErrEmpty is returned for a blank expression.
var ErrEmpty = errors.New("expression must not be empty")

// Engine compiles and caches expressions.
type Engine struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
}

// New creates an engine with an empty program cache.
func New() *Engine {
	return &Engine{programs: make(map[string]*vm.Program)}
}

// Compile checks the expression and caches its program.
func (e *Engine) Compile(expression string) (*vm.Program, error) {
	if expression == "" {
		return nil, ErrEmpty
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if program, ok := e.programs[expression]; ok {
		return program, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.Function("level", levelFunc, new(func(any) int)),
		expr.Function("levelKey", levelKeyFunc, new(func(any) string)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", expression, err)
	}
	e.programs[expression] = program
	return program, nil
}

// Eval runs expression against doc.
func (e *Engine) Eval(expression string, doc core.Document) (any, error) {
	program, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	result, err := expr.Run(program, environment(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %q: %w", expression, err)
	}
	return result, nil
}

// Match evaluates a boolean expression. Non-boolean results are an error.
func (e *Engine) Match(expression string, doc core.Document) (bool, error) {
	result, err := e.Eval(expression, doc)
	if err != nil {
		return false, err
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("expression %q returned %T, want bool", expression, result)
	}
	return ok, nil
}

// Eval runs expression with a throwaway engine.
func Eval(expression string, doc core.Document) (any, error) {
	return New().Eval(expression, doc)
}

func environment(doc core.Document) map[string]any {
	env := make(map[string]any, len(doc)+1)
	for key, value := range doc {
		env[key] = value
	}
	env["now"] = time.Now()
	return env
}

func levelFunc(params ...any) (any, error) {
	record, ok := params[0].(core.Node)
	if !ok {
		return 0, nil
	}
	return core.Level(record), nil
}

func levelKeyFunc(params ...any) (any, error) {
	level, err := levelFunc(params...)
	if err != nil {
		return nil, err
	}
	return core.LevelKey(level.(int)), nil
}
