// Package scripting evaluates small user-supplied expressions against
// simulation state, such as scripted sink costs in the economy simulator.
// Expressions run in a sandboxed goja runtime with no host access.
package scripting

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// evalTimeout bounds a single expression evaluation. Expressions are
// arithmetic over a handful of numbers; anything slower is a runaway loop.
const evalTimeout = 250 * time.Millisecond

// Expr is a compiled expression. Compile once, then create one Evaluator per
// trial; Expr itself is safe for concurrent use.
type Expr struct {
	src  string
	prog *goja.Program
}

// Compile parses and compiles the expression source. The last evaluated
// value of the script is the expression's result, so plain expressions like
// "state.gold * 0.1" work without a return statement.
func Compile(src string) (*Expr, error) {
	prog, err := goja.Compile("expr", src, true)
	if err != nil {
		return nil, fmt.Errorf("compile expression: %w", err)
	}
	return &Expr{src: src, prog: prog}, nil
}

// Source returns the original expression text.
func (e *Expr) Source() string { return e.src }

// Evaluator owns a goja runtime bound to one trial. Not safe for concurrent
// use; each worker must hold its own.
type Evaluator struct {
	runtime *goja.Runtime
	prog    *goja.Program
}

// Evaluator creates a sandboxed runtime for this expression.
func (e *Expr) Evaluator() *Evaluator {
	runtime := goja.New()

	// Math stays available; everything that could reach outside does not.
	runtime.Set("require", goja.Undefined())
	runtime.Set("fetch", goja.Undefined())
	runtime.Set("XMLHttpRequest", goja.Undefined())
	runtime.Set("eval", goja.Undefined())
	runtime.Set("Function", goja.Undefined())

	return &Evaluator{runtime: runtime, prog: e.prog}
}

// Eval runs the expression with vars exposed as the global `state` object
// and returns its numeric result.
func (ev *Evaluator) Eval(vars map[string]float64) (float64, error) {
	state := ev.runtime.NewObject()
	for name, value := range vars {
		if err := state.Set(name, value); err != nil {
			return 0, fmt.Errorf("bind state.%s: %w", name, err)
		}
	}
	if err := ev.runtime.Set("state", state); err != nil {
		return 0, fmt.Errorf("bind state: %w", err)
	}

	timer := time.AfterFunc(evalTimeout, func() {
		ev.runtime.Interrupt("expression timeout")
	})
	defer timer.Stop()

	value, err := ev.runtime.RunProgram(ev.prog)
	if err != nil {
		return 0, fmt.Errorf("evaluate expression: %w", err)
	}
	return value.ToFloat(), nil
}
