// Package watch evaluates Starlark stop conditions against the CPU state.
//
// A condition is a single Starlark expression. Registers are predeclared as
// integers (a, b, c, d, e, h, l, f, bc, de, hl, sp, pc, psw), flags as
// booleans (fs, fz, fa, fp, fc), plus iff and halted. mem(addr) and
// word(addr) read guest memory.
package watch

import (
	"errors"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/oisee/i8080/internal/msg"
	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/engine"
)

var f = msg.From

// ErrCondition is wrapped by every Error.
var ErrCondition = errors.New(f("bad stop condition"))

// Error reports a condition that failed to compile or evaluate.
type Error struct {
	Expr string
	Err  error
}

func (err *Error) Error() string {
	return f("condition %q: %v", err.Expr, err.Err)
}

func (err *Error) Unwrap() []error {
	return []error{ErrCondition, err.Err}
}

var names = map[string]bool{
	"a": true, "b": true, "c": true, "d": true, "e": true, "h": true, "l": true, "f": true,
	"bc": true, "de": true, "hl": true, "sp": true, "pc": true, "psw": true,
	"fs": true, "fz": true, "fa": true, "fp": true, "fc": true,
	"iff": true, "halted": true,
	"mem": true, "word": true,
}

// Cond is a compiled stop condition.
type Cond struct {
	expr string
	prog *starlark.Program
}

// Compile parses and resolves expr.
func Compile(expr string) (*Cond, error) {
	opts := syntax.FileOptions{}
	src := "rc = (" + expr + ")\n"
	_, prog, err := starlark.SourceProgramOptions(&opts, "cond", src, func(name string) bool {
		return names[name]
	})
	if err != nil {
		return nil, &Error{Expr: expr, Err: err}
	}
	return &Cond{expr: expr, prog: prog}, nil
}

func (c *Cond) String() string {
	return c.expr
}

// Eval runs the condition against s, reading memory through mem.
func (c *Cond) Eval(s *cpu.State, mem cpu.Bus) (bool, error) {
	thread := starlark.Thread{Name: "watch"}
	globals, err := c.prog.Init(&thread, env(s, mem))
	if err != nil {
		return false, &Error{Expr: c.expr, Err: err}
	}
	rc, ok := globals["rc"]
	if !ok {
		return false, &Error{Expr: c.expr, Err: errors.New(f("no result"))}
	}
	return bool(rc.Truth()), nil
}

// StopFunc adapts the condition to engine.Run.
func (c *Cond) StopFunc() engine.StopFunc {
	return func(e *engine.Engine) (bool, error) {
		return c.Eval(&e.State, e.Bus())
	}
}

func env(s *cpu.State, mem cpu.Bus) starlark.StringDict {
	i := func(v int) starlark.Value { return starlark.MakeInt(v) }
	flag := func(mask uint8) starlark.Value { return starlark.Bool(s.F&mask != 0) }
	return starlark.StringDict{
		"a": i(int(s.A)), "b": i(int(s.B)), "c": i(int(s.C)), "d": i(int(s.D)),
		"e": i(int(s.E)), "h": i(int(s.H)), "l": i(int(s.L)), "f": i(int(s.F)),
		"bc": i(int(s.BC())), "de": i(int(s.DE())), "hl": i(int(s.HL())),
		"sp": i(int(s.SP)), "pc": i(int(s.PC)), "psw": i(int(s.PSW())),
		"fs": flag(cpu.FlagS), "fz": flag(cpu.FlagZ), "fa": flag(cpu.FlagA),
		"fp": flag(cpu.FlagP), "fc": flag(cpu.FlagC),
		"iff":    starlark.Bool(s.IFF),
		"halted": starlark.Bool(s.Halted),
		"mem": starlark.NewBuiltin("mem", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var addr int
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr); err != nil {
				return nil, err
			}
			return i(int(mem.Read(uint16(addr)))), nil
		}),
		"word": starlark.NewBuiltin("word", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var addr int
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr); err != nil {
				return nil, err
			}
			return i(int(cpu.ReadWord(mem, uint16(addr)))), nil
		}),
	}
}
