package starlark

import (
	"errors"
	"fmt"
	"log/slog"

	starlarkmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leaptable/pkg/aggregate"
	"github.com/leapstack-labs/leaptable/pkg/table"
)

// EntryPoint is the function every aggregation script must define.
const EntryPoint = "aggregate"

// Script is the source of one user-defined aggregation.
type Script struct {
	Key    string // registry key, e.g. "p95"
	Text   string // column text; empty uses the title-cased key
	Source string
	// Filename labels the script in error messages (defaults to "<key>.star")
	Filename string
}

func (s Script) filename() string {
	if s.Filename != "" {
		return s.Filename
	}
	return s.Key + ".star"
}

// ScriptError reports a script that failed to load or run.
type ScriptError struct {
	Key     string
	File    string
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("aggregation script %q (%s): %s", e.Key, e.File, e.Message)
}

// Predeclared returns the globals visible to aggregation scripts.
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"math": starlarkmath.Module,
	}
}

// Compiler turns scripts into aggregators sharing one thread pool.
type Compiler struct {
	pool   *ThreadPool
	logger *slog.Logger
}

// CompilerConfig holds compiler options.
type CompilerConfig struct {
	// MaxSteps bounds each aggregate call (optional, DefaultMaxSteps if zero)
	MaxSteps uint64
	// PoolSize is the number of idle threads kept (optional)
	PoolSize int
	// Logger receives script print() output (optional, uses discard if nil)
	Logger *slog.Logger
}

// NewCompiler creates a compiler.
func NewCompiler(cfg CompilerConfig) *Compiler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{
		pool:   NewThreadPool(cfg.PoolSize, cfg.MaxSteps, logger),
		logger: logger,
	}
}

// Aggregator is a compiled script. Its globals are frozen, so it may be
// called from several goroutines.
type Aggregator struct {
	script Script
	fn     *starlark.Function
	pool   *ThreadPool
}

// Compile executes the script once and resolves its aggregate function.
func (c *Compiler) Compile(s Script) (*Aggregator, error) {
	file := s.filename()
	thread := c.pool.Get(file)
	defer c.pool.Put(thread)

	globals, err := starlark.ExecFile(thread, file, s.Source, Predeclared()) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, &ScriptError{Key: s.Key, File: file, Message: errorText(err)}
	}

	v, ok := globals[EntryPoint]
	if !ok {
		return nil, &ScriptError{Key: s.Key, File: file, Message: fmt.Sprintf("no %s(values) function defined", EntryPoint)}
	}
	fn, ok := v.(*starlark.Function)
	if !ok {
		return nil, &ScriptError{Key: s.Key, File: file, Message: fmt.Sprintf("%s is a %s, not a function", EntryPoint, v.Type())}
	}
	if fn.NumParams() != 1 {
		return nil, &ScriptError{Key: s.Key, File: file, Message: fmt.Sprintf("%s must take exactly one parameter, takes %d", EntryPoint, fn.NumParams())}
	}
	globals.Freeze()

	c.logger.Debug("compiled aggregation script", "key", s.Key, "file", file)
	return &Aggregator{script: s, fn: fn, pool: c.pool}, nil
}

// Key returns the registry key of the script.
func (a *Aggregator) Key() string { return a.script.Key }

// Call runs the aggregate function over values.
func (a *Aggregator) Call(values []float64) (table.Value, error) {
	thread := a.pool.Get(a.script.filename())
	defer a.pool.Put(thread)

	res, err := starlark.Call(thread, a.fn, starlark.Tuple{ValuesToStarlark(values)}, nil)
	if err != nil {
		return table.Value{}, &ScriptError{Key: a.script.Key, File: a.script.filename(), Message: errorText(err)}
	}
	cell, err := ToCell(res)
	if err != nil {
		return table.Value{}, &ScriptError{Key: a.script.Key, File: a.script.filename(), Message: err.Error()}
	}
	return cell, nil
}

// Register compiles every script and adds it to reg. Nothing is registered
// when any script fails to compile.
func (c *Compiler) Register(reg *aggregate.Registry, scripts ...Script) error {
	compiled := make([]*Aggregator, 0, len(scripts))
	for _, s := range scripts {
		agg, err := c.Compile(s)
		if err != nil {
			return err
		}
		compiled = append(compiled, agg)
	}
	for _, agg := range compiled {
		reg.Register(agg.script.Key, agg.script.Text, agg.Call)
	}
	return nil
}

func errorText(err error) string {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Backtrace()
	}
	return err.Error()
}
