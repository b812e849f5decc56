package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding optional gameplay overrides.
// Every hook is optional: when a script does not define it, or it fails,
// the caller keeps its built-in behaviour.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script in scriptsDir and
// its ai/ subdirectory. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "ai")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// NewEngineFromSource builds an engine from an in-memory chunk.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load lua source: %w", err)
	}
	return &Engine{vm: vm, log: log}, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a global function is defined.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// SpeedContext is passed to witch_speed(ctx).
type SpeedContext struct {
	State    string  // "patrolling" or "chasing"
	Distance float32 // to the current target
	Default  float32 // built-in speed for the state
}

// WitchSpeed calls witch_speed(ctx). ok is false when the hook is absent,
// fails or returns a non-number.
func (e *Engine) WitchSpeed(ctx SpeedContext) (float32, bool) {
	fn, ok := e.vm.GetGlobal("witch_speed").(*lua.LFunction)
	if !ok {
		return 0, false
	}
	t := e.vm.NewTable()
	t.RawSetString("state", lua.LString(ctx.State))
	t.RawSetString("distance", lua.LNumber(ctx.Distance))
	t.RawSetString("default", lua.LNumber(ctx.Default))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua witch_speed error", zap.Error(err))
		return 0, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua witch_speed returned non-number", zap.String("type", result.Type().String()))
		return 0, false
	}
	return float32(n), true
}

// PatrolContext is passed to patrol_point(ctx). U and V are uniform draws
// in [0, 1) from the game's seeded generator, so scripts stay deterministic.
type PatrolContext struct {
	Extent           float32
	CenterX, CenterZ float32
	U, V             float32
}

// PatrolPoint calls patrol_point(ctx), which returns a table {x=, z=}.
func (e *Engine) PatrolPoint(ctx PatrolContext) (x, z float32, ok bool) {
	fn, isFn := e.vm.GetGlobal("patrol_point").(*lua.LFunction)
	if !isFn {
		return 0, 0, false
	}
	t := e.vm.NewTable()
	t.RawSetString("extent", lua.LNumber(ctx.Extent))
	t.RawSetString("center_x", lua.LNumber(ctx.CenterX))
	t.RawSetString("center_z", lua.LNumber(ctx.CenterZ))
	t.RawSetString("u", lua.LNumber(ctx.U))
	t.RawSetString("v", lua.LNumber(ctx.V))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua patrol_point error", zap.Error(err))
		return 0, 0, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, isTbl := result.(*lua.LTable)
	if !isTbl {
		e.log.Error("lua patrol_point returned non-table")
		return 0, 0, false
	}
	lx, okX := rt.RawGetString("x").(lua.LNumber)
	lz, okZ := rt.RawGetString("z").(lua.LNumber)
	if !okX || !okZ {
		e.log.Error("lua patrol_point missing x or z")
		return 0, 0, false
	}
	return float32(lx), float32(lz), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
