package scripting

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/enemy"
)

// Engine runs the damage scripts on one gopher-lua VM. The tick goroutine
// is its only caller.
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	files []string
}

// Scripts under this subdirectory load before all others.
const coreDir = "core"

// NewEngine loads every .lua file under scriptsDir. Helpers in core/ load
// first, then the rest in path order. A missing directory yields an engine
// without calc_damage, which resolves every hit to its raw damage.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	types := vm.NewTable()
	for _, dt := range []data.DamageType{data.DamageNormal, data.DamageFire, data.DamageLightning, data.DamagePoison} {
		types.Append(lua.LString(dt))
	}
	vm.SetGlobal("DAMAGE_TYPES", types)

	e := &Engine{vm: vm, log: log}
	files, err := scriptFiles(scriptsDir)
	if err != nil {
		vm.Close()
		return nil, fmt.Errorf("scan scripts %s: %w", scriptsDir, err)
	}
	for _, path := range files {
		if err := vm.DoFile(path); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		e.files = append(e.files, path)
		log.Debug("loaded lua script", zap.String("file", path))
	}
	return e, nil
}

func scriptFiles(root string) ([]string, error) {
	var core, rest []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".lua" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if strings.HasPrefix(filepath.ToSlash(rel), coreDir+"/") {
			core = append(core, path)
		} else {
			rest = append(rest, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(core)
	sort.Strings(rest)
	return append(core, rest...), nil
}

// Files lists the loaded scripts in load order.
func (e *Engine) Files() []string { return e.files }

// Has reports whether a global Lua function is defined.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// DamageContext holds pre-packed data for one hit on an enemy.
type DamageContext struct {
	Damage          float64
	DamageType      data.DamageType
	TargetArmor     float64
	TargetLevel     int
	TargetHealth    float64
	TargetMaxHealth float64
}

// CalcDamage calls the Lua calc_damage function. Any script failure falls
// back to the raw damage so a broken formula never stalls the simulation.
func (e *Engine) CalcDamage(ctx DamageContext) float64 {
	fn := e.vm.GetGlobal("calc_damage")
	if fn == lua.LNil {
		e.log.Error("lua function calc_damage not found")
		return ctx.Damage
	}

	t := e.vm.NewTable()
	t.RawSetString("damage", lua.LNumber(ctx.Damage))
	t.RawSetString("damage_type", lua.LString(ctx.DamageType))

	tgt := e.vm.NewTable()
	tgt.RawSetString("armor", lua.LNumber(ctx.TargetArmor))
	tgt.RawSetString("level", lua.LNumber(ctx.TargetLevel))
	tgt.RawSetString("health", lua.LNumber(ctx.TargetHealth))
	tgt.RawSetString("max_health", lua.LNumber(ctx.TargetMaxHealth))
	t.RawSetString("target", tgt)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_damage error", zap.Error(err))
		return ctx.Damage
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_damage returned non-number", zap.String("type", result.Type().String()))
		return ctx.Damage
	}
	if n < 0 {
		return 0
	}
	return float64(n)
}

// Resolve implements enemy.DamageResolver on top of calc_damage.
func (e *Engine) Resolve(en *enemy.Enemy, damage float64, kind data.DamageType) float64 {
	return e.CalcDamage(DamageContext{
		Damage:          damage,
		DamageType:      kind,
		TargetArmor:     en.Template.Armor,
		TargetLevel:     en.Template.Level,
		TargetHealth:    en.Health(),
		TargetMaxHealth: en.Template.MaxHealth,
	})
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
