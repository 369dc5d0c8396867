package scripting

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gunpong/server/internal/data"
	"github.com/gunpong/server/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM hosting practice-bot personalities.
// Single-goroutine access only (game loop).
//
// Each script under the script dir calls
//
//	register_bot("name", function(ctx) ... return { accel = a, fire = f } end)
//
// and the registered function is invoked once per paddle substep.
type Engine struct {
	vm            *lua.LState
	log           *zap.Logger
	personalities map[string]*lua.LFunction
	roster        *data.BotTable
	rng           *rand.Rand
}

// NewEngine creates a Lua engine and loads every personality script from
// the given directory. A missing directory is not an error; the engine
// just knows no personalities then.
func NewEngine(scriptDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:            vm,
		log:           log,
		personalities: make(map[string]*lua.LFunction),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	vm.SetGlobal("register_bot", vm.NewFunction(e.luaRegisterBot))

	if err := e.loadDir(scriptDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load bot scripts: %w", err)
	}
	return e, nil
}

// SetRoster attaches the bot table so personality multipliers apply.
func (e *Engine) SetRoster(roster *data.BotTable) {
	e.roster = roster
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// Personalities lists the registered personality names, sorted.
func (e *Engine) Personalities() []string {
	names := make([]string, 0, len(e.personalities))
	for name := range e.personalities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a personality is registered and live.
func (e *Engine) Has(name string) bool {
	_, ok := e.personalities[name]
	return ok
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
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

func (e *Engine) luaRegisterBot(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if _, dup := e.personalities[name]; dup {
		e.log.Warn("bot 人格重複註冊，以後者為準", zap.String("bot", name))
	}
	e.personalities[name] = fn
	e.log.Debug("registered bot personality", zap.String("bot", name))
	return 0
}

// PaddleCommand resolves one scripted decision. Returning ok=false hands
// the paddle to the built-in chase behavior. A personality whose script
// errors is unregistered on the spot so a broken file cannot flood the
// log at substep rate; the fallback takes over for the rest of the match.
func (e *Engine) PaddleCommand(ctx world.BotContext) (world.BotCommand, bool) {
	fn, ok := e.personalities[ctx.Script]
	if !ok {
		return world.BotCommand{}, false
	}

	t := e.vm.NewTable()
	t.RawSetString("side", lua.LString(ctx.Side.String()))
	t.RawSetString("now", lua.LNumber(ctx.Now))
	t.RawSetString("field_w", lua.LNumber(ctx.FieldW))
	t.RawSetString("field_h", lua.LNumber(ctx.FieldH))

	self := e.vm.NewTable()
	self.RawSetString("x", lua.LNumber(ctx.SelfPos.X))
	self.RawSetString("y", lua.LNumber(ctx.SelfPos.Y))
	self.RawSetString("vx", lua.LNumber(ctx.SelfVel.X))
	self.RawSetString("vy", lua.LNumber(ctx.SelfVel.Y))
	t.RawSetString("self", self)

	// No ball in play → no ball key; scripts test ctx.ball ~= nil.
	if ctx.HasBall {
		ball := e.vm.NewTable()
		ball.RawSetString("x", lua.LNumber(ctx.BallPos.X))
		ball.RawSetString("y", lua.LNumber(ctx.BallPos.Y))
		ball.RawSetString("vx", lua.LNumber(ctx.BallVel.X))
		ball.RawSetString("vy", lua.LNumber(ctx.BallVel.Y))
		ball.RawSetString("speed", lua.LNumber(ctx.BallSpeed))
		t.RawSetString("ball", ball)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("bot 腳本執行錯誤，改用內建追球行為",
			zap.String("bot", ctx.Script), zap.Error(err))
		delete(e.personalities, ctx.Script)
		return world.BotCommand{}, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("bot 腳本未回傳 table，改用內建追球行為",
			zap.String("bot", ctx.Script))
		delete(e.personalities, ctx.Script)
		return world.BotCommand{}, false
	}

	cmd := world.BotCommand{
		Accel: float32(lua.LVAsNumber(rt.RawGetString("accel"))),
		Fire:  int(lua.LVAsNumber(rt.RawGetString("fire"))),
	}
	if cmd.Fire > 0 {
		cmd.Fire = 1
	} else if cmd.Fire < 0 {
		cmd.Fire = -1
	}

	if e.roster != nil {
		if entry := e.roster.Get(ctx.Script); entry != nil {
			cmd.Accel *= float32(entry.Reaction)
			if cmd.Fire != 0 && entry.Trigger < 1 && e.rng.Float64() >= entry.Trigger {
				cmd.Fire = 0
			}
		}
	}
	return cmd, true
}
