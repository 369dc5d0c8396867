package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/data"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, scripts map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for name, body := range scripts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func chaseCtx(script string) world.BotContext {
	return world.BotContext{
		Script:  script,
		Side:    component.SideRight,
		Now:     1.5,
		FieldW:  1280,
		FieldH:  720,
		SelfPos: component.Vec2{X: 1240, Y: 360},
		HasBall: true,
		BallPos: component.Vec2{X: 600, Y: 500},
		BallVel: component.Vec2{X: 3, Y: -1},
	}
}

func TestEnginePaddleCommand(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"follow.lua": `
register_bot("follow", function(ctx)
  local a = 0
  if ctx.ball ~= nil and ctx.ball.y > ctx.self.y then
    a = 1
  end
  return { accel = a, fire = 5 }
end)
`,
	})

	if !e.Has("follow") {
		t.Fatal("personality not registered after load")
	}
	if got := e.Personalities(); len(got) != 1 || got[0] != "follow" {
		t.Fatalf("Personalities = %v, want [follow]", got)
	}

	cmd, ok := e.PaddleCommand(chaseCtx("follow"))
	if !ok {
		t.Fatal("PaddleCommand ok = false, want scripted decision")
	}
	// Ball below the paddle → accelerate down; fire values clamp to ±1.
	if cmd.Accel != 1 || cmd.Fire != 1 {
		t.Fatalf("cmd = %+v, want accel 1 fire 1", cmd)
	}
}

func TestEngineUnknownPersonalityFallsBack(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, ok := e.PaddleCommand(chaseCtx("ghost")); ok {
		t.Fatal("PaddleCommand for unknown personality ok = true, want fallback")
	}
}

func TestEngineNoBallKey(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"idle.lua": `
register_bot("idle", function(ctx)
  if ctx.ball == nil then
    return { accel = 0, fire = 0 }
  end
  return { accel = -1, fire = 0 }
end)
`,
	})

	ctx := chaseCtx("idle")
	ctx.HasBall = false
	cmd, ok := e.PaddleCommand(ctx)
	if !ok || cmd.Accel != 0 {
		t.Fatalf("cmd = %+v ok %v, want idle decision", cmd, ok)
	}
}

func TestEngineUnregistersBrokenScript(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"broken.lua": `
register_bot("broken", function(ctx)
  error("scripted explosion")
end)
`,
	})

	if _, ok := e.PaddleCommand(chaseCtx("broken")); ok {
		t.Fatal("erroring script returned ok = true, want fallback")
	}
	// The personality is gone; further calls skip the VM entirely.
	if e.Has("broken") {
		t.Fatal("broken personality still registered after error")
	}
}

func TestEngineUnregistersNonTableReturn(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"weird.lua": `
register_bot("weird", function(ctx)
  return 42
end)
`,
	})

	if _, ok := e.PaddleCommand(chaseCtx("weird")); ok {
		t.Fatal("non-table return ok = true, want fallback")
	}
	if e.Has("weird") {
		t.Fatal("weird personality still registered")
	}
}

func TestEngineRosterMultipliers(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"eager.lua": `
register_bot("eager", function(ctx)
  return { accel = 1, fire = 1 }
end)
`,
	})

	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "bots.yaml")
	roster := `
bots:
  - name: eager
    script: eager.lua
    reaction: 0.5
`
	if err := os.WriteFile(rosterPath, []byte(roster), 0o644); err != nil {
		t.Fatal(err)
	}
	bots, err := data.LoadBotTable(rosterPath)
	if err != nil {
		t.Fatalf("LoadBotTable: %v", err)
	}
	e.SetRoster(bots)

	cmd, ok := e.PaddleCommand(chaseCtx("eager"))
	if !ok {
		t.Fatal("PaddleCommand ok = false, want scripted decision")
	}
	if cmd.Accel != 0.5 {
		t.Fatalf("Accel = %v, want reaction-scaled 0.5", cmd.Accel)
	}
	// An omitted trigger defaults to 1, so the shot always goes through.
	if cmd.Fire != 1 {
		t.Fatalf("Fire = %d, want 1", cmd.Fire)
	}
}

func TestEngineBadScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "syntax.lua"), []byte("this is not lua ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Fatal("NewEngine with a syntax error = nil error, want failure")
	}
}
