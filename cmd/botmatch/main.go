// botmatch runs headless bot-vs-bot matches and prints balance stats.
//
// Usage:
//
//	go run ./cmd/botmatch [-n matches] [-left name] [-right name] [-win score] [-seed n] [-v]
//
// With -seed 0 every match draws a random seed; otherwise match i runs
// with seed+i, so a series is reproducible.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/core/event"
	"github.com/gunpong/server/internal/data"
	"github.com/gunpong/server/internal/scripting"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
)

const tickRate = 60.0

// matchStats collects one match's event counters.
type matchStats struct {
	finished   bool
	winner     component.Side
	leftScore  int
	rightScore int
	ticks      uint64

	rally        int // paddle hits since the last goal
	longestRally int
	topSpeed     float32
	bulletsShot  int
	bulletHits   int
}

func main() {
	var (
		n           = flag.Int("n", 10, "matches to run")
		leftName    = flag.String("left", "", "left personality (default: first roster entry)")
		rightName   = flag.String("right", "", "right personality (default: first roster entry)")
		winScore    = flag.Int("win", 5, "rounds to win a match")
		maxTicks    = flag.Uint64("maxticks", 36000, "per-match tick cap (10 min at 60 Hz)")
		seed        = flag.Int64("seed", 0, "base seed; 0 draws random seeds")
		botsPath    = flag.String("bots", "data/bots.yaml", "bot roster file")
		effectsPath = flag.String("effects", "data/effects.yaml", "effect parameter file")
		scriptDir   = flag.String("scripts", "scripts/ai", "lua personality dir")
		verbose     = flag.Bool("v", false, "print every goal")
	)
	flag.Parse()

	effects, err := data.LoadEffects(*effectsPath)
	if err != nil {
		fatalf("load effects: %v", err)
	}
	bots, err := data.LoadBotTable(*botsPath)
	if err != nil {
		fatalf("load bot roster: %v", err)
	}

	engine, err := scripting.NewEngine(*scriptDir, zap.NewNop())
	if err != nil {
		fatalf("lua engine: %v", err)
	}
	defer engine.Close()
	engine.SetRoster(bots)

	left := pickBot(bots, *leftName)
	right := pickBot(bots, *rightName)

	// A personality without a loaded script falls back to the built-in
	// chase, same as a practice match would.
	leftScript, rightScript := left.Name, right.Name
	if !engine.Has(left.Name) {
		leftScript = ""
	}
	if !engine.Has(right.Name) {
		rightScript = ""
	}

	fmt.Printf("botmatch: %s vs %s, %d matches, win score %d\n", left.Name, right.Name, *n, *winScore)
	if *seed != 0 {
		fmt.Printf("  base seed: %d\n", *seed)
	}
	fmt.Println()

	var (
		leftWins, rightWins, timeouts int
		totalTicks                    uint64
		totalGoals                    int
		longestRally                  int
		topSpeed                      float32
		bulletsShot, bulletHits       int
	)

	for i := 0; i < *n; i++ {
		matchSeed := rand.Int63()
		if *seed != 0 {
			matchSeed = *seed + int64(i)
		}
		st := runMatch(runParams{
			id:          uint64(i + 1),
			seed:        matchSeed,
			winScore:    *winScore,
			maxTicks:    *maxTicks,
			effects:     effects,
			brain:       engine,
			leftName:    left.Name,
			leftScript:  leftScript,
			rightName:   right.Name,
			rightScript: rightScript,
			verbose:     *verbose,
		})

		totalTicks += st.ticks
		totalGoals += st.leftScore + st.rightScore
		bulletsShot += st.bulletsShot
		bulletHits += st.bulletHits
		if st.longestRally > longestRally {
			longestRally = st.longestRally
		}
		if st.topSpeed > topSpeed {
			topSpeed = st.topSpeed
		}

		switch {
		case !st.finished:
			timeouts++
			fmt.Printf("  #%02d  timeout %d-%d after %d ticks (seed %d)\n",
				i+1, st.leftScore, st.rightScore, st.ticks, matchSeed)
		case st.winner == component.SideLeft:
			leftWins++
			fmt.Printf("  #%02d  %s %d-%d in %d ticks (%.1fs)\n",
				i+1, left.Name, st.leftScore, st.rightScore, st.ticks, float64(st.ticks)/tickRate)
		default:
			rightWins++
			fmt.Printf("  #%02d  %s %d-%d in %d ticks (%.1fs)\n",
				i+1, right.Name, st.rightScore, st.leftScore, st.ticks, float64(st.ticks)/tickRate)
		}
	}

	played := *n
	fmt.Println()
	fmt.Printf("  %s wins: %d (%.0f%%)\n", left.Name, leftWins, pct(leftWins, played))
	fmt.Printf("  %s wins: %d (%.0f%%)\n", right.Name, rightWins, pct(rightWins, played))
	if timeouts > 0 {
		fmt.Printf("  timeouts: %d\n", timeouts)
	}
	if played > 0 {
		avg := float64(totalTicks) / float64(played)
		fmt.Printf("  avg length: %.1fs (%.0f ticks), %d goals total\n", avg/tickRate, avg, totalGoals)
	}
	fmt.Printf("  longest rally: %d paddle hits\n", longestRally)
	fmt.Printf("  top ball speed: %.2f\n", topSpeed)
	if bulletsShot > 0 {
		fmt.Printf("  bullets: %d fired, %d ball hits (%.1f%%)\n",
			bulletsShot, bulletHits, pct(bulletHits, bulletsShot))
	}
}

type runParams struct {
	id          uint64
	seed        int64
	winScore    int
	maxTicks    uint64
	effects     world.Effects
	brain       world.BotBrain
	leftName    string
	leftScript  string
	rightName   string
	rightScript string
	verbose     bool
}

func runMatch(p runParams) *matchStats {
	st := &matchStats{}
	bus := event.NewBus()

	event.Subscribe(bus, func(ev event.BallPaddleHit) {
		st.rally++
		if ev.Speed > st.topSpeed {
			st.topSpeed = ev.Speed
		}
	})
	event.Subscribe(bus, func(ev event.Goal) {
		if st.rally > st.longestRally {
			st.longestRally = st.rally
		}
		st.rally = 0
		if p.verbose {
			fmt.Printf("       goal: %s leads %d-%d\n", ev.Winner, ev.LeftScore, ev.RightScore)
		}
	})
	event.Subscribe(bus, func(ev event.BulletFired) { st.bulletsShot++ })
	event.Subscribe(bus, func(ev event.BulletBallHit) { st.bulletHits++ })
	event.Subscribe(bus, func(ev event.MatchFinished) {
		st.finished = true
		st.winner = ev.Winner
		st.leftScore = ev.LeftScore
		st.rightScore = ev.RightScore
		st.ticks = ev.Ticks
	})

	m := world.NewMatch(world.MatchParams{
		ID:       p.id,
		FieldW:   1280,
		FieldH:   720,
		WinScore: p.winScore,
		MaxBurst: 4096,
		Seed:     p.seed,
		Effects:  p.effects,
		Brain:    p.brain,
		Bus:      bus,
	}, world.SeatConfig{
		Name:   p.leftName,
		Bot:    true,
		Script: p.leftScript,
	}, world.SeatConfig{
		Name:   p.rightName,
		Bot:    true,
		Script: p.rightScript,
	})

	for tick := uint64(0); !m.Finished() && tick < p.maxTicks; tick++ {
		// Nobody holds a controller here, so latch the serve whenever
		// the match is waiting on one.
		if m.State.Phase != component.PhaseOngoing {
			m.PressStart()
		}
		now := float64(tick) / tickRate
		m.Advance(now)
		m.AdvanceParticles(now)
		bus.SwapBuffers()
		bus.DispatchAll()
	}

	if !st.finished {
		st.leftScore = m.State.LeftScore
		st.rightScore = m.State.RightScore
		st.ticks = m.Frame()
	}
	return st
}

func pickBot(bots *data.BotTable, name string) *data.BotEntry {
	if name == "" {
		return bots.Default()
	}
	entry := bots.Get(name)
	if entry == nil {
		fatalf("unknown personality %q (roster: %v)", name, bots.Names())
	}
	return entry
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "botmatch: "+format+"\n", args...)
	os.Exit(1)
}
