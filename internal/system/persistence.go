package system

import (
	"context"
	"time"

	coresys "github.com/gunpong/server/internal/core/system"
	"github.com/gunpong/server/internal/persist"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
)

// PersistenceSystem periodically writes back changed ratings and win/loss
// tallies for online players. Match result rows take the ResultWriter
// path instead; this flush only covers the accounts table.
type PersistenceSystem struct {
	world     *world.State
	accounts  *persist.AccountRepo
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks
}

func NewPersistenceSystem(ws *world.State, accounts *persist.AccountRepo, intervalTicks int, log *zap.Logger) *PersistenceSystem {
	return &PersistenceSystem{
		world:    ws,
		accounts: accounts,
		interval: intervalTicks,
		log:      log,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.savePlayers(true)
}

// SaveAllPlayers flushes every online player, dirty or not. The shutdown
// path calls it once so nothing is lost.
func (s *PersistenceSystem) SaveAllPlayers() {
	s.savePlayers(false)
}

// savePlayers writes ratings back. If dirtyOnly is set, only players whose
// rating changed since the last flush are written, and the flag clears on
// success.
func (s *PersistenceSystem) savePlayers(dirtyOnly bool) {
	count := 0
	s.world.AllPlayers(func(p *world.PlayerInfo) {
		if dirtyOnly && !p.Dirty {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.accounts.UpdateRating(ctx, p.AccountID, p.Rating, p.Wins, p.Losses)
		cancel()
		if err != nil {
			s.log.Error("自動存檔評分失敗", zap.String("name", p.Name), zap.Error(err))
			return
		}
		p.Dirty = false
		count++
	})
	if count > 0 {
		s.log.Info("自動存檔完成", zap.Int("玩家數", count))
	}
}
