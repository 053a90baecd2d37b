// Package level drives a level's waves: it sequences wave and spawn delays,
// requests enemy spawns, counts alive enemies and decides win or loss.
package level

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trapline/sim/internal/core/event"
	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/enemy"
)

// Spawner requests one enemy from the pool and puts it on the route.
type Spawner interface {
	Spawn(tmpl *data.EnemyTemplate)
}

// Wallet receives kill rewards and the level's starting gold.
type Wallet interface {
	SetGold(gold int)
	Reward(tmpl *data.EnemyTemplate)
}

// Reclaimer returns every pooled actor (enemies and placeables) on restart.
type Reclaimer interface {
	ReclaimAll()
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	}
	return "none"
}

// phase is where the level sequence is suspended.
type phase int

const (
	phaseIdle         phase = iota
	phaseNextWave           // start the next wave repetition, or finish
	phaseStartDelay         // wave start delay
	phaseNextElement        // roll the next wave element
	phaseElementDelay       // element extra delay before its batch
	phaseSpawn              // spawn the next unit of the batch
	phaseExtraDelay         // element extra delay after a spawn
	phaseSpawnRate          // wave spawn rate after a spawn
	phaseAwaitClear         // all spawned, waiting for zero alive
	phaseEndDelay           // wave end delay
	phaseDone               // every wave spawned
)

// Deps are the scheduler's collaborators.
type Deps struct {
	Spawner Spawner
	Wallet  Wallet
	Actors  Reclaimer
	Bus     *event.Bus
	Rand    *rand.Rand
	Log     *zap.Logger
	// OnReset runs after every reset, once the starting gold is paid. The
	// driver uses it to lay down the level's authored traps.
	OnReset func()
}

// Scheduler plays one level. Driven by Update once per tick and by enemy
// death notifications; not safe for concurrent use.
type Scheduler struct {
	level *data.Level
	total int
	deps  Deps
	log   *zap.Logger

	runID   string
	phase   phase
	timer   time.Duration
	outcome Outcome

	elem    int // level element index
	repeat  int // repetitions of the current element started
	wave    *data.Wave
	waveEl  int // next wave element index
	batch   *data.WaveElement
	pending int // units left in the batch

	ordinal     int
	alive       int
	spawned     int
	energy      int
	ongoing     bool
	played      bool // Play ran since the last reset
	waveSpawned bool
	allSpawned  bool
}

func New(lvl *data.Level, deps Deps) (*Scheduler, error) {
	switch {
	case lvl == nil:
		return nil, fmt.Errorf("level scheduler: level is required")
	case deps.Spawner == nil:
		return nil, fmt.Errorf("level %q: spawner is required", lvl.ID)
	case deps.Wallet == nil:
		return nil, fmt.Errorf("level %q: wallet is required", lvl.ID)
	case deps.Actors == nil:
		return nil, fmt.Errorf("level %q: actor reclaimer is required", lvl.ID)
	case deps.Bus == nil:
		return nil, fmt.Errorf("level %q: event bus is required", lvl.ID)
	case deps.Rand == nil:
		return nil, fmt.Errorf("level %q: random source is required", lvl.ID)
	}
	for i, el := range lvl.Elements {
		if el.Def == nil {
			return nil, fmt.Errorf("level %q: element %d: wave %q is not resolved", lvl.ID, i, el.Wave)
		}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	s := &Scheduler{
		level: lvl,
		total: lvl.TotalWaveCount(),
		deps:  deps,
		log:   deps.Log.With(zap.String("level", lvl.ID)),
	}
	s.Reset()
	return s, nil
}

func (s *Scheduler) Level() *data.Level    { return s.level }
func (s *Scheduler) RunID() string         { return s.runID }
func (s *Scheduler) Outcome() Outcome      { return s.outcome }
func (s *Scheduler) Ongoing() bool         { return s.ongoing }
func (s *Scheduler) Energy() int           { return s.energy }
func (s *Scheduler) Alive() int            { return s.alive }
func (s *Scheduler) Spawned() int          { return s.spawned }
func (s *Scheduler) WaveOrdinal() int      { return s.ordinal }
func (s *Scheduler) TotalWaves() int       { return s.total }
func (s *Scheduler) AllWavesSpawned() bool { return s.allSpawned }

// WaveFinished reports whether the current wave has requested all its
// spawns and none of them is alive any more.
func (s *Scheduler) WaveFinished() bool {
	return s.waveSpawned && s.alive == 0
}

// Reset restores the level's starting counters without touching actors.
func (s *Scheduler) Reset() {
	s.phase = phaseIdle
	s.timer = 0
	s.outcome = OutcomeNone
	s.elem, s.repeat, s.waveEl = 0, 0, 0
	s.wave, s.batch, s.pending = nil, nil, 0
	s.ordinal = 0
	s.alive = 0
	s.spawned = 0
	s.ongoing = false
	s.played = false
	s.waveSpawned = false
	s.allSpawned = false
	s.energy = s.level.StartEnergy
	s.deps.Wallet.SetGold(s.level.StartGold)
	if s.deps.OnReset != nil {
		s.deps.OnReset()
	}
	event.Emit(s.deps.Bus, event.EnergyChanged{Current: s.energy, Start: s.level.StartEnergy})
}

// Play starts the level sequence. Calling Play on an ongoing level is a
// no-op. A level that was aborted, won or lost starts over from its first
// wave with its actors returned, as after Restart.
func (s *Scheduler) Play() {
	if s.ongoing {
		return
	}
	if s.played {
		s.deps.Actors.ReclaimAll()
		s.Reset()
	}
	s.played = true
	s.runID = uuid.NewString()
	s.ongoing = true
	s.outcome = OutcomeNone
	s.phase = phaseNextWave
	s.log.Info("level started",
		zap.String("run", s.runID),
		zap.Int("waves", s.total),
		zap.Int("energy", s.energy),
	)
	event.Emit(s.deps.Bus, event.LevelStarted{RunID: s.runID, LevelID: s.level.ID, TotalWaves: s.total})
	s.advance()
}

// Restart cancels the running sequence, returns every pooled actor and
// resets the counters to the level's starting values.
func (s *Scheduler) Restart() {
	s.ongoing = false
	s.phase = phaseIdle
	s.deps.Actors.ReclaimAll()
	s.Reset()
	s.log.Info("level restarted")
	event.Emit(s.deps.Bus, event.LevelRestarted{LevelID: s.level.ID})
}

// Abort stops an ongoing level where it stands, as when leaving to the
// main menu. Actors and counters are left alone.
func (s *Scheduler) Abort() {
	if !s.ongoing {
		return
	}
	s.ongoing = false
	s.phase = phaseIdle
	s.log.Info("level aborted", zap.String("run", s.runID))
}

// Update advances the running wait, the sequence and the win check.
func (s *Scheduler) Update(dt time.Duration) {
	if s.timer > 0 {
		s.timer -= dt
	}
	s.advance()

	if s.ongoing && s.allSpawned && s.alive == 0 {
		s.ongoing = false
		s.outcome = OutcomeWon
		s.log.Info("level won", zap.String("run", s.runID), zap.Int("energy", s.energy))
		event.Emit(s.deps.Bus, event.LevelWon{RunID: s.runID, LevelID: s.level.ID})
	}
}

// OnEnemyDied settles a death during an ongoing level: an enemy that
// reached the end drains energy, a killed enemy rewards the player.
func (s *Scheduler) OnEnemyDied(ev enemy.Died) {
	if !s.ongoing {
		return
	}
	s.alive--
	if ev.HasFinishedLevel {
		s.setEnergy(s.energy - ev.Enemy.Template.EnergyDrain)
		return
	}
	s.deps.Wallet.Reward(ev.Enemy.Template)
}

func (s *Scheduler) setEnergy(energy int) {
	s.energy = energy
	if s.energy <= 0 {
		s.energy = 0
		s.ongoing = false
		s.phase = phaseIdle
		s.outcome = OutcomeLost
		s.log.Info("level lost", zap.String("run", s.runID), zap.Int("wave", s.ordinal))
		event.Emit(s.deps.Bus, event.LevelLost{RunID: s.runID, LevelID: s.level.ID})
	}
	event.Emit(s.deps.Bus, event.EnergyChanged{Current: s.energy, Start: s.level.StartEnergy})
}

// wait suspends in p for d. Zero or negative waits do not suspend.
func (s *Scheduler) wait(d time.Duration, p phase) bool {
	if d <= 0 {
		return false
	}
	s.timer = d
	s.phase = p
	return true
}

func (s *Scheduler) advance() {
	for {
		switch s.phase {
		case phaseIdle, phaseDone:
			return

		case phaseNextWave:
			if s.elem >= len(s.level.Elements) {
				s.allSpawned = true
				s.phase = phaseDone
				s.log.Info("all waves spawned", zap.String("run", s.runID))
				return
			}
			el := s.level.Elements[s.elem]
			if s.repeat >= el.Count {
				s.elem++
				s.repeat = 0
				continue
			}
			s.repeat++
			s.beginWave(el.Def)
			if s.wait(s.wave.StartDelay, phaseStartDelay) {
				return
			}
			s.phase = phaseNextElement

		case phaseStartDelay:
			if s.timer > 0 {
				return
			}
			s.phase = phaseNextElement

		case phaseNextElement:
			if s.waveEl >= len(s.wave.Elements) {
				s.waveSpawned = true
				s.phase = phaseAwaitClear
				continue
			}
			el := &s.wave.Elements[s.waveEl]
			s.waveEl++
			if s.deps.Rand.Float64() >= el.Chance {
				s.log.Debug("wave element skipped", zap.String("enemy", el.Enemy))
				continue
			}
			s.batch = el
			s.pending = el.MinCount + s.deps.Rand.Intn(el.MaxCount-el.MinCount+1)
			if s.wait(el.ExtraDelay, phaseElementDelay) {
				return
			}
			s.phase = phaseSpawn

		case phaseElementDelay:
			if s.timer > 0 {
				return
			}
			s.phase = phaseSpawn

		case phaseSpawn:
			if s.pending == 0 {
				s.phase = phaseNextElement
				continue
			}
			s.spawn(s.batch.Template)
			s.pending--
			if s.wait(s.batch.ExtraDelay, phaseExtraDelay) {
				return
			}
			if s.wait(s.wave.SpawnRate, phaseSpawnRate) {
				return
			}

		case phaseExtraDelay:
			if s.timer > 0 {
				return
			}
			if s.wait(s.wave.SpawnRate, phaseSpawnRate) {
				return
			}
			s.phase = phaseSpawn

		case phaseSpawnRate:
			if s.timer > 0 {
				return
			}
			s.phase = phaseSpawn

		case phaseAwaitClear:
			if s.alive != 0 {
				return
			}
			if s.wait(s.wave.EndDelay, phaseEndDelay) {
				return
			}
			s.phase = phaseNextWave

		case phaseEndDelay:
			if s.timer > 0 {
				return
			}
			s.phase = phaseNextWave
		}
	}
}

func (s *Scheduler) beginWave(w *data.Wave) {
	s.wave = w
	s.waveEl = 0
	s.batch, s.pending = nil, 0
	s.waveSpawned = false
	s.ordinal++
	final := s.ordinal == s.total
	s.log.Info("wave started",
		zap.String("run", s.runID),
		zap.String("wave", w.ID),
		zap.Int("ordinal", s.ordinal),
		zap.Int("total", s.total),
		zap.Bool("final", final),
	)
	event.Emit(s.deps.Bus, event.WaveStarted{
		RunID:     s.runID,
		Ordinal:   s.ordinal,
		Total:     s.total,
		Final:     final,
		Countdown: w.StartDelay.Seconds(),
	})
}

func (s *Scheduler) spawn(tmpl *data.EnemyTemplate) {
	s.deps.Spawner.Spawn(tmpl)
	s.alive++
	s.spawned++
	s.log.Debug("enemy spawned",
		zap.String("enemy", tmpl.ID),
		zap.Int("alive", s.alive),
	)
}
