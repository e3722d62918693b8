// Package main provides the arena simulator binary: it loads the content
// catalogs, fields a configured team against a stage, and runs one or many
// battles at full speed, printing the battle log and reward payout.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironveil/tactics/internal/config"
	"github.com/ironveil/tactics/internal/game/ai"
	"github.com/ironveil/tactics/internal/game/catalog"
	"github.com/ironveil/tactics/internal/game/combat"
	"github.com/ironveil/tactics/internal/game/item"
	"github.com/ironveil/tactics/internal/game/reward"
	"github.com/ironveil/tactics/internal/game/rng"
	"github.com/ironveil/tactics/internal/game/stage"
	"github.com/ironveil/tactics/internal/observability"
	"github.com/ironveil/tactics/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentDir := flag.String("content", "", "content root directory; empty = config value")
	stageID := flag.String("stage", "", "stage id to fight; empty = config value")
	team := flag.String("team", "", "comma-separated class ids for the player side; empty = config value")
	level := flag.Int("level", 0, "player team level; 0 = config value")
	battles := flag.Int("battles", 0, "number of battles to run; 0 = config value")
	parallel := flag.Int("parallel", 0, "concurrent battles in batch mode; 0 = config value")
	seed := flag.Uint64("seed", 0, "RNG seed; battle i uses seed+i; 0 = config value")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	applyOverrides(&cfg, *contentDir, *stageID, *team, *level, *battles, *parallel, *seed)

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Load content catalogs
	catStart := time.Now()
	catalogs, err := catalog.Load(cfg.Content.Root)
	if err != nil {
		logger.Fatal("loading catalogs", zap.Error(err))
	}
	logger.Info("catalogs loaded",
		zap.Int("classes", len(catalogs.Classes.All())),
		zap.Int("terrains", len(catalogs.Terrains.All())),
		zap.Int("statuses", len(catalogs.Statuses.All())),
		zap.Int("skills", len(catalogs.Skills.All())),
		zap.Int("items", len(catalogs.Items.All())),
		zap.Int("stages", len(catalogs.Stages.All())),
		zap.Duration("elapsed", time.Since(catStart)),
	)

	stg, ok := catalogs.Stages.Get(cfg.Sim.Stage)
	if !ok {
		logger.Fatal("unknown stage", zap.String("stage", cfg.Sim.Stage))
	}

	roster, err := buildRoster(catalogs, cfg.Sim)
	if err != nil {
		logger.Fatal("building roster", zap.Error(err))
	}

	logger.Info("simulator ready",
		zap.String("stage", stg.ID),
		zap.Strings("team", cfg.Sim.Team),
		zap.Int("level", cfg.Sim.Level),
		zap.Int("battles", cfg.Sim.Battles),
		zap.Duration("startup", time.Since(start)),
	)

	if cfg.Sim.Battles == 1 {
		if err := runOne(cfg, catalogs, stg, roster, logger); err != nil {
			logger.Fatal("battle failed", zap.Error(err))
		}
		return
	}
	if err := runBatch(cfg, catalogs, stg, roster, logger); err != nil {
		logger.Fatal("batch failed", zap.Error(err))
	}
}

// applyOverrides folds non-zero command line flags over the loaded config.
func applyOverrides(cfg *config.Config, content, stageID, team string, level, battles, parallel int, seed uint64) {
	if content != "" {
		cfg.Content.Root = content
	}
	if stageID != "" {
		cfg.Sim.Stage = stageID
	}
	if team != "" {
		ids := strings.Split(team, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		cfg.Sim.Team = ids
	}
	if level > 0 {
		cfg.Sim.Level = level
	}
	if battles > 0 {
		cfg.Sim.Battles = battles
	}
	if parallel > 0 {
		cfg.Sim.Parallel = parallel
	}
	if seed != 0 {
		cfg.Sim.Seed = seed
	}
}

// buildRoster names one player per configured class id.
func buildRoster(catalogs *catalog.Set, sim config.SimConfig) ([]combat.RosterEntry, error) {
	roster := make([]combat.RosterEntry, 0, len(sim.Team))
	for i, classID := range sim.Team {
		class, ok := catalogs.Classes.Get(classID)
		if !ok {
			return nil, fmt.Errorf("unknown class %q in team", classID)
		}
		roster = append(roster, combat.RosterEntry{
			ID:      fmt.Sprintf("player-%d", i+1),
			Name:    fmt.Sprintf("%s %d", class.Name, i+1),
			ClassID: classID,
			Level:   sim.Level,
		})
	}
	return roster, nil
}

// battleSource builds the RNG source for the i-th battle. A configured seed
// makes every battle reproducible; otherwise each draws a fresh crypto seed.
func battleSource(sim config.SimConfig, i int, logger *zap.Logger) rng.Source {
	if sim.Seed != 0 {
		return rng.NewLoggedSource(rng.NewSeededSource(sim.Seed+uint64(i)), logger)
	}
	return rng.NewLoggedSource(rng.NewCryptoSource(), logger)
}

// runBattle plays battle i to completion and returns the session alongside
// the outcome so callers can print its event log.
func runBattle(cfg config.Config, catalogs *catalog.Set, stg *stage.Stage, roster []combat.RosterEntry, logger *zap.Logger, i int) (*combat.Session, combat.Outcome, error) {
	src := battleSource(cfg.Sim, i, logger)
	inv := item.NewMemoryInventory(cfg.Sim.Items)
	engine := combat.NewEngine(catalogs, inv, src, logger, cfg.Engine.Variance)

	var hooks combat.Hooks
	var sess *combat.Session
	if stg.Script != "" {
		mgr := scripting.NewManager(logger)
		if err := mgr.LoadStage(stg.ID, stg.Script, cfg.Content.ScriptInstructionLimit); err != nil {
			return nil, combat.Outcome{}, err
		}
		defer mgr.Close()
		// The battle-start hook fires before the session exists; the view
		// degrades to empty answers until then.
		wireBattleView(mgr, func() *combat.Session { return sess })
		hooks = scripting.NewBattleHooks(mgr)
	}

	s, err := combat.NewSession(engine, roster, stg, ai.NewPolicy(), hooks, logger)
	if err != nil {
		return nil, combat.Outcome{}, err
	}
	sess = s

	outcome, err := sess.RunToCompletion(cfg.Engine.MaxRounds)
	if err != nil {
		return nil, combat.Outcome{}, err
	}
	return sess, outcome, nil
}

// runOne plays a single battle and prints its full event log.
func runOne(cfg config.Config, catalogs *catalog.Set, stg *stage.Stage, roster []combat.RosterEntry, logger *zap.Logger) error {
	sess, outcome, err := runBattle(cfg, catalogs, stg, roster, logger, 0)
	if err != nil {
		return err
	}

	fmt.Printf("=== %s ===\n", stg.Name)
	for _, ev := range sess.Events() {
		fmt.Printf("[%2d] %s\n", ev.Round, ev.Message)
	}
	fmt.Println()

	payout := reward.Calculate(outcome, stg.Reward)
	verdict := "defeat"
	if outcome.Victory {
		verdict = "victory"
	}
	fmt.Printf("%s on round %d, %d player(s) standing\n", verdict, outcome.Rounds, outcome.SurvivingPlayers)
	fmt.Printf("reward: %d currency, %d experience\n", payout.Currency, payout.Experience)
	return nil
}

type battleResult struct {
	outcome combat.Outcome
	payout  reward.Reward
}

// runBatch plays cfg.Sim.Battles battles across cfg.Sim.Parallel goroutines
// and prints the aggregate report. Per-battle logging is raised to Warn so
// the report stays readable.
func runBatch(cfg config.Config, catalogs *catalog.Set, stg *stage.Stage, roster []combat.RosterEntry, logger *zap.Logger) error {
	n := cfg.Sim.Battles
	results := make([]battleResult, n)

	batchStart := time.Now()
	var g errgroup.Group
	g.SetLimit(cfg.Sim.Parallel)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, outcome, err := runBattle(cfg, catalogs, stg, roster, observability.BattleLogger(logger, i+1), i)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i+1, err)
			}
			results[i] = battleResult{
				outcome: outcome,
				payout:  reward.Calculate(outcome, stg.Reward),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(batchStart)

	wins, rounds, currency, experience := 0, 0, 0, 0
	for _, r := range results {
		if r.outcome.Victory {
			wins++
		}
		rounds += r.outcome.Rounds
		currency += r.payout.Currency
		experience += r.payout.Experience
	}

	fmt.Printf("=== %s: %d battles ===\n", stg.Name, n)
	fmt.Printf("wins:       %d (%.1f%%)\n", wins, float64(wins)*100/float64(n))
	fmt.Printf("avg rounds: %.1f\n", float64(rounds)/float64(n))
	fmt.Printf("avg reward: %.1f currency, %.1f experience\n",
		float64(currency)/float64(n), float64(experience)/float64(n))
	fmt.Printf("elapsed:    %s (%.1f battles/sec)\n", elapsed.Round(time.Millisecond), float64(n)/elapsed.Seconds())
	return nil
}

// wireBattleView binds the Lua engine.battle module to the running session.
func wireBattleView(mgr *scripting.Manager, current func() *combat.Session) {
	mgr.GetCombatant = func(id string) *scripting.CombatantInfo {
		sess := current()
		if sess == nil {
			return nil
		}
		c, ok := sess.State().Combatant(id)
		if !ok {
			return nil
		}
		return combatantInfo(c)
	}
	mgr.TeamMembers = func(team string) []*scripting.CombatantInfo {
		sess := current()
		if sess == nil {
			return nil
		}
		members := sess.State().Members(combat.Team(team))
		out := make([]*scripting.CombatantInfo, 0, len(members))
		for _, c := range members {
			out = append(out, combatantInfo(c))
		}
		return out
	}
	mgr.Round = func() int {
		sess := current()
		if sess == nil {
			return 0
		}
		return sess.State().Turn
	}
}

func combatantInfo(c *combat.Combatant) *scripting.CombatantInfo {
	info := &scripting.CombatantInfo{
		ID:      c.ID,
		Name:    c.Name,
		Team:    string(c.Team),
		ClassID: c.ClassID,
		Level:   c.Level,
		HP:      c.Cur.HP,
		MaxHP:   c.Cur.MaxHP,
		Mana:    c.Cur.Mana,
		MaxMana: c.Cur.MaxMana,
		Alive:   c.IsAlive(),
		Health:  c.HealthDescription(),
	}
	if c.Pos != nil {
		info.Row, info.Col, info.Placed = c.Pos.Row, c.Pos.Col, true
	}
	return info
}
