// Package main provides the encounter tracker binary: it parses an
// encounter definition, seeds a tracker, reports the difficulty rating,
// and persists the encounter snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hearthrpg/tracker/internal/bestiary"
	"github.com/hearthrpg/tracker/internal/config"
	"github.com/hearthrpg/tracker/internal/game/combatlog"
	"github.com/hearthrpg/tracker/internal/game/condition"
	"github.com/hearthrpg/tracker/internal/game/dice"
	"github.com/hearthrpg/tracker/internal/game/encounter"
	"github.com/hearthrpg/tracker/internal/game/party"
	"github.com/hearthrpg/tracker/internal/game/rpgsystem"
	"github.com/hearthrpg/tracker/internal/game/tracker"
	"github.com/hearthrpg/tracker/internal/observability"
	"github.com/hearthrpg/tracker/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	encounterPath := flag.String("encounter", "", "path to an encounter definition file")
	noDB := flag.Bool("no-db", false, "run without snapshot persistence")
	begin := flag.Bool("start", false, "start combat after seeding the roster")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting tracker",
		zap.String("rpg_system", cfg.Tracker.RPGSystem),
	)

	catalog := condition.NewCatalog()
	if cfg.Tracker.ConditionsDir != "" {
		catalog, err = condition.LoadDirectory(cfg.Tracker.ConditionsDir)
		if err != nil {
			logger.Fatal("loading conditions", zap.Error(err))
		}
	}

	monsters := bestiary.New(logger)
	if cfg.Tracker.BestiaryDir != "" {
		monsters, err = bestiary.Load(cfg.Tracker.BestiaryDir, logger)
		if err != nil {
			logger.Fatal("loading bestiary", zap.Error(err))
		}
	}

	systems := rpgsystem.NewRegistry()
	if cfg.Tracker.CustomSystemScript != "" {
		custom, err := rpgsystem.NewLuaSystem(cfg.Tracker.CustomSystemScript, logger)
		if err != nil {
			logger.Fatal("loading custom difficulty script", zap.Error(err))
		}
		defer custom.Close()
		systems.Register("custom", custom)
	}

	var sink tracker.Persister
	if !*noDB {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)

		saver := postgres.NewDebouncedSaver(
			postgres.NewSnapshotRepository(pool.DB()),
			500*time.Millisecond,
			logger,
		)
		defer saver.Close()
		sink = saver
	}

	roller := dice.NewRoller(dice.NewCryptoSource(), logger)
	parties := party.List(cfg.Parties)
	sessionLog := combatlog.New(cfg.Tracker.LogFolder, cfg.Tracker.LogEnabled, logger)

	tr := tracker.New(tracker.Settings{
		RPGSystem:     cfg.Tracker.RPGSystem,
		MassiveDamage: cfg.Tracker.MassiveDamage,
		Clamp:         cfg.Tracker.Clamp,
		HPOverflow:    cfg.Tracker.HPOverflow,
		AutoStatus:    cfg.Tracker.AutoStatus,
		UnconsciousID: cfg.Tracker.UnconsciousID,
		VulnerableID:  cfg.Tracker.VulnerableID,
	}, catalog, systems, parties, sessionLog, sink, logger)

	if *encounterPath != "" {
		if err := seedFromFile(tr, monsters, parties, roller, logger, *encounterPath); err != nil {
			logger.Fatal("seeding encounter", zap.Error(err))
		}
	}

	if *begin {
		tr.SetState(true)
	}

	printSummary(tr)
	logger.Info("done", zap.Duration("elapsed", time.Since(start)))
}

// seedFromFile parses the first encounter block in path and fills the
// roster, expanding each entry's count into individual clones.
func seedFromFile(tr *tracker.Tracker, monsters *bestiary.Bestiary, parties party.Lookup,
	roller *dice.Roller, logger *zap.Logger, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading encounter file: %w", err)
	}

	parser := encounter.NewParser(monsters, parties, roller, logger)
	parsed, err := parser.ParseBlocks(string(data))
	if err != nil {
		logger.Warn("some encounter blocks were skipped", zap.Error(err))
	}
	if len(parsed) == 0 {
		return fmt.Errorf("no parseable encounter in %q", path)
	}
	enc := parsed[0]

	state := tracker.EncounterState{Name: enc.Name, Round: 1}
	if enc.HasParty {
		state.Party = enc.Party.Name
	}
	tr.NewEncounter(&state)

	for _, entry := range enc.Entries {
		count := entry.Count.Resolve(roller)
		for i := 0; i < count; i++ {
			tr.Add(entry.Creature.Clone())
		}
	}
	logger.Info("encounter seeded",
		zap.String("name", enc.Name),
		zap.Int("creatures", len(tr.Creatures())),
	)
	return nil
}

func printSummary(tr *tracker.Tracker) {
	for _, c := range tr.Ordered() {
		marker := " "
		if c.Spotlight {
			marker = ">"
		}
		fmt.Printf("%s %-24s HP %d/%d  DC %d\n",
			marker, c.GetName(), c.HP.Current, c.HP.Max, c.DC.Current)
	}
	summary := tr.Difficulty()
	fmt.Println()
	fmt.Printf("Difficulty: %s (%s %.1f)\n",
		summary.Difficulty.DisplayName, summary.Difficulty.Title, summary.Difficulty.Value)
	fmt.Println(summary.Difficulty.Summary)
}
