package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordslide/apps/go-server/assets"
	"github.com/robalobadob/wordslide/apps/go-server/internal/daily"
	"github.com/robalobadob/wordslide/apps/go-server/internal/httpserver"
	"github.com/robalobadob/wordslide/apps/go-server/internal/store"
	"github.com/robalobadob/wordslide/apps/go-server/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	ctx := context.Background()

	// Dictionary: configured file / URL first, the bundled list otherwise.
	var src words.MultiSource
	if cfg.WordsFile != "" {
		src = append(src, words.FileSource(cfg.WordsFile))
	}
	if cfg.WordsURL != "" {
		src = append(src, words.HTTPSource{URL: cfg.WordsURL})
	}
	src = append(src, words.StaticSource(assets.Words))
	dict := words.New(src, nil)
	dict.Load(ctx)

	// Progress + accounts live in sqlite when DB_PATH is set.
	var (
		db   *sql.DB
		kv   store.KV = store.NewMemory()
		days *daily.Store
	)
	if cfg.DBPath != "" {
		var err error
		db, err = openDB(ctx, cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
		}
		defer db.Close()
		kv = store.NewSQLite(db)
		days = daily.NewStore(db, nil)
	} else {
		log.Warn().Msg("DB_PATH not set; progress is kept in memory and accounts are disabled")
	}

	// Level words: published list, then the remote feed, then a pick from
	// the dictionary that is the same on every server for the day.
	var source daily.Chain
	if days != nil {
		source = append(source, days)
	}
	if cfg.DailyURL != "" {
		source = append(source, daily.Remote{BaseURL: cfg.DailyURL})
	}
	source = append(source, daily.Picker{
		Words:  dict,
		Salt:   cfg.DailySalt,
		Count:  cfg.Rules.WordCount,
		Length: cfg.Rules.WordLength,
	})

	srv := httpserver.New(httpserver.Deps{
		DB:         db,
		KV:         kv,
		Dictionary: dict,
		Source:     source,
		Days:       days,
		Rules:      cfg.Rules,
		AdminToken: cfg.AdminToken,
		SessionTTL: cfg.SessionTTL,
	})
	log.Info().
		Str("port", cfg.Port).
		Int("reward", cfg.Rules.Reward).
		Int("lives", cfg.Rules.Lives).
		Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
