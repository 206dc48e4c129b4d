package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/traypop/internal/anim"
	"github.com/sandeepkv93/traypop/internal/storage"
	"github.com/sandeepkv93/traypop/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "traypop failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())
	if cfg.DBPath == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.DBPath = filepath.Join(base, "traypop", "traypop.db")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := storage.MigrateUp(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		return err
	}

	engine := anim.NewEngine(cfg.FrameBuffer, time.Duration(cfg.AnimFrameMS)*time.Millisecond)
	engine.Start()
	defer engine.Stop()

	// Focus reporting delivers tea.FocusMsg/tea.BlurMsg, which drive the
	// popup's show/hide lifecycle.
	program := tea.NewProgram(update.NewModelWithConfig(repo, engine, cfg), tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
