package cli

import (
	"fmt"

	"github.com/archsync/syncengine/pkg/config"
	"github.com/archsync/syncengine/pkg/sync"
)

// buildEngine loads configPath and constructs the Engine, returning it
// together with the loaded Config; shared by every subcommand.
func buildEngine(configPath string) (*sync.Engine, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	sourceRepo, err := config.BuildRepository("source", cfg.SourceRepo)
	if err != nil {
		return nil, nil, err
	}
	targetRepo, err := config.BuildRepository("target", cfg.TargetRepo)
	if err != nil {
		return nil, nil, err
	}

	engineCfg, err := config.BuildEngineConfig(*cfg)
	if err != nil {
		return nil, nil, err
	}

	d := config.BuildDak(cfg.Dak)
	engine := sync.NewEngine(engineCfg, sourceRepo, targetRepo, d)
	return engine, cfg, nil
}
