package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/harunnryd/kioku/internal/pathutil"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Store     StoreConfig     `koanf:"store"`
	Briefing  BriefingConfig  `koanf:"briefing"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type StoreConfig struct {
	WorkspaceID             string `koanf:"workspace_id"`
	WorkspacePath           string `koanf:"workspace_path"`
	BackupCount             int    `koanf:"backup_count"`
	AutosaveInterval        string `koanf:"autosave_interval"`
	ConsultBackupsOnMissing bool   `koanf:"consult_backups_on_missing"`
	LockTimeout             string `koanf:"lock_timeout"`
	LockRetry               string `koanf:"lock_retry"`
	LockMaxRetry            int    `koanf:"lock_max_retry"`
}

type BriefingConfig struct {
	RecentSessions int    `koanf:"recent_sessions"`
	ExportPath     string `koanf:"export_path"`
}

type SchedulerConfig struct {
	SweepSchedule    string `koanf:"sweep_schedule"`
	BriefingSchedule string `koanf:"briefing_schedule"`
	MaxSessionIdle   string `koanf:"max_session_idle"`
}

const (
	DefaultLogLevel                = "info"
	DefaultWorkspaceID             = "default"
	DefaultStoreBackupCount        = 3
	DefaultStoreAutosaveInterval   = "30s"
	DefaultStoreLockTimeout        = "30s"
	DefaultStoreLockRetry          = "100ms"
	DefaultStoreLockMaxRetry       = 300
	DefaultBriefingRecentSessions  = 5
	DefaultSchedulerSweep          = "@every 5m"
	DefaultSchedulerBriefing       = "@every 1h"
	DefaultSchedulerMaxSessionIdle = "8h"
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"log.level":                        DefaultLogLevel,
		"store.workspace_id":               DefaultWorkspaceID,
		"store.workspace_path":             filepath.Join(os.Getenv("HOME"), ".kioku", "workspaces"),
		"store.backup_count":               DefaultStoreBackupCount,
		"store.autosave_interval":          DefaultStoreAutosaveInterval,
		"store.consult_backups_on_missing": false,
		"store.lock_timeout":               DefaultStoreLockTimeout,
		"store.lock_retry":                 DefaultStoreLockRetry,
		"store.lock_max_retry":             DefaultStoreLockMaxRetry,
		"briefing.recent_sessions":         DefaultBriefingRecentSessions,
		"briefing.export_path":             "",
		"scheduler.sweep_schedule":         DefaultSchedulerSweep,
		"scheduler.briefing_schedule":      DefaultSchedulerBriefing,
		"scheduler.max_session_idle":       DefaultSchedulerMaxSessionIdle,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".kioku", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider("KIOKU_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "KIOKU_")), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if err := normalizePathFields(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func normalizePathFields(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	workspacePath, err := expandConfiguredPath(cfg.Store.WorkspacePath)
	if err != nil {
		return err
	}
	if workspacePath != "" {
		cfg.Store.WorkspacePath = workspacePath
	}

	exportPath, err := expandConfiguredPath(cfg.Briefing.ExportPath)
	if err != nil {
		return err
	}
	if exportPath != "" {
		cfg.Briefing.ExportPath = exportPath
	}

	return nil
}

func expandConfiguredPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	expanded, err := pathutil.Expand(trimmed)
	if err != nil {
		return "", err
	}
	return expanded, nil
}
