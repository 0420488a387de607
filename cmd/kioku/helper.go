package main

import (
	"fmt"

	"github.com/harunnryd/kioku/internal/config"
	"github.com/harunnryd/kioku/internal/store"
)

// openStore builds a loaded store facade for read-only commands. Anything
// that writes goes through openLockedStore so two processes cannot
// interleave backup rotations against the same data dir.
func openStore(cfg *config.Config) (*store.Store, error) {
	dir, err := store.ResolveDataDir(cfg.Store.WorkspaceID, cfg.Store.WorkspacePath)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	interval, err := config.DurationOrDefault(cfg.Store.AutosaveInterval, config.DefaultStoreAutosaveInterval)
	if err != nil {
		return nil, fmt.Errorf("parse autosave interval: %w", err)
	}

	engine := store.NewEngine(store.EngineConfig{
		Dir:                     dir,
		BackupCount:             cfg.Store.BackupCount,
		ConsultBackupsOnMissing: cfg.Store.ConsultBackupsOnMissing,
	})

	s := store.New(store.Config{
		Engine:           engine,
		AutosaveInterval: interval,
	})
	s.Load()
	return s, nil
}

func openLockedStore(cfg *config.Config) (*store.Store, *store.FileLock, error) {
	dir, err := store.ResolveDataDir(cfg.Store.WorkspaceID, cfg.Store.WorkspacePath)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve data dir: %w", err)
	}

	lockTimeout, err := config.DurationOrDefault(cfg.Store.LockTimeout, config.DefaultStoreLockTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("parse lock timeout: %w", err)
	}
	lockRetry, err := config.DurationOrDefault(cfg.Store.LockRetry, config.DefaultStoreLockRetry)
	if err != nil {
		return nil, nil, fmt.Errorf("parse lock retry: %w", err)
	}
	lockMaxRetry := cfg.Store.LockMaxRetry
	if lockMaxRetry <= 0 {
		lockMaxRetry = config.DefaultStoreLockMaxRetry
	}

	lock, err := store.NewFileLock(dir, &store.FileLockConfig{
		LockTimeout:  lockTimeout,
		LockRetry:    lockRetry,
		LockMaxRetry: lockMaxRetry,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("acquire data dir lock: %w", err)
	}

	s, err := openStore(cfg)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}
	return s, lock, nil
}
