package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	kioerrors "github.com/harunnryd/kioku/internal/errors"

	"github.com/natefinch/atomic"
)

// Fixed file names inside a data directory.
const (
	primaryFile = "data.json"
	stagingFile = "data.temp.json"
)

const DefaultBackupCount = 3

func backupFile(n int) string {
	return fmt.Sprintf("data.backup.%d.json", n)
}

// Engine commits schema snapshots to a single directory: one primary file
// plus up to backupCount rotated copies of prior snapshots. It holds no
// long-lived reference to any schema, only serialized bytes.
type Engine struct {
	dir            string
	backupCount    int
	consultBackups bool

	// replaceFile performs the final staging->primary rename. Swappable so
	// tests can fail the commit step without touching the staging write.
	replaceFile func(source, destination string) error
}

type EngineConfig struct {
	Dir         string
	BackupCount int
	// ConsultBackupsOnMissing makes Load fall back to backups when the
	// primary file is absent, not just when it is corrupt.
	ConsultBackupsOnMissing bool
}

func NewEngine(cfg EngineConfig) *Engine {
	backupCount := cfg.BackupCount
	if backupCount <= 0 {
		backupCount = DefaultBackupCount
	}
	return &Engine{
		dir:            cfg.Dir,
		backupCount:    backupCount,
		consultBackups: cfg.ConsultBackupsOnMissing,
		replaceFile:    atomic.ReplaceFile,
	}
}

func (e *Engine) Dir() string {
	return e.dir
}

func (e *Engine) primaryPath() string {
	return filepath.Join(e.dir, primaryFile)
}

func (e *Engine) stagingPath() string {
	return filepath.Join(e.dir, stagingFile)
}

func (e *Engine) backupPath(n int) string {
	return filepath.Join(e.dir, backupFile(n))
}

// Save durably commits a snapshot. The order is fixed: write the full
// serialized snapshot to the staging file, rotate backups by copy, then
// atomically rename the staging file over the primary. A failure before the
// rename leaves the previous primary and every backup untouched.
func (e *Engine) Save(s *Schema) error {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return persistErr("create data dir", err)
	}

	data, err := Serialize(s)
	if err != nil {
		return persistErr("serialize snapshot", err)
	}

	staging := e.stagingPath()
	if err := atomic.WriteFile(staging, bytes.NewReader(data)); err != nil {
		return persistErr("write staging file", err)
	}

	primary := e.primaryPath()
	if fileExists(primary) {
		if err := e.rotateBackups(primary); err != nil {
			return err
		}
	}

	if err := e.replaceFile(staging, primary); err != nil {
		return persistErr("commit snapshot", err)
	}

	return nil
}

// rotateBackups shifts each prior snapshot down one slot, oldest first, then
// copies the current primary into slot 1. Copies rather than renames so a
// crash mid-rotation never loses the immediately-prior state.
func (e *Engine) rotateBackups(primary string) error {
	for n := e.backupCount - 1; n >= 1; n-- {
		src := e.backupPath(n)
		if !fileExists(src) {
			continue
		}
		if err := copyFile(src, e.backupPath(n+1)); err != nil {
			return persistErr(fmt.Sprintf("rotate backup %d", n), err)
		}
	}
	if err := copyFile(primary, e.backupPath(1)); err != nil {
		return persistErr("copy primary to backup", err)
	}
	return nil
}

// Load returns the most recent valid snapshot: the primary file if it parses,
// otherwise the first backup that does. When everything is missing or corrupt
// it returns a fresh empty schema; the store always starts in a valid state.
// Load never writes to disk.
func (e *Engine) Load() *Schema {
	primary := e.primaryPath()
	data, err := os.ReadFile(primary)
	switch {
	case err == nil:
		s, derr := Deserialize(data)
		if derr == nil {
			return s
		}
		slog.Warn("Primary snapshot is corrupt, consulting backups", "path", primary, "error", derr)
	case os.IsNotExist(err):
		if !e.consultBackups {
			return NewSchema()
		}
	default:
		slog.Warn("Failed to read primary snapshot, consulting backups", "path", primary, "error", err)
	}

	for n := 1; n <= e.backupCount; n++ {
		path := e.backupPath(n)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		s, derr := Deserialize(data)
		if derr != nil {
			slog.Warn("Backup snapshot is corrupt, trying next", "path", path, "error", derr)
			continue
		}
		slog.Info("Recovered snapshot from backup", "path", path)
		return s
	}

	slog.Warn("No valid snapshot found, starting empty", "dir", e.dir)
	return NewSchema()
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(kioerrors.ErrPersistence, err))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// copyFile makes a full copy, overwriting the destination unconditionally.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
