package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ncruces/go-strftime"

	"treedrag/internal/model"
)

// BackupManager writes timestamped snapshots of a document before
// structural commits, so a bad drag can be undone by hand.
type BackupManager struct {
	backupDir string
}

// NewBackupManager creates a backup manager, ensuring the backup directory
// exists.
func NewBackupManager() (*BackupManager, error) {
	backupDir := getBackupDir()
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &BackupManager{backupDir: backupDir}, nil
}

// CreateBackup writes a snapshot of the document tagged with the original
// file path and a timestamp.
func (bm *BackupManager) CreateBackup(doc *model.Document, originalPath string) error {
	absPath, err := filepath.Abs(originalPath)
	if err != nil {
		absPath = originalPath
	}

	snapshot := struct {
		OriginalPath string          `json:"original_path"`
		Document     *model.Document `json:"document"`
	}{OriginalPath: absPath, Document: doc}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup JSON: %w", err)
	}

	backupPath := filepath.Join(bm.backupDir, bm.generateBackupFilename(filepath.Base(originalPath)))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// generateBackupFilename creates a name like 20240101_120000_records.json.
func (bm *BackupManager) generateBackupFilename(base string) string {
	timestamp := strftime.Format("%Y%m%d_%H%M%S", time.Now())
	return fmt.Sprintf("%s_%s", timestamp, base)
}

// getBackupDir returns the path to the backup directory.
func getBackupDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to /tmp if home directory cannot be determined
		return filepath.Join("/tmp", ".treedrag", "backups")
	}
	return filepath.Join(homeDir, ".local", "share", "treedrag", "backups")
}
