// Package housekeeping holds the maintenance jobs run from the CLI: database
// backups and their retention, orphan cleanup and bulk image sync.
package housekeeping

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"watch-list/internal/data/repository"
	"watch-list/pkg/storage"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

const (
	backupPrefix    = "backup-"
	backupExt       = ".jsonl.zst"
	backupTimestamp = "20060102-150405"
	checksumExt     = ".sha256"
	formatVersion   = 1
)

// Backup is one archive in the backup directory.
type Backup struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	SHA256    string    `json:"sha256,omitempty"`
	Tables    []Table   `json:"tables,omitempty"`
}

type Table struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

// tableHeader precedes the rows of each table in the archive.
type tableHeader struct {
	Table     string    `json:"table"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Uploader is the part of the object store backups are pushed to.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, sha256Hex, contentType string) error
}

type Backupper struct {
	repo     repository.HousekeepingRepository
	dir      string
	uploader Uploader
	now      func() time.Time
	log      *zap.Logger
}

// NewBackupper writes archives into dir. uploader may be nil when no bucket
// is configured.
func NewBackupper(repo repository.HousekeepingRepository, dir string, uploader Uploader, log *zap.Logger) *Backupper {
	return &Backupper{
		repo:     repo,
		dir:      dir,
		uploader: uploader,
		now:      time.Now,
		log:      log.With(zap.String("job", "backup")),
	}
}

func backupName(t time.Time) string {
	return backupPrefix + t.UTC().Format(backupTimestamp) + backupExt
}

// parseBackupName returns the creation time encoded in name.
func parseBackupName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupExt) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupExt)
	t, err := time.Parse(backupTimestamp, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Create dumps every table into a new archive and writes its checksum
// sidecar. With upload set the archive is also copied to the bucket.
func (b *Backupper) Create(ctx context.Context, upload bool) (*Backup, error) {
	if upload && b.uploader == nil {
		return nil, fmt.Errorf("upload requested but object storage is not configured")
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	createdAt := b.now().UTC().Truncate(time.Second)
	name := backupName(createdAt)
	path := filepath.Join(b.dir, name)

	tables, err := b.write(ctx, path, createdAt)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	digest, size, err := fileDigest(path)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path+checksumExt, []byte(digest+"  "+name+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write checksum: %w", err)
	}

	backup := &Backup{
		Name:      name,
		Path:      path,
		Size:      size,
		CreatedAt: createdAt,
		SHA256:    digest,
		Tables:    tables,
	}

	b.log.Info("Backup written",
		zap.String("path", path),
		zap.Int64("bytes", size),
		zap.String("sha256", digest),
	)

	if upload {
		if err := b.upload(ctx, backup); err != nil {
			return backup, err
		}
	}

	return backup, nil
}

func (b *Backupper) write(ctx context.Context, path string, createdAt time.Time) ([]Table, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}
	defer file.Close()

	encoder, err := zstd.NewWriter(file)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}

	out := bufio.NewWriter(encoder)
	tables := make([]Table, 0, len(repository.BackupTables))

	for _, table := range repository.BackupTables {
		header, err := json.Marshal(tableHeader{Table: table, Version: formatVersion, CreatedAt: createdAt})
		if err != nil {
			encoder.Close()
			return nil, err
		}
		if err := writeLine(out, header); err != nil {
			encoder.Close()
			return nil, err
		}

		rows, err := b.repo.DumpTable(ctx, table, func(row []byte) error {
			return writeLine(out, row)
		})
		if err != nil {
			encoder.Close()
			return nil, fmt.Errorf("dump %s: %w", table, err)
		}

		tables = append(tables, Table{Name: table, Rows: rows})
		b.log.Debug("Table dumped", zap.String("table", table), zap.Int64("rows", rows))
	}

	if err := out.Flush(); err != nil {
		encoder.Close()
		return nil, fmt.Errorf("flush backup: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("finish zstd stream: %w", err)
	}
	return tables, file.Sync()
}

func writeLine(w *bufio.Writer, line []byte) error {
	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

func fileDigest(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	hash := sha256.New()
	size, err := io.Copy(hash, file)
	if err != nil {
		return "", 0, fmt.Errorf("hash backup: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), size, nil
}

func (b *Backupper) upload(ctx context.Context, backup *Backup) error {
	file, err := os.Open(backup.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	key := storage.BackupPrefix + backup.Name
	if err := b.uploader.Upload(ctx, key, file, backup.Size, backup.SHA256, "application/zstd"); err != nil {
		b.log.Error("Backup upload failed", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("upload backup: %w", err)
	}

	b.log.Info("Backup uploaded", zap.String("key", key))
	return nil
}

// List returns the archives in the backup directory, newest first.
func (b *Backupper) List() ([]*Backup, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var backups []*Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		createdAt, ok := parseBackupName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}

		backup := &Backup{
			Name:      entry.Name(),
			Path:      filepath.Join(b.dir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: createdAt,
		}
		if sidecar, err := os.ReadFile(backup.Path + checksumExt); err == nil {
			if fields := strings.Fields(string(sidecar)); len(fields) > 0 {
				backup.SHA256 = fields[0]
			}
		}
		backups = append(backups, backup)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Prune deletes the archives the policy does not keep. With dryRun set it
// only reports them.
func (b *Backupper) Prune(policy RetentionPolicy, dryRun bool) ([]*Backup, error) {
	backups, err := b.List()
	if err != nil {
		return nil, err
	}

	toDelete := policy.Select(backups, b.now())
	if dryRun {
		return toDelete, nil
	}

	for _, backup := range toDelete {
		if err := os.Remove(backup.Path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("delete %s: %w", backup.Name, err)
		}
		_ = os.Remove(backup.Path + checksumExt)
		b.log.Info("Backup pruned", zap.String("name", backup.Name))
	}
	return toDelete, nil
}
