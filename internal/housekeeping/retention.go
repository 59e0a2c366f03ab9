package housekeeping

import (
	"sort"
	"time"
)

// RetentionPolicy decides which backups survive a prune.
type RetentionPolicy struct {
	// MinCount newest backups are kept regardless of age.
	MinCount int
	// MaxCount caps the number kept (0 = unlimited).
	MaxCount int
	// MaxAgeDays deletes anything older (0 = unlimited).
	MaxAgeDays int
}

// Select returns the backups to delete. backups may be in any order.
func (p RetentionPolicy) Select(backups []*Backup, now time.Time) []*Backup {
	sorted := make([]*Backup, len(backups))
	copy(sorted, backups)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	var cutoff time.Time
	if p.MaxAgeDays > 0 {
		cutoff = now.AddDate(0, 0, -p.MaxAgeDays)
	}

	var toDelete []*Backup
	kept := 0
	for i, backup := range sorted {
		switch {
		case i < p.MinCount:
			kept++
		case !cutoff.IsZero() && backup.CreatedAt.Before(cutoff):
			toDelete = append(toDelete, backup)
		case p.MaxCount > 0 && kept >= p.MaxCount:
			toDelete = append(toDelete, backup)
		default:
			kept++
		}
	}
	return toDelete
}
