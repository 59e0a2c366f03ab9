package entity

type DashboardStats struct {
	Movies       int64 `db:"movies"`
	TVShows      int64 `db:"tv_shows"`
	Actors       int64 `db:"actors"`
	Users        int64 `db:"users"`
	Reviews      int64 `db:"reviews"`
	RecentLogs   int64 `db:"recent_logs"`
	ImportedLast int64 `db:"imported_last_day"`
}
