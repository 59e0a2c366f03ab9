package housekeeping

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/data/repository/repotest"
	"watch-list/internal/dto/response"
	"watch-list/pkg/storage"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cdn = "https://cdn.example.com"

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

type uploaded struct {
	key    string
	data   []byte
	digest string
}

type memoryBucket struct {
	mu      sync.Mutex
	keys    map[string]time.Time
	uploads []uploaded
}

// newMemoryBucket seeds keys written well outside the cleanup grace period.
func newMemoryBucket(keys ...string) *memoryBucket {
	b := &memoryBucket{keys: map[string]time.Time{}}
	for _, key := range keys {
		b.keys[key] = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return b
}

func (b *memoryBucket) Upload(_ context.Context, key string, r io.Reader, _ int64, sha256Hex, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, uploaded{key: key, data: data, digest: sha256Hex})
	return nil
}

func (b *memoryBucket) List(_ context.Context, prefix string) ([]storage.Object, error) {
	var objects []storage.Object
	for key, modified := range b.keys {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, storage.Object{Key: key, LastModified: modified})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (b *memoryBucket) Delete(_ context.Context, key string) error {
	delete(b.keys, key)
	return nil
}

func (b *memoryBucket) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, cdn+"/") {
		return "", false
	}
	return strings.TrimPrefix(url, cdn+"/"), true
}

func readArchive(t *testing.T, path string) []string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	require.NoError(t, err)
	defer decoder.Close()

	var lines []string
	scanner := bufio.NewScanner(decoder)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestBackupCreate(t *testing.T) {
	store := repotest.NewStore()
	alice := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: "alice", PasswordHash: "$2a$10$hash"}
	store.Users[alice.ID] = alice
	movie := &entity.Movie{Base: entity.Base{ID: uuid.New()}, Title: "Heat"}
	store.Movies[movie.ID] = movie

	dir := t.TempDir()
	bucket := newMemoryBucket()
	backupper := NewBackupper(repotest.NewRepository(store).Housekeeping, dir, bucket, zap.NewNop())
	backupper.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 5, 0, time.UTC) }

	backup, err := backupper.Create(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "backup-20261017-093005.jsonl.zst", backup.Name)
	require.Len(t, backup.Tables, len(repository.BackupTables))
	assert.Equal(t, Table{Name: "users", Rows: 1}, backup.Tables[0])

	lines := readArchive(t, backup.Path)
	// one header per table plus the two rows
	require.Len(t, lines, len(repository.BackupTables)+2)

	var header tableHeader
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	assert.Equal(t, "users", header.Table)
	assert.Equal(t, formatVersion, header.Version)
	assert.Contains(t, lines[1], "$2a$10$hash")

	var second tableHeader
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &second))
	assert.Equal(t, "movies", second.Table)

	raw, err := os.ReadFile(backup.Path)
	require.NoError(t, err)
	sum := sha256.Sum256(raw)
	digest := hex.EncodeToString(sum[:])
	assert.Equal(t, digest, backup.SHA256)

	sidecar, err := os.ReadFile(backup.Path + checksumExt)
	require.NoError(t, err)
	assert.Equal(t, digest+"  "+backup.Name+"\n", string(sidecar))

	require.Len(t, bucket.uploads, 1)
	assert.Equal(t, "backups/"+backup.Name, bucket.uploads[0].key)
	assert.Equal(t, digest, bucket.uploads[0].digest)
	assert.True(t, bytes.Equal(raw, bucket.uploads[0].data))
}

func TestBackupCreate_UploadWithoutStorage(t *testing.T) {
	backupper := NewBackupper(repotest.NewRepository(repotest.NewStore()).Housekeeping, t.TempDir(), nil, zap.NewNop())

	_, err := backupper.Create(context.Background(), true)
	assert.Error(t, err)
}

func TestBackupListAndPrune(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	ages := []int{0, 1, 2, 40, 100}
	for _, days := range ages {
		name := backupName(now.AddDate(0, 0, -days))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+checksumExt), []byte("abc  "+name+"\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep me"), 0o644))

	backupper := NewBackupper(nil, dir, nil, zap.NewNop())
	backupper.now = func() time.Time { return now }

	backups, err := backupper.List()
	require.NoError(t, err)
	require.Len(t, backups, len(ages))
	assert.True(t, backups[0].CreatedAt.Equal(now))
	assert.Equal(t, "abc", backups[0].SHA256)

	policy := RetentionPolicy{MinCount: 2, MaxCount: 3, MaxAgeDays: 30}

	planned, err := backupper.Prune(policy, true)
	require.NoError(t, err)
	require.Len(t, planned, 2)

	deleted, err := backupper.Prune(policy, false)
	require.NoError(t, err)
	require.Len(t, deleted, 2)

	remaining, err := backupper.List()
	require.NoError(t, err)
	assert.Len(t, remaining, 3)

	_, err = os.Stat(deleted[0].Path + checksumExt)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
}

func TestRetentionPolicySelect(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	daysAgo := func(days ...int) []*Backup {
		var backups []*Backup
		for _, d := range days {
			backups = append(backups, &Backup{Name: backupName(now.AddDate(0, 0, -d)), CreatedAt: now.AddDate(0, 0, -d)})
		}
		return backups
	}

	tests := []struct {
		name    string
		policy  RetentionPolicy
		backups []*Backup
		want    int
	}{
		{"unlimited keeps all", RetentionPolicy{}, daysAgo(1, 50, 500), 0},
		{"max age", RetentionPolicy{MaxAgeDays: 30}, daysAgo(1, 29, 31, 90), 2},
		{"min count protects old backups", RetentionPolicy{MinCount: 3, MaxAgeDays: 30}, daysAgo(100, 200, 300, 400), 1},
		{"max count", RetentionPolicy{MaxCount: 2}, daysAgo(1, 2, 3, 4, 5), 3},
		{"max count never goes below min count", RetentionPolicy{MinCount: 4, MaxCount: 2}, daysAgo(1, 2, 3, 4, 5), 1},
		{"input order does not matter", RetentionPolicy{MaxCount: 1}, daysAgo(9, 1, 5), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Select(tt.backups, now)
			assert.Len(t, got, tt.want)
		})
	}

	// the newest backup always survives a max count of one
	got := RetentionPolicy{MaxCount: 1}.Select(daysAgo(9, 1, 5), now)
	for _, b := range got {
		assert.NotEqual(t, backupName(now.AddDate(0, 0, -1)), b.Name)
	}
}

func TestParseBackupName(t *testing.T) {
	created, ok := parseBackupName("backup-20261017-093005.jsonl.zst")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 17, 9, 30, 5, 0, time.UTC), created)

	for _, name := range []string{"backup-2026.jsonl.zst", "dump-20261017-093005.jsonl.zst", "backup-20261017-093005.sql"} {
		_, ok := parseBackupName(name)
		assert.False(t, ok, name)
	}
}

func seedCleanup(store *repotest.Store) (cast, orphan *entity.Actor) {
	movie := &entity.Movie{Base: entity.Base{ID: uuid.New()}, Title: "Heat", PosterURL: strPtr(cdn + "/images/movie/a/poster-1.webp")}
	store.Movies[movie.ID] = movie

	cast = &entity.Actor{Base: entity.Base{ID: uuid.New()}, Name: "Al Pacino"}
	orphan = &entity.Actor{Base: entity.Base{ID: uuid.New()}, Name: "Nobody", ProfileURL: strPtr(cdn + "/images/actor/b/profile-1.webp")}
	store.Actors[cast.ID] = cast
	store.Actors[orphan.ID] = orphan
	store.Casts[entity.KindMovie][movie.ID] = []entity.CastEntry{{ID: uuid.New(), MediaID: movie.ID, ActorID: cast.ID}}
	return cast, orphan
}

func TestCleanup_DryRun(t *testing.T) {
	store := repotest.NewStore()
	_, orphan := seedCleanup(store)
	bucket := newMemoryBucket(
		"images/movie/a/poster-1.webp",
		"images/actor/b/profile-1.webp",
		"images/movie/a/poster-0.webp",
		"backups/backup-20261017-093005.jsonl.zst",
	)

	report, err := NewCleaner(repotest.NewRepository(store), bucket, zap.NewNop()).Run(context.Background(), false)
	require.NoError(t, err)

	assert.False(t, report.Applied)
	assert.Equal(t, []string{"Nobody"}, report.OrphanActors)
	assert.Zero(t, report.DeletedActors)
	assert.Equal(t, []string{"images/movie/a/poster-0.webp"}, report.OrphanObjects)
	assert.Zero(t, report.DeletedObjects)

	assert.Contains(t, store.Actors, orphan.ID)
	assert.Len(t, bucket.keys, 4)
}

func TestCleanup_Apply(t *testing.T) {
	store := repotest.NewStore()
	cast, orphan := seedCleanup(store)
	bucket := newMemoryBucket(
		"images/movie/a/poster-1.webp",
		"images/actor/b/profile-1.webp",
		"images/movie/a/poster-0.webp",
		"backups/backup-20261017-093005.jsonl.zst",
	)

	report, err := NewCleaner(repotest.NewRepository(store), bucket, zap.NewNop()).Run(context.Background(), true)
	require.NoError(t, err)

	assert.EqualValues(t, 1, report.DeletedActors)
	assert.NotContains(t, store.Actors, orphan.ID)
	assert.Contains(t, store.Actors, cast.ID)

	// the deleted actor's profile is swept in the same run
	assert.ElementsMatch(t, []string{"images/movie/a/poster-0.webp", "images/actor/b/profile-1.webp"}, report.OrphanObjects)
	assert.Equal(t, 2, report.DeletedObjects)
	assert.ElementsMatch(t, []string{"images/movie/a/poster-1.webp", "backups/backup-20261017-093005.jsonl.zst"}, keysOf(bucket))
}

func TestCleanup_WithoutStorage(t *testing.T) {
	store := repotest.NewStore()
	seedCleanup(store)

	report, err := NewCleaner(repotest.NewRepository(store), nil, zap.NewNop()).Run(context.Background(), true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.DeletedActors)
	assert.Empty(t, report.OrphanObjects)
}

func TestCleanup_SkipsRecentUploads(t *testing.T) {
	store := repotest.NewStore()
	seedCleanup(store)
	bucket := newMemoryBucket("images/movie/a/poster-1.webp", "images/movie/a/poster-0.webp")

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	// uploaded moments ago, its URL not committed yet
	bucket.keys["images/movie/a/poster-2.webp"] = now.Add(-time.Minute)

	cleaner := NewCleaner(repotest.NewRepository(store), bucket, zap.NewNop())
	cleaner.now = func() time.Time { return now }

	report, err := cleaner.Run(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, report.SkippedRecent)
	assert.NotContains(t, report.OrphanObjects, "images/movie/a/poster-2.webp")
	assert.Contains(t, bucket.keys, "images/movie/a/poster-2.webp")
	assert.NotContains(t, bucket.keys, "images/movie/a/poster-0.webp")
}

func TestCleanup_RefusesWhenNoURLMapsToAKey(t *testing.T) {
	store := repotest.NewStore()
	movie := &entity.Movie{
		Base:      entity.Base{ID: uuid.New()},
		Title:     "Heat",
		PosterURL: strPtr("https://old-cdn.example.com/images/movie/a/poster-1.webp"),
	}
	store.Movies[movie.ID] = movie
	bucket := newMemoryBucket("images/movie/a/poster-1.webp", "images/movie/a/poster-0.webp")

	_, err := NewCleaner(repotest.NewRepository(store), bucket, zap.NewNop()).Run(context.Background(), true)
	require.ErrorIs(t, err, errUnmappedReferences)
	assert.Len(t, bucket.keys, 2)
}

func TestCleanup_OnlyRemoteURLsStillSweeps(t *testing.T) {
	store := repotest.NewStore()
	movie := &entity.Movie{
		Base:      entity.Base{ID: uuid.New()},
		Title:     "Heat",
		PosterURL: strPtr("https://image.tmdb.org/t/p/original/heat.jpg"),
	}
	store.Movies[movie.ID] = movie
	bucket := newMemoryBucket("images/movie/a/poster-0.webp")

	report, err := NewCleaner(repotest.NewRepository(store), bucket, zap.NewNop()).Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DeletedObjects)
	assert.Empty(t, bucket.keys)
}

func keysOf(b *memoryBucket) []string {
	var keys []string
	for key := range b.keys {
		keys = append(keys, key)
	}
	return keys
}

// recordingImages implements usecase.ImageService; only Sync is exercised.
type recordingImages struct {
	mu      sync.Mutex
	calls   []string
	failIDs map[string]bool
	partial map[string]bool
}

func (r *recordingImages) Upload(context.Context, string, string, string, []byte) (*response.ImageResponse, error) {
	return nil, errors.New("not used")
}

func (r *recordingImages) Delete(context.Context, string, string, string) error {
	return errors.New("not used")
}

func (r *recordingImages) ApplyRemote(context.Context, entity.ResourceType, uuid.UUID, map[string]string) (map[string]string, map[string]string) {
	return nil, nil
}

func (r *recordingImages) RemoveObjects(context.Context, ...*string) {}

func (r *recordingImages) Sync(_ context.Context, resourceType, id string) (*response.ImageSyncResponse, error) {
	r.mu.Lock()
	r.calls = append(r.calls, resourceType+"/"+id)
	r.mu.Unlock()

	if r.failIDs[id] {
		return nil, errors.New("tmdb unavailable")
	}
	resp := &response.ImageSyncResponse{ResourceType: resourceType, ResourceID: id, Synced: map[string]string{"poster": cdn + "/x"}}
	if r.partial[id] {
		resp.Failed = map[string]string{"backdrop": "download failed"}
	}
	return resp, nil
}

func seedPending(store *repotest.Store) (movies []*entity.Movie, actor *entity.Actor) {
	for i, title := range []string{"Heat", "Ronin", "Collateral"} {
		m := &entity.Movie{
			Base:      entity.Base{ID: uuid.New()},
			TMDbID:    int64Ptr(int64(100 + i)),
			Title:     title,
			PosterURL: strPtr("https://image.tmdb.org/t/p/original/" + title + ".jpg"),
		}
		store.Movies[m.ID] = m
		movies = append(movies, m)
	}

	done := &entity.Movie{Base: entity.Base{ID: uuid.New()}, TMDbID: int64Ptr(999), Title: "Done", PosterURL: strPtr(cdn + "/images/movie/done.webp")}
	store.Movies[done.ID] = done
	manual := &entity.Movie{Base: entity.Base{ID: uuid.New()}, Title: "Manual", PosterURL: strPtr("https://elsewhere.example/p.jpg")}
	store.Movies[manual.ID] = manual

	actor = &entity.Actor{Base: entity.Base{ID: uuid.New()}, TMDbID: int64Ptr(7), Name: "Al Pacino", ProfileURL: strPtr("https://image.tmdb.org/t/p/original/al.jpg")}
	store.Actors[actor.ID] = actor
	return movies, actor
}

func TestImageSync(t *testing.T) {
	store := repotest.NewStore()
	movies, _ := seedPending(store)
	images := &recordingImages{
		failIDs: map[string]bool{movies[0].ID.String(): true},
		partial: map[string]bool{movies[1].ID.String(): true},
	}

	syncer := NewImageSyncer(repotest.NewRepository(store), images, cdn+"/", zap.NewNop())
	report, err := syncer.Run(context.Background(), SyncOptions{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Attempted)
	assert.Equal(t, 2, report.Synced)
	require.Len(t, report.Failures, 2)
	assert.Len(t, images.calls, 4)
}

func TestImageSync_TypeAndLimit(t *testing.T) {
	store := repotest.NewStore()
	_, actor := seedPending(store)
	images := &recordingImages{}
	syncer := NewImageSyncer(repotest.NewRepository(store), images, cdn+"/", zap.NewNop())

	report, err := syncer.Run(context.Background(), SyncOptions{Type: "actor"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, []string{"actor/" + actor.ID.String()}, images.calls)

	images.calls = nil
	report, err = syncer.Run(context.Background(), SyncOptions{Type: "movie", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Attempted)
	assert.Len(t, images.calls, 2)

	_, err = syncer.Run(context.Background(), SyncOptions{Type: "podcast"})
	assert.Error(t, err)
}
