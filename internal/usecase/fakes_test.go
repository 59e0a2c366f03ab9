package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"watch-list/internal/data/repository/repotest"
	"watch-list/internal/tmdb"
	"watch-list/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret    = "this_is_a_very_long_secret_key_for_testing_purposes_12345"
	testPublicURL = "https://cdn.example.com/"
)

type fakeTMDb struct {
	movies  map[int64]*tmdb.Movie
	shows   map[int64]*tmdb.TVShow
	people  map[int64]*tmdb.Person
	search  *tmdb.SearchPage
	images  map[string][]byte
	failGet error
}

func newFakeTMDb() *fakeTMDb {
	return &fakeTMDb{
		movies: map[int64]*tmdb.Movie{},
		shows:  map[int64]*tmdb.TVShow{},
		people: map[int64]*tmdb.Person{},
		images: map[string][]byte{},
	}
}

func (f *fakeTMDb) Configured() bool { return true }

func (f *fakeTMDb) SearchMovies(_ context.Context, _ string, _ int) (*tmdb.SearchPage, error) {
	return f.search, nil
}

func (f *fakeTMDb) SearchTV(_ context.Context, _ string, _ int) (*tmdb.SearchPage, error) {
	return f.search, nil
}

func (f *fakeTMDb) GetMovie(_ context.Context, id int64) (*tmdb.Movie, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	if m, ok := f.movies[id]; ok {
		return m, nil
	}
	return nil, tmdb.ErrNotFound
}

func (f *fakeTMDb) GetTV(_ context.Context, id int64) (*tmdb.TVShow, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	if show, ok := f.shows[id]; ok {
		return show, nil
	}
	return nil, tmdb.ErrNotFound
}

func (f *fakeTMDb) GetPerson(_ context.Context, id int64) (*tmdb.Person, error) {
	if p, ok := f.people[id]; ok {
		return p, nil
	}
	return nil, tmdb.ErrNotFound
}

func (f *fakeTMDb) ImageURL(path string) *string {
	if path == "" {
		return nil
	}
	url := "https://image.tmdb.org/t/p/original" + path
	return &url
}

func (f *fakeTMDb) DownloadImage(_ context.Context, path string) ([]byte, error) {
	if data, ok := f.images[path]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("download %s: %w", path, tmdb.ErrNotFound)
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return testPublicURL + key, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, testPublicURL) {
		return "", false
	}
	return strings.TrimPrefix(url, testPublicURL), true
}

// fakeProcessor tags the payload so tests can tell processed bytes apart.
type fakeProcessor struct{}

func (fakeProcessor) Process(data []byte, kind string) ([]byte, error) {
	if string(data) == "garbage" {
		return nil, fmt.Errorf("decode: unsupported")
	}
	return append([]byte(kind+":"), data...), nil
}

type testEnv struct {
	store   *repotest.Store
	tmdb    *fakeTMDb
	objects *fakeStore
	svc     *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	jwt, err := utils.NewJWTManager(utils.JWTConfig{Secret: testSecret, ExpiryHours: 1})
	require.NoError(t, err)

	env := &testEnv{
		store:   repotest.NewStore(),
		tmdb:    newFakeTMDb(),
		objects: newFakeStore(),
	}
	cfg := &utils.Config{TMDb: utils.TMDbConfig{CastLimit: 2}}
	deps := Deps{TMDb: env.tmdb, Storage: env.objects, Images: fakeProcessor{}}
	env.svc = NewService(repotest.NewRepository(env.store), cfg, jwt, deps, zap.NewNop())
	return env
}
