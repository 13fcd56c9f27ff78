package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/omarshaarawi/gmwiki/internal/models"
)

type fakeDirectory struct {
	mu        sync.Mutex
	players   []models.PlayerSummary
	listErr   error
	profiles  map[string]*models.PlayerProfile
	stats     map[string]*models.PlayerStats
	countries map[string]*models.Country
	calls     map[string]int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		profiles:  map[string]*models.PlayerProfile{},
		stats:     map[string]*models.PlayerStats{},
		countries: map[string]*models.Country{},
		calls:     map[string]int{},
	}
}

var errUpstream = errors.New("upstream unavailable")

func (f *fakeDirectory) ListGrandmasters(context.Context) ([]models.PlayerSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.players, nil
}

func (f *fakeDirectory) GetPlayerProfile(_ context.Context, username string) (*models.PlayerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[username]++
	if username == "flaky" {
		return nil, errUpstream
	}
	p, ok := f.profiles[username]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeDirectory) GetPlayerStats(_ context.Context, username string) *models.PlayerStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats[username]
}

func (f *fakeDirectory) GetCountryInfo(_ context.Context, reference string) *models.Country {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countries[reference]
}

// fakeTicker records registered tasks and runs them on demand.
type fakeTicker struct {
	mu    sync.Mutex
	tasks map[int]func()
	next  int
	err   error
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{tasks: map[int]func(){}}
}

func (t *fakeTicker) Every(_ time.Duration, task func()) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return nil, t.err
	}
	id := t.next
	t.next++
	t.tasks[id] = task
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.tasks, id)
	}, nil
}

func (t *fakeTicker) active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}

// fire runs every registered task once, outside the ticker lock.
func (t *fakeTicker) fire() {
	t.mu.Lock()
	tasks := make([]func(), 0, len(t.tasks))
	for _, task := range t.tasks {
		tasks = append(tasks, task)
	}
	t.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }
