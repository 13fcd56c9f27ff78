package view

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omarshaarawi/gmwiki/internal/metrics"
	"github.com/omarshaarawi/gmwiki/internal/models"
)

const clockInterval = time.Second

// Ticker runs task every interval until stop is called.
type Ticker interface {
	Every(interval time.Duration, task func()) (stop func(), err error)
}

type ProfileOption func(*ProfileView)

// WithTicker drives the elapsed-time clock. Without a ticker the display is
// computed once per load.
func WithTicker(t Ticker) ProfileOption {
	return func(v *ProfileView) { v.ticker = t }
}

func WithClock(now func() time.Time) ProfileOption {
	return func(v *ProfileView) { v.now = now }
}

// WithElapsedListener is called with the new display after every recomputation.
func WithElapsedListener(fn func(elapsed string)) ProfileOption {
	return func(v *ProfileView) { v.onElapsed = fn }
}

// ProfileView holds one player's profile and stats plus the live
// time-since-online display. It is safe for use by the clock goroutine and
// its owner at the same time.
type ProfileView struct {
	dir       Directory
	ticker    Ticker
	now       func() time.Time
	onElapsed func(string)

	mu         sync.Mutex
	username   string
	profile    *models.PlayerProfile
	stats      *models.PlayerStats
	loading    bool
	elapsed    string
	err        error
	generation uint64
	stopClock  func()
	closed     bool
	done       chan struct{}
}

func NewProfileView(dir Directory, opts ...ProfileOption) *ProfileView {
	v := &ProfileView{
		dir:  dir,
		now:  time.Now,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load fetches profile and stats for username. Switching to another username
// drops the previous record and its clock before fetching. The returned error
// is the profile fetch error, if any; a missing player is not an error.
func (v *ProfileView) Load(ctx context.Context, username string) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	var halt func()
	if username != v.username {
		v.username = username
		v.profile = nil
		v.stats = nil
		v.elapsed = ""
		halt = v.detachClockLocked()
	}
	v.loading = true
	v.generation++
	gen := v.generation
	v.mu.Unlock()
	if halt != nil {
		halt()
	}

	profile, stats, err := v.fetch(ctx, username)
	if err != nil {
		slog.Error("Error fetching profile data", "username", username, "error", err)
	}

	v.mu.Lock()
	if gen != v.generation {
		v.mu.Unlock()
		return err
	}
	v.loading = false
	v.err = err
	if profile == nil {
		v.mu.Unlock()
		return err
	}

	halt = v.detachClockLocked()
	v.profile = profile
	v.stats = stats
	v.elapsed = ""
	if profile.LastOnline != nil {
		v.startClockLocked(*profile.LastOnline, gen)
	}
	v.mu.Unlock()
	if halt != nil {
		halt()
	}
	return err
}

func (v *ProfileView) fetch(ctx context.Context, username string) (*models.PlayerProfile, *models.PlayerStats, error) {
	var (
		profile *models.PlayerProfile
		stats   *models.PlayerStats
		g       errgroup.Group
	)
	g.Go(func() error {
		var err error
		profile, err = v.dir.GetPlayerProfile(ctx, username)
		return err
	})
	g.Go(func() error {
		stats = v.dir.GetPlayerStats(ctx, username)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, nil
	}

	if profile.CountryReferenceURL != "" {
		if country := v.dir.GetCountryInfo(ctx, profile.CountryReferenceURL); country != nil {
			profile.CountryCode = country.Code
			profile.CountryName = country.Name
		}
	}
	if profile.FIDERating == nil && stats != nil && stats.FIDE != nil {
		fide := *stats.FIDE
		profile.FIDERating = &fide
	}
	return profile, stats, nil
}

func (v *ProfileView) startClockLocked(lastOnline int64, gen uint64) {
	v.elapsed = FormatElapsed(lastOnline, v.now())
	if v.ticker == nil {
		return
	}

	stop, err := v.ticker.Every(clockInterval, func() { v.tick(lastOnline, gen) })
	if err != nil {
		slog.Error("Failed to start elapsed clock", "username", v.username, "error", err)
		return
	}
	metrics.LiveClocks.Inc()

	var once sync.Once
	v.stopClock = func() {
		once.Do(func() {
			stop()
			metrics.LiveClocks.Dec()
		})
	}
}

func (v *ProfileView) tick(lastOnline int64, gen uint64) {
	v.mu.Lock()
	if gen != v.generation || v.stopClock == nil {
		v.mu.Unlock()
		return
	}
	elapsed := FormatElapsed(lastOnline, v.now())
	v.elapsed = elapsed
	listener := v.onElapsed
	v.mu.Unlock()

	if listener != nil {
		listener(elapsed)
	}
}

// detachClockLocked unhooks the running clock and returns its stop function.
// Callers invoke it after releasing the lock, since a tick may be waiting on it.
func (v *ProfileView) detachClockLocked() func() {
	stop := v.stopClock
	v.stopClock = nil
	return stop
}

// Close stops the clock. Ticks already in flight are discarded and later
// loads are ignored.
func (v *ProfileView) Close() {
	v.mu.Lock()
	if !v.closed {
		v.closed = true
		close(v.done)
	}
	v.generation++
	halt := v.detachClockLocked()
	v.mu.Unlock()
	if halt != nil {
		halt()
	}
}

// Done is closed once the view is closed.
func (v *ProfileView) Done() <-chan struct{} {
	return v.done
}

func (v *ProfileView) Username() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.username
}

func (v *ProfileView) Profile() *models.PlayerProfile {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.profile
}

func (v *ProfileView) Stats() *models.PlayerStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

func (v *ProfileView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Elapsed is the HH:MM:SS display, or empty when the player has no last-online time.
func (v *ProfileView) Elapsed() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.elapsed
}

// Err is the error of the last completed load.
func (v *ProfileView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func (v *ProfileView) Ticking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stopClock != nil
}

func (v *ProfileView) Page() ProfilePage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return newProfilePage(v.username, v.loading, v.profile, v.stats, v.elapsed)
}
