package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/omarshaarawi/gmwiki/internal/view"
)

// Repository tracks the live profile views so shutdown can stop every clock.
type Repository struct {
	views map[uuid.UUID]*view.ProfileView
	mu    sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{views: make(map[uuid.UUID]*view.ProfileView)}
}

// SaveView registers v and returns the id to release it with.
func (r *Repository) SaveView(v *view.ProfileView) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[id] = v
	return id
}

func (r *Repository) GetView(id uuid.UUID) (*view.ProfileView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	return v, ok
}

// DeleteView closes and forgets the view. Unknown ids are ignored.
func (r *Repository) DeleteView(id uuid.UUID) {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()

	if ok {
		v.Close()
	}
}

// CloseAll closes every registered view and empties the repository.
func (r *Repository) CloseAll() int {
	r.mu.Lock()
	views := r.views
	r.views = make(map[uuid.UUID]*view.ProfileView)
	r.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
	return len(views)
}

func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}
