package caravan

import "sync"

// Registry holds the live caravan models, keyed by channel ID. It is safe
// for concurrent use; individual models are still mutated by one goroutine
// at a time.
type Registry struct {
	mu       sync.Mutex
	caravans map[string]*Model

	maxGuests int
}

// NewRegistry creates an empty registry. maxGuests applies to every caravan
// it creates.
func NewRegistry(maxGuests int) *Registry {
	return &Registry{
		caravans:  make(map[string]*Model),
		maxGuests: maxGuests,
	}
}

// GetOrCreate returns the caravan for the channel, creating it on first use.
func (r *Registry) GetOrCreate(channelID, channelName string) *Model {
	r.mu.Lock()
	defer r.mu.Unlock()

	if model, ok := r.caravans[channelID]; ok {
		return model
	}
	model := NewModel(channelID, channelName, r.maxGuests)
	r.caravans[channelID] = model
	return model
}

// Get returns the caravan for the channel, or nil when none exists.
func (r *Registry) Get(channelID string) *Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.caravans[channelID]
}

// Delete removes the caravan for the channel, reporting whether one existed.
func (r *Registry) Delete(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.caravans[channelID]
	delete(r.caravans, channelID)
	return ok
}

// Len returns the number of live caravans.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.caravans)
}
