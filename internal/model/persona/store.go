package persona

// Store exposes persona retrieval to the services.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the predefined persona list.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// MustFind returns the persona or the matching seed entry when the store lacks it.
func MustFind(s Store, id string) Persona {
	if s != nil {
		if p, ok := s.FindByID(id); ok {
			return p
		}
	}
	for _, p := range Seed() {
		if p.ID == id {
			return p
		}
	}
	panic("persona: unknown id " + id)
}
