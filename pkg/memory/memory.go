package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/platinummonkey/samonya/pkg/catalog"
)

// Profile is the remembered client data
type Profile struct {
	Values    map[catalog.Concept]string `json:"values"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// Empty reports whether nothing has been remembered
func (p Profile) Empty() bool {
	return len(p.Values) == 0
}

func (p Profile) clone() Profile {
	out := Profile{UpdatedAt: p.UpdatedAt, Values: make(map[catalog.Concept]string, len(p.Values))}
	for k, v := range p.Values {
		out.Values[k] = v
	}
	return out
}

// Memory is one session's client profile
type Memory struct {
	mu      sync.Mutex
	profile Profile
	now     func() time.Time
}

// New creates an empty memory
func New() *Memory {
	return &Memory{
		profile: Profile{Values: make(map[catalog.Concept]string)},
		now:     time.Now,
	}
}

// Update stores the remembered fields of a submission, whether or not the
// tool's form declares them (see catalog.Tool.MemoryFields). Blank values are
// ignored. It reports whether anything was written.
func (m *Memory) Update(tool catalog.Tool, fields map[string]string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := false
	set := make(map[catalog.Concept]bool)
	for _, fc := range tool.MemoryFields() {
		if set[fc.Concept] {
			continue
		}
		v := strings.TrimSpace(fields[fc.Field])
		if v == "" {
			continue
		}
		m.profile.Values[fc.Concept] = v
		set[fc.Concept] = true
		changed = true
	}
	if changed {
		m.profile.UpdatedAt = m.now()
	}
	return changed
}

// Prefill returns remembered values keyed by the tool's field names
func (m *Memory) Prefill(tool catalog.Tool) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string)
	for name, concept := range tool.ConceptFields() {
		if v, ok := m.profile.Values[concept]; ok {
			out[name] = v
		}
	}
	return out
}

// Get returns the value remembered for a concept
func (m *Memory) Get(concept catalog.Concept) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.profile.Values[concept]
	return v, ok
}

// Profile returns a copy of the stored profile
func (m *Memory) Profile() Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile.clone()
}

// Restore replaces the profile, typically with one read from a Store
func (m *Memory) Restore(p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = p.clone()
}

// Clear forgets everything
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = Profile{Values: make(map[catalog.Concept]string)}
}
