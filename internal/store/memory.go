package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lezzdif22/payslip/internal/models"
)

// MemoryStore is an AddressBook held in memory. It follows the same upsert
// and lookup rules as SQLiteStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	now     func() time.Time

	// LookupError, when set, is returned by Lookup. Used by tests to
	// exercise failure paths.
	LookupError error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Lookup(_ context.Context, keys []models.LookupKey) (string, error) {
	if m.LookupError != nil {
		return "", m.LookupError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, k := range keys {
		if k.Value == "" {
			continue
		}
		if e := m.find(k.Kind, lookupValue(k)); e != nil {
			return e.Email, nil
		}
	}
	return "", nil
}

func (m *MemoryStore) find(kind models.LookupKind, value string) *Entry {
	for _, e := range m.entries {
		if entryKey(e, kind) == value {
			return e
		}
	}
	return nil
}

func entryKey(e *Entry, kind models.LookupKind) string {
	switch kind {
	case models.LookupSequence:
		return e.Seq
	case models.LookupAccount:
		return e.AccountNo
	case models.LookupName:
		return models.NameKey(e.Name)
	}
	return ""
}

func (m *MemoryStore) Remember(_ context.Context, in Entry) error {
	in = in.normalized()
	if in.Email == "" {
		return ErrNoEmail
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	keys := in.Keys()
	var target *Entry
	for _, k := range keys {
		if target = m.find(k.Kind, k.Value); target != nil {
			break
		}
	}
	if target == nil {
		target = &Entry{}
		m.entries = append(m.entries, target)
	}

	// a key now belongs to target only
	for _, k := range keys {
		for _, e := range m.entries {
			if e == target || entryKey(e, k.Kind) != k.Value {
				continue
			}
			switch k.Kind {
			case models.LookupSequence:
				e.Seq = ""
			case models.LookupAccount:
				e.AccountNo = ""
			case models.LookupName:
				e.Name = ""
			}
		}
	}

	if in.Seq != "" {
		target.Seq = in.Seq
	}
	if in.AccountNo != "" {
		target.AccountNo = in.AccountNo
	}
	if in.Name != "" {
		target.Name = in.Name
	}
	target.Email = in.Email
	if m.now == nil {
		m.now = time.Now
	}
	target.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *MemoryStore) All(context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		out = append(out, *m.entries[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
