package core

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu      sync.Mutex
	records map[int64]Record
	users   map[int64]User
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{records: make(map[int64]Record), users: make(map[int64]User)}
}

func (m *memStore) ListRecords(ctx context.Context, f RecordFilter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for _, r := range m.records {
		if f.Kind != "" && r.Kind != f.Kind {
			continue
		}
		if f.Owner != "" && r.Owner != f.Owner {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetRecord(ctx context.Context, kind, owner string, id int64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.Kind != kind || (owner != "" && r.Owner != owner) {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (m *memStore) CreateRecord(ctx context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memStore) UpdateRecord(ctx context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[rec.ID]
	if !ok || cur.Kind != rec.Kind || (rec.Owner != "" && cur.Owner != rec.Owner) {
		return Record{}, ErrNotFound
	}
	cur.Fields = rec.Fields
	cur.UpdatedAt = time.Now()
	m.records[rec.ID] = cur
	return cur, nil
}

func (m *memStore) DeleteRecord(ctx context.Context, kind, owner string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[id]
	if !ok || cur.Kind != kind || (owner != "" && cur.Owner != owner) {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memStore) CreateUser(ctx context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUser(ctx context.Context, id int64) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memStore) UserExists(ctx context.Context, identifier, email, alt string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Identifier == identifier || u.Email == email || u.AlternativeEmail == alt {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListUsers(ctx context.Context, excludeID int64) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []User
	for _, u := range m.users {
		if u.ID != excludeID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }
func (m *memStore) Close() error                   { return nil }

// memArtifacts records archived keys.
type memArtifacts struct {
	mu   sync.Mutex
	keys []string
}

func (a *memArtifacts) Put(ctx context.Context, key string, data []byte, contentType string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return nil
}
