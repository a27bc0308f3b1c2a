package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"billed/internal/common"
	"billed/internal/domain/model"
)

// MemoryStore keeps users, bills and receipts in process memory. It backs the
// "memory" storage driver and the service tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]model.User // by id
	bills map[string]model.Bill
	files map[string]model.StoredFile
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: map[string]model.User{},
		bills: map[string]model.Bill{},
		files: map[string]model.StoredFile{},
		now:   time.Now,
	}
}

func (m *MemoryStore) Users() UserRepository { return memoryUsers{m} }
func (m *MemoryStore) Bills() BillRepository { return memoryBills{m} }

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, common.ErrConflict)
		}
	}
	user.CreatedAt = r.m.now()
	user.UpdatedAt = user.CreatedAt
	r.m.users[user.ID] = *user
	return nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r memoryUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

type memoryBills struct{ m *MemoryStore }

func (r memoryBills) CreateDraft(_ context.Context, bill *model.Bill, file *model.StoredFile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.bills[bill.ID]; exists {
		return fmt.Errorf("bill %s: %w", bill.ID, common.ErrConflict)
	}
	now := r.m.now()
	bill.Draft = true
	bill.CreatedAt, bill.UpdatedAt = now, now
	file.BillID = bill.ID
	file.CreatedAt = now
	r.m.bills[bill.ID] = *bill
	r.m.files[file.ID] = *file
	return nil
}

func (r memoryBills) FindByID(_ context.Context, id string) (*model.Bill, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	b, ok := r.m.bills[id]
	if !ok {
		return nil, fmt.Errorf("bill %s: %w", id, common.ErrNotFound)
	}
	return &b, nil
}

func (r memoryBills) List(_ context.Context, email string) ([]model.Bill, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	bills := []model.Bill{}
	for _, b := range r.m.bills {
		if b.Draft || (email != "" && b.Email != email) {
			continue
		}
		bills = append(bills, b)
	}
	sort.Slice(bills, func(i, j int) bool {
		if bills[i].Date != bills[j].Date {
			return bills[i].Date > bills[j].Date
		}
		return bills[i].CreatedAt.After(bills[j].CreatedAt)
	})
	return bills, nil
}

func (r memoryBills) Update(_ context.Context, bill *model.Bill) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.bills[bill.ID]; !ok {
		return fmt.Errorf("bill %s: %w", bill.ID, common.ErrNotFound)
	}
	bill.Draft = false
	bill.UpdatedAt = r.m.now()
	r.m.bills[bill.ID] = *bill
	return nil
}

func (r memoryBills) FindFile(_ context.Context, id string) (*model.StoredFile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	f, ok := r.m.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, common.ErrNotFound)
	}
	return &f, nil
}

func (r memoryBills) DeleteDraft(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bills[id]
	if !ok || !b.Draft {
		return fmt.Errorf("draft bill %s: %w", id, common.ErrNotFound)
	}
	delete(r.m.bills, id)
	for fileID, f := range r.m.files {
		if f.BillID == id {
			delete(r.m.files, fileID)
		}
	}
	return nil
}

// CountDrafts reports the bills stored but never submitted.
func (m *MemoryStore) CountDrafts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, b := range m.bills {
		if b.Draft {
			n++
		}
	}
	return n
}

// CountFiles reports the stored receipts.
func (m *MemoryStore) CountFiles() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
