package cart

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"BuildMart/internal/catalog"
)

// MemStore keeps carts in memory, sharded per user: the outer lock only
// guards the user map, each user's cart has its own mutex. Calls for the
// same user serialize; calls for different users do not.
type MemStore struct {
	catalog *catalog.Store

	mu    sync.RWMutex
	users map[string]*userCart
}

type userCart struct {
	mu  sync.Mutex
	qty map[string]int
}

func NewMemStore(c *catalog.Store) *MemStore {
	return &MemStore{
		catalog: c,
		users:   make(map[string]*userCart),
	}
}

// user returns the cart for userID, creating it on first touch. Carts are
// never removed: once a user has interacted with the store they keep a
// possibly-empty cart for the process lifetime.
func (s *MemStore) user(userID string) *userCart {
	s.mu.RLock()
	u, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return u
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return u
	}
	u = &userCart{qty: make(map[string]int)}
	s.users[userID] = u
	return u
}

func (s *MemStore) Add(_ context.Context, userID string, lines []Line) (Snapshot, error) {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := s.validate(lines); err != nil {
		return Snapshot{}, err
	}

	for _, l := range lines {
		u.qty[l.ProductID] += l.Quantity
	}

	return s.snapshotLocked(userID, u), nil
}

func (s *MemStore) Remove(_ context.Context, userID string, lines []Line) (Snapshot, error) {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := s.validate(lines); err != nil {
		return Snapshot{}, err
	}
	for _, l := range lines {
		if _, held := u.qty[l.ProductID]; !held {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotInCart, l.ProductID)
		}
	}

	for _, l := range lines {
		left := u.qty[l.ProductID] - l.Quantity
		if left > 0 {
			u.qty[l.ProductID] = left
		} else {
			// Removing more than is held clamps to deletion.
			delete(u.qty, l.ProductID)
		}
	}

	return s.snapshotLocked(userID, u), nil
}

func (s *MemStore) Get(_ context.Context, userID string) (Snapshot, bool) {
	s.mu.RLock()
	u, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return s.snapshotLocked(userID, u), true
}

func (s *MemStore) Create(_ context.Context, userID string) Snapshot {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	return s.snapshotLocked(userID, u)
}

// validate checks every line before any mutation happens, keeping
// batches all-or-nothing.
func (s *MemStore) validate(lines []Line) error {
	for _, l := range lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: %s", ErrQuantity, l.ProductID)
		}
		if _, ok := s.catalog.Get(l.ProductID); !ok {
			return fmt.Errorf("%w: %s", ErrProductNotFound, l.ProductID)
		}
	}
	return nil
}

func (s *MemStore) snapshotLocked(userID string, u *userCart) Snapshot {
	items := make([]Item, 0, len(u.qty))
	total := 0

	for pid, qty := range u.qty {
		name := pid
		if p, ok := s.catalog.Get(pid); ok {
			name = p.Name
		}
		items = append(items, Item{ProductID: pid, Name: name, Quantity: qty})
		total += qty
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	return Snapshot{UserID: userID, Items: items, TotalItems: total}
}
