package cart

import (
	"errors"
	"sync"

	"logolate/go_backend/internal/domain/catalog"
)

var ErrLineNotFound = errors.New("cart line not found")

// Line is one product in the cart. Identity is ProductID, or LegacyID when
// the product came without one.
type Line struct {
	ProductID   string  `json:"productId"`
	LegacyID    int64   `json:"legacyId,omitempty"`
	DisplayName string  `json:"displayName"`
	Reference   string  `json:"reference"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	MinQuantity int     `json:"minQuantity"`
}

// Snapshot is what subscribers receive after every mutation.
type Snapshot struct {
	Lines      []Line `json:"lines"`
	TotalUnits int    `json:"totalUnits"`
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Store is an in-memory cart. Mutations publish a snapshot to every
// subscriber synchronously, in call order. Subscribers must not call back
// into the same store.
type Store struct {
	mu     sync.Mutex
	lines  []Line
	subs   []subscriber
	nextID int
}

func NewStore() *Store {
	return &Store{}
}

// Add increments an existing line by the product's minimum order quantity
// (or quantityOverride when > 0), or inserts a new line at that quantity.
// A product with no identity is still inserted and never merges.
func (s *Store) Add(p catalog.Product, quantityOverride int) {
	step := p.MinimumOrderQuantity()
	if quantityOverride > 0 {
		step = quantityOverride
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if key := p.Key(); key != "" {
		for i := range s.lines {
			if s.lines[i].Key() == key {
				s.lines[i].Quantity += step
				s.publishLocked()
				return
			}
		}
	}
	s.lines = append(s.lines, Line{
		ProductID:   p.ID,
		LegacyID:    p.LegacyID,
		DisplayName: p.Name,
		Reference:   p.Reference,
		UnitPrice:   p.Price,
		Quantity:    step,
		MinQuantity: p.MinimumOrderQuantity(),
	})
	s.publishLocked()
}

func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if productID != "" {
		kept := s.lines[:0]
		for _, l := range s.lines {
			if l.Key() != productID {
				kept = append(kept, l)
			}
		}
		s.lines = kept
	}
	s.publishLocked()
}

// RemoveLines drops the given lines and leaves anything added since they
// were read. Keyed lines match by key, identityless lines by value.
func (s *Store) RemoveLines(lines []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make(map[string]bool, len(lines))
	var loose []Line
	for _, l := range lines {
		if k := l.Key(); k != "" {
			keys[k] = true
		} else {
			loose = append(loose, l)
		}
	}
	kept := s.lines[:0]
	for _, l := range s.lines {
		if k := l.Key(); k != "" && keys[k] {
			continue
		}
		if i := indexOf(loose, l); i >= 0 {
			loose = append(loose[:i], loose[i+1:]...)
			continue
		}
		kept = append(kept, l)
	}
	s.lines = kept
	s.publishLocked()
}

func indexOf(lines []Line, l Line) int {
	for i := range lines {
		if lines[i] == l {
			return i
		}
	}
	return -1
}

// SetQuantity replaces a line's quantity, never going below its minimum.
func (s *Store) SetQuantity(productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if productID != "" && s.lines[i].Key() == productID {
			if qty < s.lines[i].MinQuantity {
				qty = s.lines[i].MinQuantity
			}
			s.lines[i].Quantity = qty
			s.publishLocked()
			return nil
		}
	}
	return ErrLineNotFound
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.publishLocked()
}

func (s *Store) TotalUnits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalUnits(s.lines)
}

func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines)
}

// ValidateMinimums raises every line below its minimum up to it and
// returns how many lines changed. It never lowers a quantity.
func (s *Store) ValidateMinimums() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.lines {
		floor := s.lines[i].MinQuantity
		if floor < 1 {
			floor = 1
		}
		if s.lines[i].Quantity < floor {
			s.lines[i].Quantity = floor
			changed++
		}
	}
	if changed > 0 {
		s.publishLocked()
	}
	return changed
}

// Subscribe registers fn, calls it once with the current snapshot and then
// after every mutation. The returned func unsubscribes; calling it twice is safe.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	fn(s.snapshotLocked())

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Lines: cloneLines(s.lines), TotalUnits: totalUnits(s.lines)}
}

func (s *Store) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, sub := range s.subs {
		sub.fn(snap)
	}
}

// Key mirrors catalog.Product.Key.
func (l Line) Key() string {
	if l.ProductID != "" {
		return l.ProductID
	}
	if l.LegacyID != 0 {
		return catalog.Product{LegacyID: l.LegacyID}.Key()
	}
	return ""
}

func totalUnits(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
