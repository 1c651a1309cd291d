package store

import (
	"context"
	"slices"
	"sync"

	"sampad/internal/registration/models"
	id "sampad/pkg/domain"
	"sampad/pkg/platform/sentinel"
)

// InMemory keeps registrations in process. The mutex and the two index maps
// play the role of the UNIQUE constraints.
type InMemory struct {
	mu             sync.RWMutex
	registrations  map[id.RegistrationID]*models.Registration
	nationalCodeIx map[string]id.RegistrationID
	phoneIx        map[string]id.RegistrationID
	order          []id.RegistrationID
}

// NewInMemory creates an empty in-memory registration store.
func NewInMemory() *InMemory {
	return &InMemory{
		registrations:  make(map[id.RegistrationID]*models.Registration),
		nationalCodeIx: make(map[string]id.RegistrationID),
		phoneIx:        make(map[string]id.RegistrationID),
	}
}

// Create inserts reg unless its national code or phone is already taken.
func (s *InMemory) Create(_ context.Context, reg *models.Registration) error {
	if reg == nil {
		return errRegistrationRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nationalCodeIx[reg.NationalCode]; exists {
		return models.NationalCodeTaken()
	}
	if _, exists := s.phoneIx[reg.Phone]; exists {
		return models.PhoneTaken()
	}
	if _, exists := s.registrations[reg.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	stored := *reg
	s.registrations[reg.ID] = &stored
	s.nationalCodeIx[reg.NationalCode] = reg.ID
	s.phoneIx[reg.Phone] = reg.ID
	s.order = append(s.order, reg.ID)
	return nil
}

// FindTaken reports which of the two unique values already exist.
func (s *InMemory) FindTaken(_ context.Context, nationalCode, phone string) (models.Taken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var taken models.Taken
	if nationalCode != "" {
		_, taken.NationalCode = s.nationalCodeIx[nationalCode]
	}
	if phone != "" {
		_, taken.Phone = s.phoneIx[phone]
	}
	return taken, nil
}

// FindByID returns a copy of the stored registration.
func (s *InMemory) FindByID(_ context.Context, regID id.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registrations[regID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *reg
	return &out, nil
}

// List returns all registrations ordered by creation time.
func (s *InMemory) List(_ context.Context) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Registration, 0, len(s.order))
	for _, regID := range s.order {
		reg := *s.registrations[regID]
		out = append(out, &reg)
	}
	slices.SortStableFunc(out, func(a, b *models.Registration) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// Count returns the number of stored registrations.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registrations), nil
}
