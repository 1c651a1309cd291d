package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampad/internal/registration/models"
	id "sampad/pkg/domain"
	"sampad/pkg/platform/sentinel"
	"sampad/pkg/registrationform"
)

type registrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindTaken(ctx context.Context, nationalCode, phone string) (models.Taken, error)
	FindByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error)
	List(ctx context.Context) ([]*models.Registration, error)
	Count(ctx context.Context) (int, error)
}

var baseTime = time.Date(2025, 3, 21, 8, 30, 0, 0, time.UTC)

func newRegistration(t *testing.T, nationalCode, phone string, at time.Time) *models.Registration {
	t.Helper()
	reg, err := models.NewRegistration(id.NewRegistrationID(), registrationform.Validated{
		Name:         "سارا احمدی",
		IsSampad:     true,
		NationalCode: nationalCode,
		Phone:        phone,
	}, at)
	require.NoError(t, err)
	return reg
}

// runStoreContract exercises the behavior every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) registrationStore) {
	ctx := context.Background()

	t.Run("create then find by id returns the stored fields", func(t *testing.T) {
		s := newStore(t)
		reg := newRegistration(t, "1234567890", "09123456789", baseTime)
		require.NoError(t, s.Create(ctx, reg))

		found, err := s.FindByID(ctx, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, reg.ID, found.ID)
		assert.Equal(t, reg.Name, found.Name)
		assert.Equal(t, reg.IsSampad, found.IsSampad)
		assert.Equal(t, reg.NationalCode, found.NationalCode)
		assert.Equal(t, reg.Phone, found.Phone)
		assert.False(t, found.IsRegistered)
		assert.Nil(t, found.Date)
		assert.True(t, reg.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindByID(ctx, id.NewRegistrationID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("duplicate national code is a unique violation on that field", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRegistration(t, "1234567890", "09123456789", baseTime)))

		err := s.Create(ctx, newRegistration(t, "1234567890", "09120000000", baseTime))
		var uv *models.UniqueViolation
		require.True(t, errors.As(err, &uv), "got %v", err)
		assert.Equal(t, registrationform.FieldNationalCode, uv.Field)
		assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})

	t.Run("duplicate phone is a unique violation on that field", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRegistration(t, "1234567890", "09123456789", baseTime)))

		err := s.Create(ctx, newRegistration(t, "0987654321", "09123456789", baseTime))
		var uv *models.UniqueViolation
		require.True(t, errors.As(err, &uv), "got %v", err)
		assert.Equal(t, registrationform.FieldPhone, uv.Field)
	})

	t.Run("find taken reports each field independently", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRegistration(t, "1234567890", "09123456789", baseTime)))

		taken, err := s.FindTaken(ctx, "1234567890", "09120000000")
		require.NoError(t, err)
		assert.Equal(t, models.Taken{NationalCode: true}, taken)

		taken, err = s.FindTaken(ctx, "0000000000", "09123456789")
		require.NoError(t, err)
		assert.Equal(t, models.Taken{Phone: true}, taken)

		taken, err = s.FindTaken(ctx, "0000000000", "09120000000")
		require.NoError(t, err)
		assert.Equal(t, models.Taken{}, taken)
	})

	t.Run("list is ordered by creation time", func(t *testing.T) {
		s := newStore(t)
		later := newRegistration(t, "2222222222", "09122222222", baseTime.Add(time.Minute))
		earlier := newRegistration(t, "1111111111", "09121111111", baseTime)
		require.NoError(t, s.Create(ctx, later))
		require.NoError(t, s.Create(ctx, earlier))

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, earlier.ID, list[0].ID)
		assert.Equal(t, later.ID, list[1].ID)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("concurrent colliding creates admit exactly one", func(t *testing.T) {
		s := newStore(t)
		const writers = 8
		regs := make([]*models.Registration, writers)
		for i := range writers {
			regs[i] = newRegistration(t, "5555555555", fmt.Sprintf("0912000000%d", i), baseTime)
		}
		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = s.Create(ctx, regs[i])
			}()
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
		}
		assert.Equal(t, 1, succeeded)
	})
}
