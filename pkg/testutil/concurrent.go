package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"sampad/pkg/platform/sentinel"
	"sampad/pkg/validation"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts
}

// IsConflict reports whether err is a uniqueness collision, either as a store
// sentinel or as a duplicate-value field error.
func IsConflict(err error) bool {
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return true
	}
	var fe validation.FieldErrors
	return errors.As(err, &fe) && fe.HasKind(validation.KindDuplicate)
}

// RunConcurrent executes fn in parallel goroutines and classifies the outcomes.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, conflicts atomic.Int32

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case IsConflict(err):
				conflicts.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
	}
}
