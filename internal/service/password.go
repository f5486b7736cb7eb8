package service

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/msomdec/bookshelf/internal/domain"
)

// DefaultBcryptCost keeps a single hash in the tens of milliseconds.
const DefaultBcryptCost = 10

// maxPasswordBytes is the bcrypt input limit. Registration rejects longer
// passwords before they reach the hasher.
const maxPasswordBytes = 72

// PasswordHasher hashes and verifies passwords with bcrypt on a bounded
// pool of workers. A slow hash only occupies one slot, so other requests
// keep being served.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewPasswordHasher creates a hasher with the given bcrypt cost and pool
// size. Non-positive workers means GOMAXPROCS.
func NewPasswordHasher(cost, workers int) *PasswordHasher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(workers)),
	}
}

// Hash returns a salted bcrypt hash of plaintext. The only failures are
// context cancellation and errors from the hash function itself, reported
// as domain.ErrHashing.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var hash []byte
	err := h.run(ctx, func() error {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Mismatches, malformed
// hashes and cancellation all yield false. bcrypt only reads the first
// maxPasswordBytes of its input, so a longer plaintext never matches: no
// stored hash was made from one. It is still compared, truncated, so the
// rejection costs the same as any other.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, hash string) bool {
	input := []byte(plaintext)
	tooLong := len(input) > maxPasswordBytes
	if tooLong {
		input = input[:maxPasswordBytes]
	}
	err := h.run(ctx, func() error {
		return bcrypt.CompareHashAndPassword([]byte(hash), input)
	})
	return err == nil && !tooLong
}

// run executes fn on a pool slot. If ctx ends first the caller returns
// immediately; fn still finishes in the background and releases its slot.
func (h *PasswordHasher) run(ctx context.Context, fn func() error) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer h.sem.Release(1)
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
