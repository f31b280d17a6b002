package artifacts

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/platinummonkey/langreg/pkg/registration"
)

// Claims records which artifact paths have been created in a run
type Claims interface {
	// Claim marks path as created for runID. It returns false when the path
	// was already claimed.
	Claim(ctx context.Context, runID, path string) (bool, error)
	// Release drops a claim
	Release(ctx context.Context, runID, path string) error
}

// MemoryClaims is a process-local claim store
type MemoryClaims struct {
	mu      sync.Mutex
	claimed map[string]bool
}

// NewMemoryClaims creates an empty claim store
func NewMemoryClaims() *MemoryClaims {
	return &MemoryClaims{claimed: make(map[string]bool)}
}

func (c *MemoryClaims) Claim(ctx context.Context, runID, path string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := claimKey(runID, path)
	if c.claimed[key] {
		return false, nil
	}
	c.claimed[key] = true
	return true, nil
}

func (c *MemoryClaims) Release(ctx context.Context, runID, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.claimed, claimKey(runID, path))
	return nil
}

func claimKey(runID, path string) string {
	return runID + ":" + path
}

// ClaimedSink allows each path to be created once per run
type ClaimedSink struct {
	inner  registration.Sink
	claims Claims
	runID  string
}

var _ registration.Sink = (*ClaimedSink)(nil)

// NewClaimedSink wraps inner with claims scoped to runID
func NewClaimedSink(inner registration.Sink, claims Claims, runID string) *ClaimedSink {
	if claims == nil {
		claims = NewMemoryClaims()
	}
	return &ClaimedSink{inner: inner, claims: claims, runID: runID}
}

// Create claims path and opens it on the inner sink. A lost claim returns
// registration.ErrAlreadyCreated.
func (s *ClaimedSink) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	ok, err := s.claims.Claim(ctx, s.runID, path)
	if err != nil {
		return nil, fmt.Errorf("failed to claim %s: %w", path, err)
	}
	if !ok {
		return nil, registration.ErrAlreadyCreated
	}

	w, err := s.inner.Create(ctx, path)
	if err != nil {
		if rerr := s.claims.Release(ctx, s.runID, path); rerr != nil {
			return nil, fmt.Errorf("%w (release failed: %v)", err, rerr)
		}
		return nil, err
	}
	return w, nil
}
