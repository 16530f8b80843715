package discovery

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
)

// ErrNotFound is returned for unknown profile IDs.
var ErrNotFound = errors.New("discovery: profile not found")

// Store supplies profiles to the ranker.
type Store interface {
	// Profile returns the profile with the given ID or ErrNotFound.
	Profile(ctx context.Context, id string) (*compat.Profile, error)
	// CandidateIDs lists the profiles subjectID may be shown: complete,
	// approved, not dismissed by the subject and not the subject itself.
	CandidateIDs(ctx context.Context, subjectID string) ([]string, error)
}

// Approval statuses, as assigned by moderators.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

type memoryRecord struct {
	profile  compat.Profile
	complete bool
	approval string
}

// MemoryStore is an in-memory Store used by the CLI and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]*memoryRecord
	dismissed map[string]map[string]struct{}
}

// NewMemoryStore returns a store holding the given profiles, each complete
// and approved.
func NewMemoryStore(profiles ...compat.Profile) *MemoryStore {
	s := &MemoryStore{
		records:   make(map[string]*memoryRecord),
		dismissed: make(map[string]map[string]struct{}),
	}
	for _, p := range profiles {
		s.Put(p, true, ApprovalApproved)
	}
	return s
}

// Put inserts or replaces a profile.
func (s *MemoryStore) Put(p compat.Profile, complete bool, approval string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[p.ID] = &memoryRecord{profile: p, complete: complete, approval: approval}
}

func (s *MemoryStore) Profile(_ context.Context, id string) (*compat.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := rec.profile
	return &p, nil
}

// Profiles returns every known profile among ids, keyed by ID.
func (s *MemoryStore) Profiles(ctx context.Context, ids []string) (map[string]*compat.Profile, error) {
	out := make(map[string]*compat.Profile, len(ids))
	for _, id := range ids {
		p, err := s.Profile(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

// IsComplete reports whether the profile exists and is complete.
func (s *MemoryStore) IsComplete(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return ok && rec.complete, nil
}

// Dismiss hides candidateID from subjectID's results.
func (s *MemoryStore) Dismiss(_ context.Context, subjectID, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[candidateID]; !ok {
		return ErrNotFound
	}
	if s.dismissed[subjectID] == nil {
		s.dismissed[subjectID] = make(map[string]struct{})
	}
	s.dismissed[subjectID][candidateID] = struct{}{}
	return nil
}

func (s *MemoryStore) CandidateIDs(_ context.Context, subjectID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.records[subjectID]; !ok {
		return nil, ErrNotFound
	}
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		if s.visible(subjectID, id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Recommendable reports whether candidateID is one of subjectID's
// candidates.
func (s *MemoryStore) Recommendable(_ context.Context, subjectID, candidateID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible(subjectID, candidateID), nil
}

// visible applies the CandidateIDs filter to one pair. s.mu must be held.
func (s *MemoryStore) visible(subjectID, id string) bool {
	rec, ok := s.records[id]
	if !ok || id == subjectID || !rec.complete || rec.approval != ApprovalApproved {
		return false
	}
	_, gone := s.dismissed[subjectID][id]
	return !gone
}
