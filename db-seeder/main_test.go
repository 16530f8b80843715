package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
)

// recordingStore keeps seeder writes in memory.
type recordingStore struct {
	users      map[string]string // email -> id
	profiles   map[string]compat.Profile
	approvals  map[string]string
	dismissals [][2]string
	failEmail  string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		users:     make(map[string]string),
		profiles:  make(map[string]compat.Profile),
		approvals: make(map[string]string),
	}
}

func (s *recordingStore) PutUser(_ context.Context, email, _ string) (string, error) {
	if email == s.failEmail {
		return "", errors.New("insert failed")
	}
	if id, ok := s.users[email]; ok {
		return id, nil
	}
	id := fmt.Sprint(len(s.users) + 1)
	s.users[email] = id
	return id, nil
}

func (s *recordingStore) UpsertProfile(_ context.Context, p *compat.Profile) error {
	s.profiles[p.ID] = *p
	return nil
}

func (s *recordingStore) SetApproval(_ context.Context, id, status string) error {
	if _, ok := s.profiles[id]; !ok {
		return discovery.ErrNotFound
	}
	s.approvals[id] = status
	return nil
}

func (s *recordingStore) Dismiss(_ context.Context, subjectID, candidateID string) error {
	if subjectID == candidateID {
		return discovery.ErrNotFound
	}
	s.dismissals = append(s.dismissals, [2]string{subjectID, candidateID})
	return nil
}

func testCfg() cfg {
	return cfg{Count: 40, Seed: 42, PendingRate: 0.2, RejectRate: 0.1, DismissRate: 0.5}
}

func TestPopulate(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes Every User", func(t *testing.T) {
		s := newRecordingStore()
		require.NoError(t, populate(ctx, s, testCfg(), "hash"))

		assert.Len(t, s.users, 40)
		assert.Len(t, s.profiles, 40)
		assert.Len(t, s.approvals, 40)
		for id, p := range s.profiles {
			assert.Equal(t, id, p.ID)
			assert.NoError(t, compat.ValidateProfile(&p))
		}
	})

	t.Run("Fixed Test Logins", func(t *testing.T) {
		s := newRecordingStore()
		require.NoError(t, populate(ctx, s, testCfg(), "hash"))

		for i, email := range testEmails {
			id, ok := s.users[email]
			require.True(t, ok, email)
			assert.Equal(t, discovery.ApprovalApproved, s.approvals[id])
			want := compat.Male
			if i == 1 {
				want = compat.Female
			}
			assert.Equal(t, want, s.profiles[id].Gender)
		}
	})

	t.Run("Dismissals Reference Other Users", func(t *testing.T) {
		s := newRecordingStore()
		require.NoError(t, populate(ctx, s, testCfg(), "hash"))

		require.NotEmpty(t, s.dismissals)
		for _, d := range s.dismissals {
			assert.NotEqual(t, d[0], d[1])
			assert.Contains(t, s.profiles, d[0])
			assert.Contains(t, s.profiles, d[1])
		}

		none := newRecordingStore()
		c := testCfg()
		c.DismissRate = 0
		require.NoError(t, populate(ctx, none, c, "hash"))
		assert.Empty(t, none.dismissals)
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, b := newRecordingStore(), newRecordingStore()
		require.NoError(t, populate(ctx, a, testCfg(), "hash"))
		require.NoError(t, populate(ctx, b, testCfg(), "hash"))
		assert.Equal(t, a, b)
	})

	t.Run("Store Failure", func(t *testing.T) {
		s := newRecordingStore()
		s.failEmail = testEmails[1]
		err := populate(ctx, s, testCfg(), "hash")
		require.Error(t, err)
		assert.Contains(t, err.Error(), testEmails[1])
		assert.Empty(t, s.profiles)
	})
}
