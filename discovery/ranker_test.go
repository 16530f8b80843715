package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
)

func newTestProfile(id string, gender compat.Gender, age int) compat.Profile {
	return compat.Profile{
		ID:        id,
		Name:      "Test " + id,
		Gender:    gender,
		Age:       age,
		Location:  compat.Location{City: "Pune", State: "Maharashtra", Country: "India"},
		Education: compat.Education{Degree: "B.Tech"},
		Lifestyle: compat.Lifestyle{Diet: compat.Veg, Smoking: compat.HabitNo, Drinking: compat.HabitNo},
		Family:    compat.Family{Type: compat.Nuclear, Values: compat.Traditional},
	}
}

// newTestStore holds one male subject and a spread of candidates:
// f-a and f-d score 100, f-b 94, f-c well under 50, m-2 is ineligible.
func newTestStore() *MemoryStore {
	fb := newTestProfile("f-b", compat.Female, 30)
	fb.Location.City = "Mumbai"

	fc := newTestProfile("f-c", compat.Female, 50)
	fc.Location = compat.Location{City: "Oslo", State: "Oslo", Country: "Norway"}
	fc.Education.Degree = "MBA"
	fc.Lifestyle = compat.Lifestyle{Diet: compat.NonVeg, Smoking: compat.HabitYes, Drinking: compat.HabitYes}
	fc.Family.Values = compat.Liberal

	return NewMemoryStore(
		newTestProfile("m-1", compat.Male, 30),
		newTestProfile("f-a", compat.Female, 33),
		fb,
		fc,
		newTestProfile("f-d", compat.Female, 28),
		newTestProfile("m-2", compat.Male, 31),
	)
}

func newTestRanker(t *testing.T, store Store, cfg Config) *Ranker {
	t.Helper()
	r, err := NewRanker(compat.New(), store, cfg)
	require.NoError(t, err)
	return r
}

func matchIDs(matches []Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.CandidateID
	}
	return ids
}

func TestRank(t *testing.T) {
	ctx := context.Background()

	t.Run("Orders By Score Then ID", func(t *testing.T) {
		r := newTestRanker(t, newTestStore(), Config{MinScore: 50, Limit: 10})
		matches, err := r.Rank(ctx, "m-1", compat.Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"f-a", "f-d", "f-b"}, matchIDs(matches))
		assert.Equal(t, 100, matches[0].Result.OverallScore)
		assert.Equal(t, 94, matches[2].Result.OverallScore)
	})

	t.Run("Default Threshold Keeps Weak Matches", func(t *testing.T) {
		r := newTestRanker(t, newTestStore(), DefaultConfig())
		matches, err := r.Rank(ctx, "m-1", compat.Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"f-a", "f-d", "f-b", "f-c"}, matchIDs(matches))
	})

	t.Run("Limit", func(t *testing.T) {
		r := newTestRanker(t, newTestStore(), Config{Limit: 2})
		matches, err := r.Rank(ctx, "m-1", compat.Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"f-a", "f-d"}, matchIDs(matches))
	})

	t.Run("Single Worker Gives Same Order", func(t *testing.T) {
		r := newTestRanker(t, newTestStore(), Config{Workers: 1})
		matches, err := r.Rank(ctx, "m-1", compat.Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"f-a", "f-d", "f-b", "f-c"}, matchIDs(matches))
	})

	t.Run("Symbolic Indicator", func(t *testing.T) {
		r := newTestRanker(t, newTestStore(), DefaultConfig())
		matches, err := r.Rank(ctx, "m-1", compat.Options{IncludeSymbolic: true})
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		for _, m := range matches {
			require.NotNil(t, m.Result.Symbolic, m.CandidateID)
			assert.Equal(t, compat.Symbolic("m-1", m.CandidateID), *m.Result.Symbolic)
		}
	})

	t.Run("Skips Excluded Candidates", func(t *testing.T) {
		store := newTestStore()
		store.Put(newTestProfile("f-pending", compat.Female, 30), true, ApprovalPending)
		store.Put(newTestProfile("f-incomplete", compat.Female, 30), false, ApprovalApproved)
		require.NoError(t, store.Dismiss(ctx, "m-1", "f-a"))

		r := newTestRanker(t, store, Config{MinScore: 50})
		matches, err := r.Rank(ctx, "m-1", compat.Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"f-d", "f-b"}, matchIDs(matches))
	})

	t.Run("Skips Malformed Candidate", func(t *testing.T) {
		store := newTestStore()
		broken := newTestProfile("f-broken", compat.Female, 30)
		broken.Location.City = ""
		store.Put(broken, true, ApprovalApproved)

		r := newTestRanker(t, store, Config{MinScore: 50})
		matches, err := r.Rank(ctx, "m-1", compat.Options{})
		require.NoError(t, err)
		assert.NotContains(t, matchIDs(matches), "f-broken")
		assert.Len(t, matches, 3)
	})

	t.Run("Unknown Subject", func(t *testing.T) {
		r := newTestRanker(t, newTestStore(), DefaultConfig())
		_, err := r.Rank(ctx, "nobody", compat.Options{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Malformed Subject", func(t *testing.T) {
		store := newTestStore()
		subject := newTestProfile("m-1", compat.Male, 17)
		store.Put(subject, true, ApprovalApproved)

		r := newTestRanker(t, store, DefaultConfig())
		_, err := r.Rank(ctx, "m-1", compat.Options{})
		assert.ErrorIs(t, err, compat.ErrInvalidProfile)
	})

	t.Run("Store Failure Aborts", func(t *testing.T) {
		store := &failingStore{MemoryStore: newTestStore(), failID: "f-b"}
		r := newTestRanker(t, store, DefaultConfig())
		matches, err := r.Rank(ctx, "m-1", compat.Options{})
		assert.ErrorIs(t, err, errStoreDown)
		assert.Nil(t, matches)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		store := &failingStore{MemoryStore: newTestStore()}
		r := newTestRanker(t, store, DefaultConfig())
		_, err := r.Rank(cctx, "m-1", compat.Options{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRankerEvaluate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	r := newTestRanker(t, store, DefaultConfig())

	t.Run("Memoized", func(t *testing.T) {
		first, err := r.Evaluate(ctx, "m-1", "f-b", compat.Options{})
		require.NoError(t, err)
		second, err := r.Evaluate(ctx, "m-1", "f-b", compat.Options{})
		require.NoError(t, err)
		assert.Same(t, first, second)

		withSymbolic, err := r.Evaluate(ctx, "m-1", "f-b", compat.Options{IncludeSymbolic: true})
		require.NoError(t, err)
		assert.NotSame(t, first, withSymbolic)
		assert.NotNil(t, withSymbolic.Symbolic)
	})

	t.Run("Forget After Profile Change", func(t *testing.T) {
		before, err := r.Evaluate(ctx, "m-1", "f-b", compat.Options{})
		require.NoError(t, err)
		assert.Equal(t, 94, before.OverallScore)

		moved := newTestProfile("f-b", compat.Female, 30)
		store.Put(moved, true, ApprovalApproved)
		r.Forget("f-b")

		after, err := r.Evaluate(ctx, "m-1", "f-b", compat.Options{})
		require.NoError(t, err)
		assert.Equal(t, 100, after.OverallScore)
	})

	t.Run("Ineligible", func(t *testing.T) {
		res, err := r.Evaluate(ctx, "m-1", "m-2", compat.Options{})
		assert.ErrorIs(t, err, compat.ErrIneligible)
		assert.Nil(t, res)
	})

	t.Run("Unknown Candidate", func(t *testing.T) {
		_, err := r.Evaluate(ctx, "m-1", "nobody", compat.Options{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRankerForgetDuringEvaluation(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		MemoryStore: newTestStore(),
		gateID:      "f-b",
		loaded:      make(chan struct{}),
		release:     make(chan struct{}),
	}
	r := newTestRanker(t, store, DefaultConfig())

	type outcome struct {
		res *compat.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := r.Evaluate(ctx, "m-1", "f-b", compat.Options{})
		done <- outcome{res, err}
	}()

	// The evaluation holds the Mumbai profile while f-b moves to Pune.
	<-store.loaded
	store.Put(newTestProfile("f-b", compat.Female, 30), true, ApprovalApproved)
	r.Forget("f-b")
	close(store.release)

	old := <-done
	require.NoError(t, old.err)
	assert.Equal(t, 94, old.res.OverallScore)

	current, err := r.Evaluate(ctx, "m-1", "f-b", compat.Options{})
	require.NoError(t, err)
	assert.Equal(t, 100, current.OverallScore)

	again, err := r.Evaluate(ctx, "m-1", "f-b", compat.Options{})
	require.NoError(t, err)
	assert.Same(t, current, again)
}

func TestRankerWithoutMemo(t *testing.T) {
	r := newTestRanker(t, newTestStore(), Config{CacheSize: 0})
	first, err := r.Evaluate(context.Background(), "m-1", "f-a", compat.Options{})
	require.NoError(t, err)
	second, err := r.Evaluate(context.Background(), "m-1", "f-a", compat.Options{})
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
	r.Forget("f-a")
}

var errStoreDown = errors.New("store down")

// failingStore fails loads of failID and honours context cancellation.
type failingStore struct {
	*MemoryStore
	failID string
}

func (s *failingStore) Profile(ctx context.Context, id string) (*compat.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == s.failID {
		return nil, errStoreDown
	}
	return s.MemoryStore.Profile(ctx, id)
}

// gatedStore pauses the first load of gateID after reading it until
// release is closed.
type gatedStore struct {
	*MemoryStore
	gateID  string
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (s *gatedStore) Profile(ctx context.Context, id string) (*compat.Profile, error) {
	p, err := s.MemoryStore.Profile(ctx, id)
	if id == s.gateID {
		s.once.Do(func() {
			close(s.loaded)
			<-s.release
		})
	}
	return p, err
}
