// Package discovery ranks a subject's candidate set with the compatibility
// engine. Evaluations fan out over a bounded worker pool and are memoized
// per (subject, candidate, options).
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/logging"
)

// Config tunes ranking.
type Config struct {
	// Workers bounds concurrent evaluations per Rank call.
	Workers int `koanf:"workers"`
	// MinScore drops matches whose overall score is below it.
	MinScore int `koanf:"min_score"`
	// Limit caps the number of matches returned; 0 means no cap.
	Limit int `koanf:"limit"`
	// CacheSize is the number of memoized results; 0 disables memoization.
	CacheSize int `koanf:"cache_size"`
}

// DefaultConfig keeps the matches at or above 25% and returns the top 10.
func DefaultConfig() Config {
	return Config{
		Workers:   8,
		MinScore:  25,
		Limit:     10,
		CacheSize: 4096,
	}
}

// Match is one ranked candidate.
type Match struct {
	CandidateID string         `json:"candidate_id"`
	Result      *compat.Result `json:"compatibility"`
}

type memoKey struct {
	subject   string
	candidate string
	options   string
}

// Ranker evaluates and orders candidates for a subject.
type Ranker struct {
	engine *compat.Engine
	store  Store
	cfg    Config
	memo   *lru.Cache[memoKey, *compat.Result]

	// mu orders memo writes against Forget. gens counts Forget calls per
	// profile; a result computed from profiles loaded under an older
	// generation is returned but not memoized.
	mu   sync.Mutex
	gens map[string]uint64
}

// stamp records the generations of both profiles before they are loaded.
type stamp struct {
	subject, candidate uint64
}

// NewRanker builds a ranker over store. Results handed out by the ranker
// may be shared with the memo and must not be modified.
func NewRanker(engine *compat.Engine, store Store, cfg Config) (*Ranker, error) {
	if engine == nil {
		engine = compat.New()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	r := &Ranker{engine: engine, store: store, cfg: cfg, gens: make(map[string]uint64)}
	if cfg.CacheSize > 0 {
		memo, err := lru.New[memoKey, *compat.Result](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("discovery: create memo: %w", err)
		}
		r.memo = memo
	}
	return r, nil
}

// Rank returns subjectID's eligible candidates ordered by overall score,
// highest first; ties are broken by candidate ID. Ineligible and malformed
// candidates are skipped, store failures abort the whole call.
func (r *Ranker) Rank(ctx context.Context, subjectID string, opts compat.Options) ([]Match, error) {
	start := time.Now()
	defer func() { rankDuration.Observe(time.Since(start).Seconds()) }()

	subjectGen := r.generation(subjectID)
	subject, err := r.store.Profile(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load subject %s: %w", subjectID, err)
	}
	if err := compat.ValidateProfile(subject); err != nil {
		return nil, err
	}

	ids, err := r.store.CandidateIDs(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list candidates for %s: %w", subjectID, err)
	}

	// One slot per candidate so workers never share a write target.
	slots := make([]*Match, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, id := range ids {
		if id == subjectID {
			continue
		}
		g.Go(func() error {
			st := stamp{subject: subjectGen, candidate: r.generation(id)}
			candidate, err := r.store.Profile(gctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("load candidate %s: %w", id, err)
			}
			res, err := r.evaluate(subject, candidate, opts, st)
			switch {
			case errors.Is(err, compat.ErrIneligible):
				return nil
			case errors.Is(err, compat.ErrInvalidProfile):
				logging.Ctx(ctx).Warn().Err(err).Str("candidate", id).Msg("skipping malformed candidate")
				return nil
			case err != nil:
				return err
			}
			slots[i] = &Match{CandidateID: id, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(slots))
	for _, m := range slots {
		if m == nil || m.Result.OverallScore < r.cfg.MinScore {
			continue
		}
		matches = append(matches, *m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Result.OverallScore != matches[j].Result.OverallScore {
			return matches[i].Result.OverallScore > matches[j].Result.OverallScore
		}
		return matches[i].CandidateID < matches[j].CandidateID
	})
	if r.cfg.Limit > 0 && len(matches) > r.cfg.Limit {
		matches = matches[:r.cfg.Limit]
	}

	logging.Ctx(ctx).Debug().
		Str("subject", subjectID).
		Int("candidates", len(ids)).
		Int("matches", len(matches)).
		Dur("took", time.Since(start)).
		Msg("ranked candidates")
	return matches, nil
}

// Evaluate scores a single pair. It returns compat.ErrIneligible when the
// eligibility policy rejects the pair.
func (r *Ranker) Evaluate(ctx context.Context, subjectID, candidateID string, opts compat.Options) (*compat.Result, error) {
	st := stamp{subject: r.generation(subjectID), candidate: r.generation(candidateID)}
	subject, err := r.store.Profile(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load subject %s: %w", subjectID, err)
	}
	candidate, err := r.store.Profile(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("load candidate %s: %w", candidateID, err)
	}
	return r.evaluate(subject, candidate, opts, st)
}

// Forget drops memoized results involving profileID. Call it whenever that
// profile changes. Evaluations that loaded the old profile and finish after
// Forget are not memoized.
func (r *Ranker) Forget(profileID string) {
	if r.memo == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[profileID]++
	for _, k := range r.memo.Keys() {
		if k.subject == profileID || k.candidate == profileID {
			r.memo.Remove(k)
		}
	}
}

func (r *Ranker) generation(id string) uint64 {
	if r.memo == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[id]
}

// remember memoizes res unless either profile was forgotten since st was
// taken.
func (r *Ranker) remember(key memoKey, res *compat.Result, st stamp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gens[key.subject] != st.subject || r.gens[key.candidate] != st.candidate {
		memoLookups.WithLabelValues("stale").Inc()
		return
	}
	r.memo.Add(key, res)
}

func (r *Ranker) evaluate(subject, candidate *compat.Profile, opts compat.Options, st stamp) (*compat.Result, error) {
	key := memoKey{subject: subject.ID, candidate: candidate.ID, options: opts.Key()}
	if r.memo != nil {
		if res, ok := r.memo.Get(key); ok {
			memoLookups.WithLabelValues("hit").Inc()
			return res, nil
		}
		memoLookups.WithLabelValues("miss").Inc()
	}

	res, err := r.engine.Evaluate(subject, candidate, opts)
	switch {
	case errors.Is(err, compat.ErrIneligible):
		evaluationsTotal.WithLabelValues(outcomeIneligible).Inc()
		return nil, err
	case err != nil:
		evaluationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}
	evaluationsTotal.WithLabelValues(outcomeScored).Inc()
	overallScore.Observe(float64(res.OverallScore))

	if r.memo != nil {
		r.remember(key, res, st)
	}
	return res, nil
}
