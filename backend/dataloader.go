package main

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
)

type dataLoaderKey struct{}

// DataLoaders holds the per-request loaders.
type DataLoaders struct {
	ProfileLoader *dataloader.Loader[string, *compat.Profile]
}

// NewDataLoaders creates loaders that batch profile reads issued within
// wait of each other into a single Profiles query.
func NewDataLoaders(s profileStore, wait time.Duration) *DataLoaders {
	return &DataLoaders{
		ProfileLoader: dataloader.NewBatchedLoader(
			profileBatchFn(s),
			dataloader.WithWait[string, *compat.Profile](wait),
		),
	}
}

// GetDataLoadersFromContext retrieves dataloaders from context
func GetDataLoadersFromContext(ctx context.Context) *DataLoaders {
	if dl, ok := ctx.Value(dataLoaderKey{}).(*DataLoaders); ok {
		return dl
	}
	return nil
}

// WithDataLoaders adds dataloaders to context
func WithDataLoaders(ctx context.Context, dl *DataLoaders) context.Context {
	return context.WithValue(ctx, dataLoaderKey{}, dl)
}

func profileBatchFn(s profileStore) dataloader.BatchFunc[string, *compat.Profile] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[*compat.Profile] {
		results := make([]*dataloader.Result[*compat.Profile], len(keys))

		profiles, err := s.Profiles(ctx, keys)
		for i, key := range keys {
			switch p, ok := profiles[key]; {
			case err != nil:
				results[i] = &dataloader.Result[*compat.Profile]{Error: err}
			case !ok:
				results[i] = &dataloader.Result[*compat.Profile]{Error: discovery.ErrNotFound}
			default:
				results[i] = &dataloader.Result[*compat.Profile]{Data: p}
			}
		}
		return results
	}
}

// loaderStore routes profile reads through the request's loader when one
// is present, so the ranker's concurrent loads share one query.
type loaderStore struct {
	profileStore
}

func (s loaderStore) Profile(ctx context.Context, id string) (*compat.Profile, error) {
	dl := GetDataLoadersFromContext(ctx)
	if dl == nil {
		return s.profileStore.Profile(ctx, id)
	}
	p, err := dl.ProfileLoader.Load(ctx, id)()
	if err != nil {
		return nil, err
	}
	// Loader results are shared within the request.
	cp := *p
	return &cp, nil
}
