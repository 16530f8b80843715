package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
)

// errIneligible is reported when the eligibility policy rejects a pair.
var errIneligible = errors.New("ineligible pairing")

const (
	formatText = "text"
	formatJSON = "json"
)

type rootOptions struct {
	symbolic bool
	format   string
}

func (o *rootOptions) validate() error {
	switch o.format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown --format %q (want text or json)", o.format)
	}
}

func (o *rootOptions) evalOptions() compat.Options {
	return compat.Options{IncludeSymbolic: o.symbolic}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "compat-cli",
		Short:         "Score matrimony profile compatibility",
		Long:          "Computes compatibility verdicts between profiles read from YAML or JSON files, using the same engine as the discovery API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.validate()
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.symbolic, "symbolic", "s", false, "Include the symbolic indicator")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text or json")

	cmd.AddCommand(newScoreCmd(opts), newRankCmd(opts))
	return cmd
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <subject-file> <candidate-file>",
		Short: "Score one candidate from the subject's point of view",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := loadProfile(args[0])
			if err != nil {
				return err
			}
			candidate, err := loadProfile(args[1])
			if err != nil {
				return err
			}

			res, err := compat.New().Evaluate(subject, candidate, root.evalOptions())
			if errors.Is(err, compat.ErrIneligible) {
				return errIneligible
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.format == formatJSON {
				return writeJSON(out, res)
			}
			return writeResult(out, candidate, res)
		},
	}
}

type rankOptions struct {
	minScore int
	limit    int
	workers  int
}

func newRankCmd(root *rootOptions) *cobra.Command {
	opts := &rankOptions{}
	defaults := discovery.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "rank <subject-file> <candidates-file>",
		Short: "Rank a list of candidates for the subject",
		Long:  "Ranks every eligible candidate in the candidates file (a YAML or JSON list of profiles) by overall score. Ineligible and malformed candidates are skipped.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.minScore < 0 || opts.minScore > 100 {
				return fmt.Errorf("--min-score %d outside 0..100", opts.minScore)
			}
			if opts.limit < 0 {
				return errors.New("--limit must not be negative")
			}
			subject, err := loadProfile(args[0])
			if err != nil {
				return err
			}
			candidates, err := loadProfiles(args[1])
			if err != nil {
				return err
			}

			store, err := newStore(subject, candidates)
			if err != nil {
				return err
			}
			ranker, err := discovery.NewRanker(nil, store, discovery.Config{
				Workers:  opts.workers,
				MinScore: opts.minScore,
				Limit:    opts.limit,
			})
			if err != nil {
				return err
			}
			matches, err := ranker.Rank(cmd.Context(), subject.ID, root.evalOptions())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.format == formatJSON {
				return writeJSON(out, map[string]any{"subject_id": subject.ID, "matches": matches})
			}
			return writeMatches(out, store, matches)
		},
	}
	cmd.Flags().IntVar(&opts.minScore, "min-score", 0, "Drop matches below this overall score")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", defaults.Limit, "Maximum matches to print (0 for all)")
	cmd.Flags().IntVar(&opts.workers, "workers", defaults.Workers, "Concurrent evaluations")
	return cmd
}

// newStore indexes the loaded profiles. Duplicate IDs are rejected because
// the ranker identifies candidates by ID.
func newStore(subject *compat.Profile, candidates []compat.Profile) (*discovery.MemoryStore, error) {
	seen := map[string]bool{subject.ID: true}
	store := discovery.NewMemoryStore(*subject)
	for _, c := range candidates {
		if c.ID == subject.ID {
			continue
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate candidate id %q", c.ID)
		}
		seen[c.ID] = true
		store.Put(c, true, discovery.ApprovalApproved)
	}
	return store, nil
}
