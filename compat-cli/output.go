package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeResult prints a human-readable verdict.
func writeResult(w io.Writer, candidate *compat.Profile, res *compat.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s\n", displayName(candidate))
	fmt.Fprintf(&b, "Overall:   %d%%\n\n", res.OverallScore)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for i, label := range res.Radar.Labels {
		fmt.Fprintf(tw, "  %s\t%d\n", label, res.Radar.Values[i])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	b.WriteString("\n")
	for _, line := range res.Insights {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	if res.Symbolic != nil {
		fmt.Fprintf(&b, "\nSymbolic: %s (%s)\n", res.Symbolic.Level, res.Symbolic.Note)
	}
	fmt.Fprintf(&b, "\n%s\n", res.Disclaimer)

	_, err := io.WriteString(w, b.String())
	return err
}

// writeMatches prints one line per ranked match.
func writeMatches(w io.Writer, store discovery.Store, matches []discovery.Match) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "No matches.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tSCORE\tAGE\tLOC\tCAREER\tLIFE\tFAMILY")
	for i, m := range matches {
		name := m.CandidateID
		if p, err := store.Profile(context.Background(), m.CandidateID); err == nil {
			name = displayName(p)
		}
		s := m.Result.CategoryScores
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			i+1, m.CandidateID, name, m.Result.OverallScore,
			s.Age, s.Location, s.EducationCareer, s.Lifestyle, s.FamilyValues)
	}
	return tw.Flush()
}

func displayName(p *compat.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
