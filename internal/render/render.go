// Package render projects orchestrator results into what the UI shows.
// Everything here is pure.
package render

import (
	"fmt"

	"semcheck/internal/domain"
)

// Band is a cosmetic score bucket.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

const (
	highThreshold   = 70.0
	mediumThreshold = 40.0
	// DisplayThreshold hides corpus matches at or below this score.
	DisplayThreshold = 20.0
)

// BandOf buckets a 0-100 score.
func BandOf(score float64) Band {
	switch {
	case score >= highThreshold:
		return BandHigh
	case score >= mediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// Percent formats a score the way every view shows it.
func Percent(score float64) string {
	return fmt.Sprintf("%.2f%%", score)
}

// FilterMatches returns the matches scoring above DisplayThreshold, in
// their original order. The input is not modified.
func FilterMatches(matches []domain.Match) []domain.Match {
	out := make([]domain.Match, 0, len(matches))
	for _, m := range matches {
		if m.SimilarityScore > DisplayThreshold {
			out = append(out, m)
		}
	}
	return out
}

// Kind says which layout a View uses.
type Kind int

const (
	KindNone Kind = iota
	KindCompare
	KindCheck
)

// Row is one displayed corpus match.
type Row struct {
	DocumentName string
	Similarity   float64
	Band         Band
	Preview      string
}

// View is the displayable shape of a result.
type View struct {
	Kind  Kind
	Title string
	Note  string
	Score float64
	Band  Band
	Rows  []Row
	// Hidden counts matches dropped by the display filter.
	Hidden int
}

// Project builds the view for res under mode. A missing result, or one
// issued under another mode, projects to an empty view.
func Project(mode domain.Mode, res domain.Result) View {
	if res == nil || res.Mode() != mode {
		return View{}
	}
	switch r := res.(type) {
	case domain.CompareResult:
		return View{
			Kind:  KindCompare,
			Title: "Similarity",
			Score: r.Similarity,
			Band:  BandOf(r.Similarity),
		}
	case domain.CheckResult:
		shown := FilterMatches(r.Matches)
		rows := make([]Row, 0, len(shown))
		for _, m := range shown {
			rows = append(rows, Row{
				DocumentName: m.DocumentName,
				Similarity:   m.SimilarityScore,
				Band:         BandOf(m.SimilarityScore),
				Preview:      m.PreviewText,
			})
		}
		return View{
			Kind:   KindCheck,
			Title:  "Average plagiarism score",
			Note:   fmt.Sprintf("based on the top %d most similar documents", len(r.Matches)),
			Score:  r.AverageScore,
			Band:   BandOf(r.AverageScore),
			Rows:   rows,
			Hidden: len(r.Matches) - len(shown),
		}
	}
	return View{}
}
