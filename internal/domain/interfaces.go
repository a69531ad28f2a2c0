package domain

import (
	"context"
	"io"
)

// Upload is a file handed to the scoring service for text extraction.
type Upload struct {
	Name string
	Body io.Reader
}

// Match is one corpus document returned by a check, as ranked by the service.
type Match struct {
	DocumentName    string
	SimilarityScore float64
	PreviewText     string
}

// Result is the outcome of a completed analysis. It is either a
// CompareResult or a CheckResult, tagged by the Mode it was issued under.
type Result interface {
	Mode() Mode
}

// CompareResult is the pairwise similarity of two texts, in [0,100].
type CompareResult struct {
	Similarity float64
}

func (CompareResult) Mode() Mode { return ModeCompare }

// CheckResult is the outcome of checking one text against the corpus.
// Matches keep the order the service returned them in.
type CheckResult struct {
	AverageScore float64
	Matches      []Match
}

func (CheckResult) Mode() Mode { return ModeCheck }

// Gateway is the remote scoring service. Implementations do not retry.
type Gateway interface {
	Extract(ctx context.Context, file Upload) (string, error)
	Compare(ctx context.Context, text1, text2 string) (CompareResult, error)
	Check(ctx context.Context, text string) (CheckResult, error)
}
