// Package cli provides CLI utilities for Sukima.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/sukima/internal/models"
)

// OutputFormat is the format for analysis result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAnalysisResult writes a gap analysis result to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnalysisResult(w io.Writer, result *models.AnalysisResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeAnalysisResultText(w, result)
		return nil
	}
}

func writeAnalysisResultText(w io.Writer, result *models.AnalysisResult) {
	fmt.Fprintf(w, "\nGap analysis: %d matched, %d partial, %d missing\n",
		len(result.Matched), len(result.Partial), len(result.Missing))

	if len(result.Matched) > 0 {
		fmt.Fprintf(w, "\nMatched:\n")
		for _, m := range result.Matched {
			fmt.Fprintf(w, "  + %s", m.Item)
			if m.Evidence != "" {
				fmt.Fprintf(w, " (%s)", m.Evidence)
			}
			fmt.Fprintln(w)
		}
	}

	if len(result.Partial) > 0 {
		fmt.Fprintf(w, "\nPartially covered:\n")
		for _, p := range result.Partial {
			fmt.Fprintf(w, "  ~ %s", p.Item)
			if p.Note != "" {
				fmt.Fprintf(w, " - %s", p.Note)
			}
			fmt.Fprintln(w)
		}
	}

	if len(result.Missing) > 0 {
		fmt.Fprintf(w, "\nMissing:\n")
		for _, m := range result.Missing {
			fmt.Fprintf(w, "  - %s", m.Item)
			if m.Note != "" {
				fmt.Fprintf(w, " - %s", m.Note)
			}
			fmt.Fprintln(w)
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Fprintf(w, "\nRecommendations:\n")
		for i, rec := range result.Recommendations {
			fmt.Fprintf(w, "  %d. %s\n", i+1, rec)
		}
	}
	fmt.Fprintln(w)
}
