package models

// MatchedItem is a criterion found in both documents.
type MatchedItem struct {
	Item     string `json:"item"`
	Evidence string `json:"evidence,omitempty"`
}

// PartialItem is a criterion only partially satisfied by the source document.
type PartialItem struct {
	Item     string `json:"item"`
	Evidence string `json:"evidence,omitempty"`
	Note     string `json:"note,omitempty"`
}

// MissingItem is a criterion absent from the source document.
type MissingItem struct {
	Item string `json:"item"`
	Note string `json:"note,omitempty"`
}

// AnalysisResult is the structured gap report returned by the hosted model.
// Slice order is the model's presentation order and is preserved as-is.
type AnalysisResult struct {
	Matched         []MatchedItem `json:"matched"`
	Partial         []PartialItem `json:"partial"`
	Missing         []MissingItem `json:"missing"`
	Recommendations []string      `json:"recommendations"`
}
