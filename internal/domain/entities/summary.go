package entities

import "strings"

// Priority is the urgency assigned to an action item. Values outside the
// enum coming back from the LLM are clamped to PriorityMedium on parse.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// NormalizePriority maps free-form model output onto the Priority enum,
// defaulting to Medium for anything unrecognized.
func NormalizePriority(raw string) Priority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "urgent", "critical":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// SummaryActionItem is a single task extracted from the meeting
type SummaryActionItem struct {
	Owner    string   `json:"owner"`
	Task     string   `json:"task"`
	DueDate  string   `json:"due_date,omitempty"`
	Priority Priority `json:"priority"`
}

// SummaryResult is the structured output of summarization. It is persisted
// as a JSON blob via the storage adapter and rendered into the email digest.
type SummaryResult struct {
	ExecutiveSummary string              `json:"executive_summary"`
	KeyDecisions     []string            `json:"key_decisions"`
	ActionItems      []SummaryActionItem `json:"action_items"`
	Degraded         bool                `json:"degraded,omitempty"`
}
