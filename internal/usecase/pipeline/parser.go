package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-scribe/internal/domain/entities"
)

// rawSummary mirrors the JSON shape requested from the model, with loose
// priority typing so unexpected values can be clamped instead of rejected
type rawSummary struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyDecisions     []string `json:"key_decisions"`
	ActionItems      []struct {
		Owner    string `json:"owner"`
		Task     string `json:"task"`
		DueDate  string `json:"due_date"`
		Priority string `json:"priority"`
	} `json:"action_items"`
}

// ParseSummaryJSON parses model output into a SummaryResult. The model might
// wrap JSON in markdown code fences despite instructions; those are stripped
// first. Priorities outside the enum are clamped, missing slices initialized.
func ParseSummaryJSON(content string) (*entities.SummaryResult, error) {
	content = extractJSON(content)

	var raw rawSummary
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse summary JSON: %w", err)
	}

	if strings.TrimSpace(raw.ExecutiveSummary) == "" {
		return nil, fmt.Errorf("missing executive_summary in response")
	}

	result := &entities.SummaryResult{
		ExecutiveSummary: strings.TrimSpace(raw.ExecutiveSummary),
		KeyDecisions:     make([]string, 0, len(raw.KeyDecisions)),
		ActionItems:      make([]entities.SummaryActionItem, 0, len(raw.ActionItems)),
	}

	for _, d := range raw.KeyDecisions {
		d = strings.TrimSpace(d)
		if d != "" {
			result.KeyDecisions = append(result.KeyDecisions, d)
		}
	}

	for _, item := range raw.ActionItems {
		task := strings.TrimSpace(item.Task)
		if task == "" {
			continue
		}
		owner := strings.TrimSpace(item.Owner)
		if owner == "" {
			owner = "Unassigned"
		}
		result.ActionItems = append(result.ActionItems, entities.SummaryActionItem{
			Owner:    owner,
			Task:     task,
			DueDate:  strings.TrimSpace(item.DueDate),
			Priority: entities.NormalizePriority(item.Priority),
		})
	}

	return result, nil
}

// FallbackSummary builds a deterministic summary from the transcript itself,
// used when the LLM is unavailable or returns garbage. The pipeline must not
// fail just because analysis did: the leading sentences become the summary
// bullets, decisions stay empty, and a single placeholder action item points
// the recipient at the transcript.
func FallbackSummary(transcript string) *entities.SummaryResult {
	return &entities.SummaryResult{
		ExecutiveSummary: fallbackExcerpt(transcript),
		KeyDecisions:     []string{},
		ActionItems: []entities.SummaryActionItem{{
			Owner:    "Unassigned",
			Task:     "Review the transcript; automated analysis was unavailable",
			Priority: entities.PriorityMedium,
		}},
		Degraded: true,
	}
}

const (
	fallbackSentences    = 3
	fallbackExcerptWords = 80
)

func fallbackExcerpt(transcript string) string {
	sentences := splitSentences(transcript)
	if len(sentences) == 0 {
		return "Transcript stored. Automated analysis was unavailable for this meeting."
	}
	if len(sentences) > fallbackSentences {
		sentences = sentences[:fallbackSentences]
	}

	lines := make([]string, 0, len(sentences)+1)
	lines = append(lines, "Automated analysis was unavailable. Transcript opening:")
	for _, s := range sentences {
		lines = append(lines, "- "+truncateWords(s, fallbackExcerptWords))
	}
	return strings.Join(lines, "\n")
}

// splitSentences breaks transcript text on terminal punctuation. A trailing
// fragment without punctuation still counts as a sentence.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(cur.String()); s != "" {
				sentences = append(sentences, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ") + "…"
}

// extractJSON strips markdown code fences around a JSON payload
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
