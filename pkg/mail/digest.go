package mail

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/johnquangdev/meeting-scribe/internal/domain/entities"
)

const digestHTML = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif; color: #1f2933; max-width: 640px; margin: 0 auto; padding: 24px;">
  <h1 style="font-size: 20px; border-bottom: 2px solid #2563eb; padding-bottom: 8px;">Meeting digest: {{.Title}}</h1>

  <h2 style="font-size: 16px; margin-top: 24px;">Summary</h2>
  <p style="line-height: 1.5;">{{.Summary.ExecutiveSummary}}</p>

  {{if .Summary.KeyDecisions}}
  <h2 style="font-size: 16px; margin-top: 24px;">Key decisions</h2>
  <ul style="line-height: 1.6;">
    {{range .Summary.KeyDecisions}}<li>{{.}}</li>
    {{end}}
  </ul>
  {{end}}

  {{if .Summary.ActionItems}}
  <h2 style="font-size: 16px; margin-top: 24px;">Action items</h2>
  <table style="border-collapse: collapse; width: 100%;">
    <tr style="background: #f1f5f9; text-align: left;">
      <th style="padding: 6px 10px; border: 1px solid #cbd5e1;">Owner</th>
      <th style="padding: 6px 10px; border: 1px solid #cbd5e1;">Task</th>
      <th style="padding: 6px 10px; border: 1px solid #cbd5e1;">Due</th>
      <th style="padding: 6px 10px; border: 1px solid #cbd5e1;">Priority</th>
    </tr>
    {{range .Summary.ActionItems}}
    <tr>
      <td style="padding: 6px 10px; border: 1px solid #cbd5e1;">{{.Owner}}</td>
      <td style="padding: 6px 10px; border: 1px solid #cbd5e1;">{{.Task}}</td>
      <td style="padding: 6px 10px; border: 1px solid #cbd5e1;">{{if .DueDate}}{{.DueDate}}{{else}}&mdash;{{end}}</td>
      <td style="padding: 6px 10px; border: 1px solid #cbd5e1;">{{.Priority}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}

  {{if .Summary.Degraded}}
  <p style="color: #92400e; background: #fef3c7; padding: 8px 12px; border-radius: 4px; margin-top: 16px;">
    Automated analysis was unavailable for this meeting, so this digest contains a basic summary only.
  </p>
  {{end}}

  {{if .TranscriptURL}}
  <p style="margin-top: 24px;">
    <a href="{{.TranscriptURL}}" style="color: #2563eb;">Download full transcript</a>
  </p>
  {{end}}

  <p style="color: #9aa5b1; font-size: 12px; margin-top: 32px;">Sent by Meeting Scribe</p>
</body>
</html>`

var digestTmpl = template.Must(template.New("digest").Parse(digestHTML))

type digestData struct {
	Title         string
	Summary       *entities.SummaryResult
	TranscriptURL string
}

// ComposeDigest renders the result digest for a finished meeting, producing
// both HTML and a plain-text alternative. transcriptURL may be empty when the
// storage backend cannot presign links.
func ComposeDigest(title string, summary *entities.SummaryResult, transcriptURL string) (*Message, error) {
	var html strings.Builder
	err := digestTmpl.Execute(&html, digestData{
		Title:         title,
		Summary:       summary,
		TranscriptURL: transcriptURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render digest: %w", err)
	}

	return &Message{
		Subject: fmt.Sprintf("Meeting digest: %s", title),
		HTML:    html.String(),
		Text:    composeText(title, summary, transcriptURL),
	}, nil
}

func composeText(title string, summary *entities.SummaryResult, transcriptURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting digest: %s\n\n", title)
	fmt.Fprintf(&b, "Summary\n%s\n", summary.ExecutiveSummary)

	if len(summary.KeyDecisions) > 0 {
		b.WriteString("\nKey decisions\n")
		for _, d := range summary.KeyDecisions {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}

	if len(summary.ActionItems) > 0 {
		b.WriteString("\nAction items\n")
		for _, item := range summary.ActionItems {
			line := fmt.Sprintf("- [%s] %s: %s", item.Priority, item.Owner, item.Task)
			if item.DueDate != "" {
				line += fmt.Sprintf(" (due %s)", item.DueDate)
			}
			b.WriteString(line + "\n")
		}
	}

	if summary.Degraded {
		b.WriteString("\nAutomated analysis was unavailable; this digest contains a basic summary only.\n")
	}

	if transcriptURL != "" {
		fmt.Fprintf(&b, "\nFull transcript: %s\n", transcriptURL)
	}
	return b.String()
}
