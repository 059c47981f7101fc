package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/utils/logging"
)

// assistantReasonPrefix marks reasoning produced by the LLM
const assistantReasonPrefix = "AI: "

// Assistant asks an LLM to map the columns the rule table could not
type Assistant struct {
	llmClient gollem.LLMClient
	// sampleRows is the number of data rows included in the prompt
	sampleRows int
}

// AssistantOption is a functional option for Assistant
type AssistantOption func(*Assistant)

// WithSampleRows sets how many data rows are shown to the LLM
func WithSampleRows(n int) AssistantOption {
	return func(a *Assistant) {
		a.sampleRows = n
	}
}

// NewAssistant creates an Assistant with the provided LLM client
func NewAssistant(llmClient gollem.LLMClient, opts ...AssistantOption) (*Assistant, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	a := &Assistant{
		llmClient:  llmClient,
		sampleRows: 3,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type llmResponse struct {
	Mappings []llmMapping `json:"mappings"`
}

type llmMapping struct {
	SourceColumn string  `json:"source_column"`
	TargetField  string  `json:"target_field"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Augment fills unmapped entries of base with LLM suggestions. Heuristic mappings are
// never overridden and a target already claimed is never assigned twice. On any
// LLM failure base is returned unchanged and the failure is logged.
func (a *Assistant) Augment(ctx context.Context, base []model.ColumnMapping, header []string, rows [][]string) []model.ColumnMapping {
	var unmapped []string
	for _, m := range base {
		if !m.TargetField.IsMapped() {
			unmapped = append(unmapped, m.SourceColumn)
		}
	}
	if len(unmapped) == 0 {
		return base
	}

	suggestions, err := a.suggest(ctx, base, unmapped, header, rows)
	if err != nil {
		logging.From(ctx).Warn("LLM mapping suggestion failed, keeping rule based mappings", "error", err)
		return base
	}

	return mergeSuggestions(base, suggestions)
}

func (a *Assistant) suggest(ctx context.Context, base []model.ColumnMapping, unmapped, header []string, rows [][]string) ([]llmMapping, error) {
	session, err := a.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(responseSchema()),
		gollem.WithSessionSystemPrompt(buildSystemPrompt()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(buildUserPrompt(base, unmapped, header, rows, a.sampleRows))})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}
	return parsed.Mappings, nil
}

// mergeSuggestions applies suggestions to unmapped columns only. Unknown columns,
// invalid targets and targets already claimed are dropped.
func mergeSuggestions(base []model.ColumnMapping, suggestions []llmMapping) []model.ColumnMapping {
	merged := make([]model.ColumnMapping, len(base))
	copy(merged, base)

	claimed := make(map[types.TargetField]bool)
	position := make(map[string]int, len(merged))
	for i, m := range merged {
		if m.TargetField.IsMapped() {
			claimed[m.TargetField] = true
		}
		if _, exists := position[m.SourceColumn]; !exists {
			position[m.SourceColumn] = i
		}
	}

	for _, s := range suggestions {
		target := types.TargetField(s.TargetField)
		i, ok := position[s.SourceColumn]
		if !ok || !target.IsValid() || claimed[target] || merged[i].TargetField.IsMapped() {
			continue
		}

		claimed[target] = true
		merged[i] = model.ColumnMapping{
			SourceColumn: s.SourceColumn,
			TargetField:  target,
			Confidence:   clamp(s.Confidence),
			Reasoning:    assistantReasonPrefix + s.Reasoning,
		}
	}
	return merged
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func buildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString("You map spreadsheet columns of a security control framework onto a fixed control library schema.\n\n")
	sb.WriteString("## Target fields:\n\n")
	for _, f := range types.AllTargetFields() {
		fmt.Fprintf(&sb, "- %s\n", f)
	}
	sb.WriteString("\n## Instructions:\n\n")
	sb.WriteString("1. Only map the columns listed as unmapped.\n")
	sb.WriteString("2. Never use a target field that is already taken.\n")
	sb.WriteString("3. Each target field may be used at most once.\n")
	sb.WriteString("4. Skip columns that do not clearly fit any target field.\n")
	sb.WriteString("5. confidence is a number between 0 and 1; reasoning is one short sentence.\n")

	return sb.String()
}

func buildUserPrompt(base []model.ColumnMapping, unmapped, header []string, rows [][]string, sampleRows int) string {
	var sb strings.Builder

	sb.WriteString("## Already taken target fields:\n\n")
	for _, m := range base {
		if m.TargetField.IsMapped() {
			fmt.Fprintf(&sb, "- %s (column %q)\n", m.TargetField, m.SourceColumn)
		}
	}

	sb.WriteString("\n## Unmapped columns:\n\n")
	for _, c := range unmapped {
		fmt.Fprintf(&sb, "- %q\n", c)
	}

	if len(rows) > 0 && sampleRows > 0 {
		sb.WriteString("\n## Sample rows:\n\n")
		sb.WriteString(strings.Join(header, " | "))
		sb.WriteString("\n")
		for i, row := range rows {
			if i >= sampleRows {
				break
			}
			sb.WriteString(strings.Join(row, " | "))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func responseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ColumnMappings",
		Description: "Suggested mappings for unmapped columns",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"mappings": {
				Type:        gollem.TypeArray,
				Description: "One entry per column that fits a target field",
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"source_column": {
							Type:        gollem.TypeString,
							Description: "Column name exactly as given",
							Required:    true,
						},
						"target_field": {
							Type:        gollem.TypeString,
							Description: "One of the target fields",
							Enum:        targetFieldNames(),
							Required:    true,
						},
						"confidence": {
							Type:        gollem.TypeNumber,
							Description: "Confidence between 0 and 1",
							Minimum:     &minConfidence,
							Maximum:     &maxConfidence,
							Required:    true,
						},
						"reasoning": {
							Type:        gollem.TypeString,
							Description: "Why the column fits the target field",
						},
					},
				},
				Required: true,
			},
		},
	}
}

var (
	minConfidence = 0.0
	maxConfidence = 1.0
)

func targetFieldNames() []string {
	fields := types.AllTargetFields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, string(f))
	}
	return names
}
