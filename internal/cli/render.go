package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/orderlens/internal/model"
	"github.com/Veraticus/orderlens/internal/profile"
	"github.com/Veraticus/orderlens/internal/service"
)

// JSON renders a result as indented JSON.
func JSON(result *model.ProfileInferenceResult) (string, error) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(out), nil
}

// Table lays rows out in left-aligned columns under a header.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = style.Width(widths[i] + 2).Render(cell)
		}
		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ")
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(header, TableHeaderStyle))
	for _, row := range rows {
		lines = append(lines, renderRow(row, TableCellStyle))
	}
	return strings.Join(lines, "\n")
}

// Profile renders a reconciled profile in schema order.
func Profile(schema profile.Schema, p model.Profile) string {
	rows := make([][]string, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		value := p.String(field.Name)
		if field.Cardinality == profile.Multi {
			value = strings.Join(p.Strings(field.Name), ", ")
		}
		if value == "" {
			value = SubtleStyle.Render("none")
		}
		rows = append(rows, []string{field.Name, value})
	}
	return Table([]string{"Field", "Value"}, rows)
}

// Recommendations renders one block per recommendation.
func Recommendations(recs []model.Recommendation) string {
	if len(recs) == 0 {
		return SubtleStyle.Render("No recommendations")
	}
	blocks := make([]string, 0, len(recs))
	for i, r := range recs {
		name := r.Name
		if name == "" {
			name = "(unnamed)"
		}
		lines := []string{BoldStyle.Render(fmt.Sprintf("%d. %s", i+1, name))}
		if r.Reason != "" {
			lines = append(lines, "   "+r.Reason)
		}
		lines = append(lines, "   "+SubtleStyle.Render(r.URL))
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n")
}

// Result renders a full result for humans. Failed results show the error and
// the raw reply when present.
func Result(schema profile.Schema, result *model.ProfileInferenceResult) string {
	if result.Failed() {
		out := FormatError(result.Error)
		if result.RawResponse != "" {
			out += "\n\n" + RenderBox("Raw reply", result.RawResponse)
		}
		return out
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderBox("Profile", Profile(schema, result.Profile)),
		"",
		FormatTitle("Recommendations"),
		Recommendations(result.Recommendations),
	)
}

// Keywords renders keyword weights, heaviest first.
func Keywords(keywords []model.Keyword) string {
	if len(keywords) == 0 {
		return SubtleStyle.Render("No keywords")
	}
	rows := make([][]string, len(keywords))
	for i, k := range keywords {
		rows[i] = []string{k.Term, strconv.Itoa(k.Weight)}
	}
	return Table([]string{"Keyword", "Weight"}, rows)
}

// History renders stored results, newest first as given.
func History(results []service.StoredResult) string {
	if len(results) == 0 {
		return SubtleStyle.Render("No stored results")
	}
	rows := make([][]string, len(results))
	for i, r := range results {
		status := SuccessStyle.Render(SuccessIcon)
		if r.HasError {
			status = ErrorStyle.Render(ErrorIcon)
		}
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			status,
			r.Source,
		}
	}
	return Table([]string{"ID", "Created", "OK", "Source"}, rows)
}
