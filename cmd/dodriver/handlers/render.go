package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"sigs.k8s.io/yaml"

	"github.com/imamik/dodriver/internal/provisioning"
)

// Output formats accepted by -o.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	okStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	failStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen)

	failStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)

// writeDocument prints v as YAML or JSON.
func writeDocument(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "", OutputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q (use yaml or json)", format)
	}
}

// writeTitle prints a heading. Styling is applied on terminals only.
func writeTitle(w io.Writer, title string) {
	if isInteractive() {
		fmt.Fprintln(w, titleStyle.Render(title))
		fmt.Fprintln(w, dimStyle.Render(strings.Repeat("═", len(title))))
		return
	}
	fmt.Fprintln(w, title)
}

// writeActions lists performed actions with their outcome.
func writeActions(w io.Writer, actions []provisioning.Action) {
	if len(actions) == 0 {
		fmt.Fprintln(w, "no changes")
		return
	}
	styled := isInteractive()
	if styled {
		fmt.Fprintln(w, sectionStyle.Render("Actions"))
	} else {
		fmt.Fprintln(w, "Actions:")
	}
	for _, a := range actions {
		marker := outcomeMarker(a.Outcome)
		if styled {
			switch a.Outcome {
			case provisioning.OutcomeSucceeded:
				marker = okStyle.Render(marker)
			case provisioning.OutcomeFailed:
				marker = failStyle.Render(marker)
			default:
				marker = dimStyle.Render(marker)
			}
		}
		line := fmt.Sprintf("  %s %s", marker, a.Description)
		if a.Error != "" {
			line += ": " + a.Error
		}
		fmt.Fprintln(w, line)
	}
}

func outcomeMarker(o provisioning.Outcome) string {
	switch o {
	case provisioning.OutcomeSucceeded:
		return "[done]"
	case provisioning.OutcomeFailed:
		return "[failed]"
	default:
		return "[dry-run]"
	}
}
