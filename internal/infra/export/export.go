// Package export renders a task view as JSON, YAML, Markdown or PDF.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/todo/internal/domain"
)

// Format is an export file format.
type Format string

// Export formats.
const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// ErrUnknownFormat is returned for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format (use json, yaml, markdown or pdf)")

// AllFormats lists the supported formats.
var AllFormats = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatPDF}

// ParseFormat parses a format name. "md" and "yml" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// View is the data an export renders.
type View struct {
	Tasks    []domain.Task
	Criteria domain.ViewCriteria
	Total    int // Size of the full collection, before filter and search
}

// record is the per-task shape for JSON and YAML output.
type record struct {
	Text string `json:"text" yaml:"text"`
	ID   int64  `json:"id" yaml:"id"`
	Done bool   `json:"done" yaml:"done"`
}

func records(tasks []domain.Task) []record {
	out := make([]record, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, record{ID: t.ID, Text: t.Text, Done: t.Done})
	}
	return out
}

// Write renders v to w in format f.
func Write(w io.Writer, f Format, v View) error {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(records(v.Tasks), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records(v.Tasks)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, markdown(v))
		return err
	case FormatPDF:
		return writePDF(w, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// Summary returns the "showing X of Y tasks" line with active criteria.
func Summary(v View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "showing %d of %d tasks", len(v.Tasks), v.Total)
	if v.Criteria.Filter != "" && v.Criteria.Filter != domain.FilterAll {
		fmt.Fprintf(&b, ", filter: %s", v.Criteria.Filter)
	}
	if v.Criteria.Search != "" {
		fmt.Fprintf(&b, ", search: %q", v.Criteria.Search)
	}
	return b.String()
}

func markdown(v View) string {
	var b strings.Builder
	b.WriteString("# Tasks\n\n")
	b.WriteString("_" + Summary(v) + "_\n\n")
	for _, t := range v.Tasks {
		mark := " "
		if t.Done {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, t.Text)
	}
	return b.String()
}

func writePDF(w io.Writer, v View) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(12)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, tr(Summary(v)))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	for _, t := range v.Tasks {
		mark := "[ ]"
		if t.Done {
			mark = "[x]"
		}
		pdf.MultiCell(0, 6, tr(mark+" "+t.Text), "0", "L", false)
	}
	return pdf.Output(w)
}
