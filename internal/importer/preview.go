package importer

import "fmt"

// Display caps for the preview. They limit what is rendered, never what
// blocks the commit gate.
const (
	maxErrorLines  = 5
	maxPreviewRows = 10
)

// Preview is the pre-commit report shown after a CSV upload.
type Preview struct {
	Rows   []ImportRow   `json:"rows"`
	Errors []ImportError `json:"errors"`
}

// NewPreview bundles parsed rows and errors into a preview report.
func NewPreview(rows []ImportRow, errors []ImportError) Preview {
	return Preview{Rows: rows, Errors: errors}
}

// CanCommit reports whether the import may proceed. Every error blocks
// the commit regardless of display caps.
func (p Preview) CanCommit() bool {
	return len(p.Errors) == 0
}

// Summary is the preview heading, e.g. "Förhandsgranska import (2 medlemmar)".
func (p Preview) Summary() string {
	return fmt.Sprintf("Förhandsgranska import (%d medlemmar)", len(p.Rows))
}

// CommitLabel labels the commit action, e.g. "Importera 2 medlemmar".
func (p Preview) CommitLabel() string {
	return fmt.Sprintf("Importera %d medlemmar", len(p.Rows))
}

// ErrorHeading is the error box heading, e.g. "Fel hittades (3)".
func (p Preview) ErrorHeading() string {
	return fmt.Sprintf("Fel hittades (%d)", len(p.Errors))
}

// ErrorLines renders the first errors as display strings, ending with a
// "...och N till" line when the list was capped.
func (p Preview) ErrorLines() []string {
	lines := make([]string, 0, maxErrorLines+1)
	for i, err := range p.Errors {
		if i == maxErrorLines {
			break
		}
		lines = append(lines, err.String())
	}
	if rest := len(p.Errors) - maxErrorLines; rest > 0 {
		lines = append(lines, fmt.Sprintf("...och %d till", rest))
	}
	return lines
}

// RowWindow returns the rows to render in the preview table.
func (p Preview) RowWindow() []ImportRow {
	if len(p.Rows) <= maxPreviewRows {
		return p.Rows
	}
	return p.Rows[:maxPreviewRows]
}

// RowFooter returns the "...och N till" table footer, or "" when every
// row fits in the window.
func (p Preview) RowFooter() string {
	if rest := len(p.Rows) - maxPreviewRows; rest > 0 {
		return fmt.Sprintf("...och %d till", rest)
	}
	return ""
}
