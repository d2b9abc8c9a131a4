package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sessionresults/domain/feedback"
	"sessionresults/domain/results"
	"sessionresults/internal"
)

// Sheet names of the results workbook
const (
	SheetSession    = "Session"
	SheetQuestions  = "Questions"
	SheetNoResponse = "No Response"
)

var questionHeader = []interface{}{"No.", "Question", "Group", "Giver", "Giver Team", "Recipient", "Recipient Team", "Answer"}

// Exporter writes the loaded part of a results page as an xlsx workbook
type Exporter struct {
	logger *internal.Logger
}

// NewExporter creates an exporter
func NewExporter(logger *internal.Logger) *Exporter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Exporter{logger: logger.Named("Excel")}
}

// Export writes view to w. Only populated questions contribute response rows; the others are
// listed as not loaded. Responses are grouped the way opts groups them on the page.
func (e *Exporter) Export(view results.PageView, opts results.ViewOptions, w io.Writer) error {
	if !view.SessionLoaded {
		return fmt.Errorf("export %q: session not loaded", view.Params.SessionName)
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSession); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetQuestions, SheetNoResponse} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := writeSession(f, view); err != nil {
		return err
	}
	rows, err := writeQuestions(f, view, opts)
	if err != nil {
		return err
	}
	if err := writeNoResponse(f, view); err != nil {
		return err
	}

	for _, sheet := range []string{SheetQuestions, SheetNoResponse} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}
	if err := f.SetColWidth(SheetQuestions, "B", "B", 40); err != nil {
		return fmt.Errorf("failed to size question column: %w", err)
	}
	if err := f.SetColWidth(SheetQuestions, "H", "H", 60); err != nil {
		return fmt.Errorf("failed to size answer column: %w", err)
	}

	e.logger.Debug("exported %q: %d response rows, %d non-respondents",
		view.Session.FeedbackSessionName, rows, len(view.NoResponseStudents))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSession(f *excelize.File, view results.PageView) error {
	s := view.Session
	pairs := [][]interface{}{
		{"Course", s.CourseID},
		{"Session", s.FeedbackSessionName},
		{"Opening time", view.FormattedOpeningTime},
		{"Closing time", view.FormattedClosingTime},
		{"Time zone", s.TimeZone},
		{"Publish status", string(s.PublishStatus)},
	}
	for i, pair := range pairs {
		if err := setRow(f, SheetSession, i+1, pair); err != nil {
			return err
		}
	}
	return nil
}

func writeQuestions(f *excelize.File, view results.PageView, opts results.ViewOptions) (int, error) {
	if err := setRow(f, SheetQuestions, 1, questionHeader); err != nil {
		return 0, err
	}

	row := 2
	responses := 0
	for _, entry := range view.Questions {
		q := entry.Question
		if !entry.Populated {
			if err := setRow(f, SheetQuestions, row, []interface{}{q.QuestionNumber, q.QuestionBrief, "(not loaded)"}); err != nil {
				return 0, err
			}
			row++
			continue
		}

		kept := entry.Responses
		if opts.Section != "" {
			kept = opts.FilterResponses(kept, opts.Section)
		}
		for _, group := range opts.GroupResponses(kept) {
			for _, r := range group.Responses {
				values := []interface{}{
					q.QuestionNumber, q.QuestionBrief, group.Key,
					r.Giver, r.GiverTeam, r.Recipient, r.RecipientTeam, r.Answer(),
				}
				if err := setRow(f, SheetQuestions, row, values); err != nil {
					return 0, err
				}
				row++
				responses++
			}
		}
	}
	return responses, nil
}

func writeNoResponse(f *excelize.File, view results.PageView) error {
	if err := setRow(f, SheetNoResponse, 1, []interface{}{"Email", "Name", "Team", "Section"}); err != nil {
		return err
	}
	for i, s := range view.NoResponseStudents {
		if err := setRow(f, SheetNoResponse, i+2, studentRow(s)); err != nil {
			return err
		}
	}
	return nil
}

func studentRow(s feedback.Student) []interface{} {
	return []interface{}{s.Email, s.Name, s.TeamName, s.SectionName}
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
