package excel

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sessionresults/domain/feedback"
	"sessionresults/domain/results"
)

func sampleView() results.PageView {
	return results.PageView{
		Params: results.PageParams{CourseID: "CS101", SessionName: "Week 1"},
		Session: feedback.Session{
			CourseID:            "CS101",
			FeedbackSessionName: "Week 1",
			TimeZone:            "UTC",
			PublishStatus:       feedback.StatusPublished,
		},
		SessionLoaded:        true,
		FormattedOpeningTime: "Mon, 08 Jan, 2024, 12:00 AM UTC",
		Questions: []results.QuestionEntry{
			{
				Question:  feedback.Question{FeedbackQuestionID: "q-1", QuestionNumber: 1, QuestionBrief: "Strengths"},
				Populated: true,
				Responses: []feedback.Response{
					{Giver: "b@x", GiverTeam: "Team 2", Recipient: "a@x", ResponseDetails: json.RawMessage(`{"answer":"Careful"}`)},
					{Giver: "a@x", GiverTeam: "Team 1", Recipient: "b@x", ResponseDetails: json.RawMessage(`{"answer":"Fast"}`)},
				},
			},
			{Question: feedback.Question{FeedbackQuestionID: "q-2", QuestionNumber: 2, QuestionBrief: "Rating"}},
		},
		NoResponseStudents: []feedback.Student{{Email: "c@x", Name: "Carol", TeamName: "Team 1", SectionName: "S1"}},
	}
}

func readBack(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestExport_WritesAllSheets(t *testing.T) {
	var buf bytes.Buffer
	opts := results.DefaultViewOptions()
	opts.ViewType = results.ViewGRQ
	opts.GroupByTeam = false

	require.NoError(t, NewExporter(nil).Export(sampleView(), opts, &buf))
	f := readBack(t, &buf)

	assert.Equal(t, []string{SheetSession, SheetQuestions, SheetNoResponse}, f.GetSheetList())

	session, err := f.GetRows(SheetSession)
	require.NoError(t, err)
	assert.Equal(t, []string{"Session", "Week 1"}, session[1])
	assert.Equal(t, []string{"Publish status", "PUBLISHED"}, session[5])

	rows, err := f.GetRows(SheetQuestions)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Answer", rows[0][7])
	// grouped by giver, sorted
	assert.Equal(t, "a@x", rows[1][2])
	assert.Equal(t, "Fast", rows[1][7])
	assert.Equal(t, "b@x", rows[2][2])
	assert.Equal(t, []string{"2", "Rating", "(not loaded)"}, rows[3])

	missing, err := f.GetRows(SheetNoResponse)
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, []string{"c@x", "Carol", "Team 1", "S1"}, missing[1])
}

func TestExport_RequiresSession(t *testing.T) {
	view := sampleView()
	view.SessionLoaded = false

	var buf bytes.Buffer
	err := NewExporter(nil).Export(view, results.DefaultViewOptions(), &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
