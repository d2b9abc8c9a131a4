package results

import (
	"sessionresults/domain/feedback"
)

// SessionsListPath is where the page navigates after a successful publish toggle
const SessionsListPath = "/web/instructor/sessions"

// PageParams are the route query parameters that open a results page
type PageParams struct {
	CourseID    string
	SessionName string
}

// Key converts the params into a backend session key
func (p PageParams) Key() feedback.SessionKey {
	return feedback.SessionKey{CourseID: p.CourseID, SessionName: p.SessionName}
}

// SectionEntry holds the lazily loaded results of one section
type SectionEntry struct {
	Name      string
	Questions []feedback.QuestionResult
	Populated bool
}

// QuestionEntry holds one question and its lazily loaded responses
type QuestionEntry struct {
	Question   feedback.Question
	Responses  []feedback.Response
	Statistics string
	Populated  bool
}

// ID returns the question id the entry is keyed by
func (e QuestionEntry) ID() string {
	return e.Question.FeedbackQuestionID
}

// DialogVariant selects which confirmation dialog the publish toggle opens
type DialogVariant string

const (
	DialogPublish   DialogVariant = "publish"
	DialogUnpublish DialogVariant = "unpublish"
)

// VariantFor picks the dialog variant from the current publish status
func VariantFor(status feedback.PublishStatus) DialogVariant {
	if status.IsPublished() {
		return DialogUnpublish
	}
	return DialogPublish
}

// PublishPrompt is what the confirmation dialog displays
type PublishPrompt struct {
	Variant     DialogVariant
	SessionName string
}

// PageView is an immutable snapshot of a results page
type PageView struct {
	Params PageParams

	Session              feedback.Session
	SessionLoaded        bool
	FormattedOpeningTime string
	FormattedClosingTime string

	Sections       []SectionEntry
	SectionsLoaded bool

	Questions       []QuestionEntry
	QuestionsLoaded bool

	NoResponseStudents    []feedback.Student
	NoResponsePanelLoaded bool
}

// Section returns the entry with the given name
func (v PageView) Section(name string) (SectionEntry, bool) {
	for _, s := range v.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return SectionEntry{}, false
}

// Question returns the entry with the given question id
func (v PageView) Question(id string) (QuestionEntry, bool) {
	for _, q := range v.Questions {
		if q.ID() == id {
			return q, true
		}
	}
	return QuestionEntry{}, false
}

// FullyLoaded reports whether every initialization fetch has completed
func (v PageView) FullyLoaded() bool {
	return v.SessionLoaded && v.SectionsLoaded && v.QuestionsLoaded && v.NoResponsePanelLoaded
}

// NoResponseStudents filters the roster down to students absent from the giver set
func NoResponseStudents(roster []feedback.Student, submitted feedback.SubmittedGiverSet) []feedback.Student {
	given := make(map[string]struct{}, len(submitted.GiverIdentifiers))
	for _, id := range submitted.GiverIdentifiers {
		given[id] = struct{}{}
	}

	missing := make([]feedback.Student, 0, len(roster))
	for _, student := range roster {
		if _, ok := given[student.Email]; !ok {
			missing = append(missing, student)
		}
	}
	return missing
}
