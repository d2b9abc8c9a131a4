package resultspage

import (
	"sessionresults/domain/feedback"
	"sessionresults/domain/results"
)

// Snapshot copies the current page state into an immutable view
func (c *Controller) Snapshot() results.PageView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := &c.state
	view := results.PageView{
		Params:                s.params,
		Session:               s.session,
		SessionLoaded:         s.sessionLoaded,
		FormattedOpeningTime:  s.openingTime,
		FormattedClosingTime:  s.closingTime,
		SectionsLoaded:        s.sectionsLoaded,
		QuestionsLoaded:       s.questionsLoaded,
		NoResponsePanelLoaded: s.noResponseLoaded,
		NoResponseStudents:    append([]feedback.Student(nil), s.noResponseStudents...),
	}

	view.Sections = make([]results.SectionEntry, 0, len(s.sectionOrder))
	for _, name := range s.sectionOrder {
		e := *s.sections[name]
		e.Questions = append([]feedback.QuestionResult(nil), e.Questions...)
		view.Sections = append(view.Sections, e)
	}

	view.Questions = make([]results.QuestionEntry, 0, len(s.questionOrder))
	for _, id := range s.questionOrder {
		e := *s.questions[id]
		e.Responses = append([]feedback.Response(nil), e.Responses...)
		view.Questions = append(view.Questions, e)
	}

	return view
}
