package resultspage

import (
	"context"

	"sessionresults/domain/core"
	"sessionresults/domain/feedback"
)

// LoadQuestion fetches the responses and statistics of one question.
// It is a no-op once the question is populated; a failed fetch leaves it unpopulated so
// the next call retries. Concurrent calls for the same question share one request.
func (c *Controller) LoadQuestion(ctx context.Context, questionID string) error {
	c.mu.RLock()
	entry, ok := c.state.questions[questionID]
	populated := ok && entry.Populated
	key := c.state.session.Key()
	c.mu.RUnlock()

	if !ok {
		return core.NewUnknownQuestionError(questionID)
	}
	if populated {
		return nil
	}

	_, err, shared := c.loads.Do("question\x00"+questionID, func() (interface{}, error) {
		if c.questionPopulated(questionID) {
			return nil, nil
		}

		reqCtx, done := c.bind(ctx)
		defer done()

		res, err := c.backend.GetResults(reqCtx, feedback.ResultQuery{
			Session:    key,
			Intent:     feedback.IntentInstructorResult,
			QuestionID: questionID,
		})
		if err != nil {
			c.report("question "+questionID, err)
			return nil, err
		}
		if len(res.Questions) == 0 {
			c.logger.Debug("no results returned for question %s", questionID)
			return nil, nil
		}

		first := res.Questions[0]
		if !c.update(func(s *pageState) {
			e := s.questions[questionID]
			e.Responses = first.AllResponses
			e.Statistics = first.QuestionStatistics
			e.Populated = true
		}) {
			return nil, core.ErrPageClosed
		}
		return nil, nil
	})
	if shared {
		c.logger.Trace("question %s load shared with a concurrent caller", questionID)
	}
	return err
}

// LoadSection fetches the results of every question restricted to one section.
// Same at-most-once and retry rules as LoadQuestion.
func (c *Controller) LoadSection(ctx context.Context, sectionName string) error {
	c.mu.RLock()
	entry, ok := c.state.sections[sectionName]
	populated := ok && entry.Populated
	key := c.state.session.Key()
	c.mu.RUnlock()

	if !ok {
		return core.NewUnknownSectionError(sectionName)
	}
	if populated {
		return nil
	}

	_, err, _ := c.loads.Do("section\x00"+sectionName, func() (interface{}, error) {
		if c.sectionPopulated(sectionName) {
			return nil, nil
		}

		reqCtx, done := c.bind(ctx)
		defer done()

		res, err := c.backend.GetResults(reqCtx, feedback.ResultQuery{
			Session: key,
			Intent:  feedback.IntentInstructorResult,
			Section: sectionName,
		})
		if err != nil {
			c.report("section "+sectionName, err)
			return nil, err
		}

		if !c.update(func(s *pageState) {
			e := s.sections[sectionName]
			e.Questions = res.Questions
			e.Populated = true
		}) {
			return nil, core.ErrPageClosed
		}
		return nil, nil
	})
	return err
}

// LoadAllQuestions loads every question of the page, stopping at the first failure
func (c *Controller) LoadAllQuestions(ctx context.Context) error {
	c.mu.RLock()
	ids := append([]string(nil), c.state.questionOrder...)
	c.mu.RUnlock()

	for _, id := range ids {
		if err := c.LoadQuestion(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) questionPopulated(questionID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.state.questions[questionID]
	return ok && e.Populated
}

func (c *Controller) sectionPopulated(sectionName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.state.sections[sectionName]
	return ok && e.Populated
}
