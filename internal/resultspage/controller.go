// Package resultspage drives the instructor results page of one feedback session.
//
// A Controller owns the per-page state: session metadata, the section and question
// dictionaries and the non-respondent list. Initialization fans out independent fetches
// that each mark their own part of the page loaded; detail for a question or a section is
// fetched lazily and at most once. Every request is bound to the page lifetime, so Close
// cancels whatever is still in flight and late responses are dropped.
package resultspage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"sessionresults/domain/core"
	"sessionresults/domain/feedback"
	"sessionresults/domain/results"
	"sessionresults/internal"
	"sessionresults/ports"
)

// Dependencies are the collaborators a Controller talks to
type Dependencies struct {
	Backend   ports.FeedbackBackend
	Status    ports.StatusMessenger
	Timezone  ports.TimezoneFormatter
	Navigator ports.Navigator
	Logger    *internal.Logger
}

// Controller holds the state of one results page
type Controller struct {
	backend   ports.FeedbackBackend
	status    ports.StatusMessenger
	tz        ports.TimezoneFormatter
	navigator ports.Navigator
	logger    *internal.Logger

	ctx    context.Context
	cancel context.CancelFunc

	initOnce sync.Once
	started  atomic.Bool
	tasks    errgroup.Group
	settled  chan struct{}
	initErr  error
	loads    singleflight.Group

	mu    sync.RWMutex
	state pageState
}

type pageState struct {
	params results.PageParams

	session       feedback.Session
	sessionLoaded bool
	openingTime   string
	closingTime   string

	sectionOrder   []string
	sections       map[string]*results.SectionEntry
	sectionsLoaded bool

	questionOrder   []string
	questions       map[string]*results.QuestionEntry
	questionsLoaded bool

	noResponseStudents []feedback.Student
	noResponseLoaded   bool
}

// NewController creates a page controller whose lifetime is bounded by parent
func NewController(parent context.Context, deps Dependencies) *Controller {
	ctx, cancel := context.WithCancel(parent)
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Controller{
		backend:   deps.Backend,
		status:    deps.Status,
		tz:        deps.Timezone,
		navigator: deps.Navigator,
		logger:    logger.Named("ResultsPage"),
		ctx:       ctx,
		cancel:    cancel,
		settled:   make(chan struct{}),
		state: pageState{
			sections:  make(map[string]*results.SectionEntry),
			questions: make(map[string]*results.QuestionEntry),
		},
	}
}

// Init starts loading the page for params. Only the first call has an effect.
// It does not block; use Wait to join the initialization fetches.
func (c *Controller) Init(params results.PageParams) {
	c.initOnce.Do(func() {
		c.mu.Lock()
		c.state.params = params
		c.mu.Unlock()

		c.logger.Debug("opening results of %q in course %s", params.SessionName, params.CourseID)
		c.started.Store(true)
		c.tasks.Go(func() error {
			return c.loadSession(params)
		})
		go func() {
			c.initErr = c.tasks.Wait()
			close(c.settled)
		}()
	})
}

// Wait blocks until every initialization fetch has finished or ctx is done.
// It returns the first fetch error; sibling fetches are never aborted by it.
func (c *Controller) Wait(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}
	select {
	case <-c.settled:
		return c.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Settled reports whether Init ran and every initialization fetch has finished
func (c *Controller) Settled() bool {
	select {
	case <-c.settled:
		return true
	default:
		return false
	}
}

// Close cancels every request bound to the page. Responses that arrive later are discarded.
func (c *Controller) Close() {
	c.cancel()
}

// Closed reports whether the page has been torn down
func (c *Controller) Closed() bool {
	return c.ctx.Err() != nil
}

func (c *Controller) loadSession(params results.PageParams) error {
	session, err := c.backend.GetSession(c.ctx, params.Key(), feedback.IntentInstructorResult)
	if err != nil {
		c.report("session", err)
		return err
	}

	opening := c.tz.Format(session.SubmissionStartTimestamp.Time(), session.TimeZone)
	closing := c.tz.Format(session.SubmissionEndTimestamp.Time(), session.TimeZone)

	if !c.update(func(s *pageState) {
		s.session = *session
		s.openingTime = opening
		s.closingTime = closing
		s.sessionLoaded = true
	}) {
		return core.ErrPageClosed
	}

	c.tasks.Go(func() error { return c.loadSections(params) })
	c.tasks.Go(func() error { return c.loadQuestions(params) })
	c.tasks.Go(func() error { return c.loadNoResponseStudents(params) })
	return nil
}

func (c *Controller) loadSections(params results.PageParams) error {
	names, err := c.backend.GetSectionNames(c.ctx, params.CourseID)
	if err != nil {
		c.report("sections", err)
		return err
	}

	if !c.update(func(s *pageState) {
		for _, name := range names {
			if _, exists := s.sections[name]; exists {
				continue
			}
			s.sections[name] = &results.SectionEntry{Name: name}
			s.sectionOrder = append(s.sectionOrder, name)
		}
		s.sectionsLoaded = true
	}) {
		return core.ErrPageClosed
	}
	return nil
}

func (c *Controller) loadQuestions(params results.PageParams) error {
	questions, err := c.backend.GetQuestions(c.ctx, params.Key(), feedback.IntentInstructorResult)
	if err != nil {
		c.report("questions", err)
		return err
	}

	if !c.update(func(s *pageState) {
		for _, q := range questions {
			if _, exists := s.questions[q.FeedbackQuestionID]; exists {
				continue
			}
			s.questions[q.FeedbackQuestionID] = &results.QuestionEntry{Question: q}
			s.questionOrder = append(s.questionOrder, q.FeedbackQuestionID)
		}
		s.questionsLoaded = true
	}) {
		return core.ErrPageClosed
	}
	return nil
}

// loadNoResponseStudents is the one sequential chain: roster first, then the giver set
func (c *Controller) loadNoResponseStudents(params results.PageParams) error {
	roster, err := c.backend.GetStudents(c.ctx, params.Key(), feedback.IntentInstructorResult)
	if err != nil {
		c.report("students", err)
		return err
	}

	givers, err := c.backend.GetSubmittedGiverSet(c.ctx, params.Key(), feedback.IntentInstructorResult)
	if err != nil {
		c.report("submitted giver set", err)
		return err
	}

	missing := results.NoResponseStudents(roster, *givers)
	if !c.update(func(s *pageState) {
		s.noResponseStudents = missing
		s.noResponseLoaded = true
	}) {
		return core.ErrPageClosed
	}
	return nil
}

// update applies fn under the write lock unless the page has been closed
func (c *Controller) update(fn func(s *pageState)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx.Err() != nil {
		return false
	}
	fn(&c.state)
	return true
}

// report surfaces a failed call once through the status messenger.
// Failures caused by tearing the page down are not shown.
func (c *Controller) report(what string, err error) {
	if c.ctx.Err() != nil || errors.Is(err, context.Canceled) {
		c.logger.Debug("dropping %s failure after teardown: %v", what, err)
		return
	}
	c.logger.Warn("failed to load %s: %v", what, err)
	c.status.ShowErrorMessage(feedback.MessageOf(err))
}

// bind derives a request context that is also cancelled when the page closes
func (c *Controller) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}
