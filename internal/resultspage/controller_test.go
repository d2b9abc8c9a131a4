package resultspage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sessionresults/domain/core"
	"sessionresults/domain/feedback"
)

func waitInit(t *testing.T, c *Controller) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := c.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "initialization did not finish")
	return err
}

func apiError(path, message string) error {
	return &feedback.RequestError{Method: "GET", Path: path, StatusCode: 500, Message: message}
}

func TestInit_LoadsEveryPanel(t *testing.T) {
	f := newFixture()
	expectInit(f.backend, feedback.StatusNotPublished)

	f.ctrl.Init(testParams)
	require.NoError(t, waitInit(t, f.ctrl))

	assert.True(t, f.ctrl.Settled())
	view := f.ctrl.Snapshot()
	assert.True(t, view.FullyLoaded())
	assert.Equal(t, testParams, view.Params)
	assert.Equal(t, "Week 1 Feedback", view.Session.FeedbackSessionName)
	assert.Equal(t, "Asia/Singapore 2024-01-08T00:00:00Z", view.FormattedOpeningTime)
	assert.Equal(t, "Asia/Singapore 2024-01-15T00:00:00Z", view.FormattedClosingTime)

	require.Len(t, view.Sections, 2)
	for _, s := range view.Sections {
		assert.False(t, s.Populated)
		assert.Empty(t, s.Questions)
	}
	assert.Equal(t, "Section A", view.Sections[0].Name)

	require.Len(t, view.Questions, 2)
	for _, q := range view.Questions {
		assert.False(t, q.Populated)
		assert.Empty(t, q.Responses)
	}
	assert.Equal(t, "q-1", view.Questions[0].ID())

	require.Len(t, view.NoResponseStudents, 2)
	assert.Equal(t, "b@x", view.NoResponseStudents[0].Email)
	assert.Equal(t, "c@x", view.NoResponseStudents[1].Email)

	assert.Empty(t, f.messenger.Messages())
	f.backend.AssertExpectations(t)
}

func TestInit_OnlyOnce(t *testing.T) {
	f := newFixture()
	expectInit(f.backend, feedback.StatusNotPublished)

	f.ctrl.Init(testParams)
	f.ctrl.Init(testParams)
	require.NoError(t, waitInit(t, f.ctrl))

	f.backend.AssertNumberOfCalls(t, "GetSession", 1)
}

func TestInit_DuplicateKeysCollapse(t *testing.T) {
	f := newFixture()
	intent := feedback.IntentInstructorResult
	f.backend.On("GetSession", mock.Anything, testKey, intent).Return(testSession(feedback.StatusNotPublished), nil)
	f.backend.On("GetSectionNames", mock.Anything, testKey.CourseID).Return([]string{"Section A", "Section A"}, nil)
	f.backend.On("GetQuestions", mock.Anything, testKey, intent).Return(append(testQuestions(), testQuestions()[0]), nil)
	f.backend.On("GetStudents", mock.Anything, testKey, intent).Return(testRoster(), nil)
	f.backend.On("GetSubmittedGiverSet", mock.Anything, testKey, intent).Return(&feedback.SubmittedGiverSet{}, nil)

	f.ctrl.Init(testParams)
	require.NoError(t, waitInit(t, f.ctrl))

	view := f.ctrl.Snapshot()
	assert.Len(t, view.Sections, 1)
	assert.Len(t, view.Questions, 2)
	assert.Len(t, view.NoResponseStudents, 3)
}

func TestInit_SessionFailureStopsEverything(t *testing.T) {
	f := newFixture()
	f.backend.On("GetSession", mock.Anything, testKey, feedback.IntentInstructorResult).
		Return(nil, apiError("/session", "Feedback session is not found"))

	f.ctrl.Init(testParams)
	err := waitInit(t, f.ctrl)
	require.Error(t, err)

	assert.Equal(t, []string{"Feedback session is not found"}, f.messenger.Messages())
	view := f.ctrl.Snapshot()
	assert.False(t, view.SessionLoaded)
	assert.False(t, view.SectionsLoaded)
	assert.False(t, view.QuestionsLoaded)
	assert.False(t, view.NoResponsePanelLoaded)

	f.backend.AssertNotCalled(t, "GetSectionNames", mock.Anything, mock.Anything)
	f.backend.AssertNotCalled(t, "GetQuestions", mock.Anything, mock.Anything, mock.Anything)
	f.backend.AssertNotCalled(t, "GetStudents", mock.Anything, mock.Anything, mock.Anything)
}

func TestInit_FailuresDoNotAbortSiblings(t *testing.T) {
	tests := []struct {
		name        string
		failing     string
		message     string
		sections    bool
		questions   bool
		noResponses bool
	}{
		{name: "sections", failing: "GetSectionNames", message: "Course has no sections", questions: true, noResponses: true},
		{name: "questions", failing: "GetQuestions", message: "Questions unavailable", sections: true, noResponses: true},
		{name: "students", failing: "GetStudents", message: "Roster unavailable", sections: true, questions: true},
		{name: "giver set", failing: "GetSubmittedGiverSet", message: "Giver set unavailable", sections: true, questions: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			intent := feedback.IntentInstructorResult
			failure := apiError("/x", tt.message)

			f.backend.On("GetSession", mock.Anything, testKey, intent).Return(testSession(feedback.StatusNotPublished), nil)
			if tt.failing == "GetSectionNames" {
				f.backend.On("GetSectionNames", mock.Anything, testKey.CourseID).Return(nil, failure)
			} else {
				f.backend.On("GetSectionNames", mock.Anything, testKey.CourseID).Return([]string{"Section A"}, nil)
			}
			if tt.failing == "GetQuestions" {
				f.backend.On("GetQuestions", mock.Anything, testKey, intent).Return(nil, failure)
			} else {
				f.backend.On("GetQuestions", mock.Anything, testKey, intent).Return(testQuestions(), nil)
			}
			if tt.failing == "GetStudents" {
				f.backend.On("GetStudents", mock.Anything, testKey, intent).Return(nil, failure)
			} else {
				f.backend.On("GetStudents", mock.Anything, testKey, intent).Return(testRoster(), nil)
			}
			if tt.failing == "GetSubmittedGiverSet" {
				f.backend.On("GetSubmittedGiverSet", mock.Anything, testKey, intent).Return(nil, failure)
			} else {
				f.backend.On("GetSubmittedGiverSet", mock.Anything, testKey, intent).Return(&feedback.SubmittedGiverSet{GiverIdentifiers: []string{"a@x"}}, nil)
			}

			f.ctrl.Init(testParams)
			err := waitInit(t, f.ctrl)
			assert.Error(t, err)

			view := f.ctrl.Snapshot()
			assert.True(t, view.SessionLoaded)
			assert.Equal(t, tt.sections, view.SectionsLoaded)
			assert.Equal(t, tt.questions, view.QuestionsLoaded)
			assert.Equal(t, tt.noResponses, view.NoResponsePanelLoaded)
			assert.Equal(t, []string{tt.message}, f.messenger.Messages())

			if tt.failing == "GetStudents" {
				f.backend.AssertNotCalled(t, "GetSubmittedGiverSet", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestClose_DropsLateResponses(t *testing.T) {
	f := newFixture()
	intent := feedback.IntentInstructorResult
	started := make(chan struct{})

	f.backend.On("GetSession", mock.Anything, testKey, intent).Return(testSession(feedback.StatusNotPublished), nil)
	f.backend.On("GetSectionNames", mock.Anything, testKey.CourseID).Return([]string{"Section A"}, nil)
	f.backend.On("GetQuestions", mock.Anything, testKey, intent).Return(testQuestions(), nil)
	f.backend.On("GetStudents", mock.Anything, testKey, intent).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			close(started)
			<-ctx.Done()
		}).
		Return(nil, context.Canceled)

	f.ctrl.Init(testParams)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("roster fetch never started")
	}
	f.ctrl.Close()
	_ = waitInit(t, f.ctrl)

	assert.True(t, f.ctrl.Closed())
	assert.False(t, f.ctrl.Snapshot().NoResponsePanelLoaded)
	assert.Empty(t, f.messenger.Messages())
	f.backend.AssertNotCalled(t, "GetSubmittedGiverSet", mock.Anything, mock.Anything, mock.Anything)
}

func TestWait_BeforeInitReturnsImmediately(t *testing.T) {
	f := newFixture()
	assert.NoError(t, f.ctrl.Wait(context.Background()))
	assert.False(t, f.ctrl.Settled())
}

func TestWait_RespectsContext(t *testing.T) {
	f := newFixture()
	release := make(chan struct{})
	f.backend.On("GetSession", mock.Anything, testKey, feedback.IntentInstructorResult).
		Run(func(mock.Arguments) { <-release }).
		Return(nil, errors.New("late"))
	defer close(release)

	f.ctrl.Init(testParams)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.ctrl.Wait(ctx), context.DeadlineExceeded)
	assert.False(t, f.ctrl.Settled())
}

func TestSnapshot_IsACopy(t *testing.T) {
	f := newFixture()
	expectInit(f.backend, feedback.StatusNotPublished)
	f.ctrl.Init(testParams)
	require.NoError(t, waitInit(t, f.ctrl))

	view := f.ctrl.Snapshot()
	view.Questions[0].Populated = true
	view.NoResponseStudents[0].Email = "mutated@x"

	again := f.ctrl.Snapshot()
	assert.False(t, again.Questions[0].Populated)
	assert.Equal(t, "b@x", again.NoResponseStudents[0].Email)
}

func TestPublishPrompt_RequiresSession(t *testing.T) {
	f := newFixture()
	_, err := f.ctrl.PublishPrompt()
	assert.ErrorIs(t, err, core.ErrSessionNotLoaded)
}

// concurrently runs fn n times and waits for all
func concurrently(n int, fn func()) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	wg.Wait()
}
