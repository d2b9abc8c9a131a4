package resultspage

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"sessionresults/domain/core"
	"sessionresults/domain/feedback"
	"sessionresults/domain/results"
)

// MockBackend is a testify mock of ports.FeedbackBackend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) GetSession(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) (*feedback.Session, error) {
	args := m.Called(ctx, key, intent)
	s, _ := args.Get(0).(*feedback.Session)
	return s, args.Error(1)
}

func (m *MockBackend) GetSectionNames(ctx context.Context, courseID string) ([]string, error) {
	args := m.Called(ctx, courseID)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockBackend) GetQuestions(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) ([]feedback.Question, error) {
	args := m.Called(ctx, key, intent)
	qs, _ := args.Get(0).([]feedback.Question)
	return qs, args.Error(1)
}

func (m *MockBackend) GetStudents(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) ([]feedback.Student, error) {
	args := m.Called(ctx, key, intent)
	students, _ := args.Get(0).([]feedback.Student)
	return students, args.Error(1)
}

func (m *MockBackend) GetSubmittedGiverSet(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) (*feedback.SubmittedGiverSet, error) {
	args := m.Called(ctx, key, intent)
	set, _ := args.Get(0).(*feedback.SubmittedGiverSet)
	return set, args.Error(1)
}

func (m *MockBackend) GetResults(ctx context.Context, query feedback.ResultQuery) (*feedback.SessionResults, error) {
	args := m.Called(ctx, query)
	res, _ := args.Get(0).(*feedback.SessionResults)
	return res, args.Error(1)
}

func (m *MockBackend) PublishSession(ctx context.Context, key feedback.SessionKey) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockBackend) UnpublishSession(ctx context.Context, key feedback.SessionKey) error {
	return m.Called(ctx, key).Error(0)
}

// recordingMessenger collects status messages
type recordingMessenger struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingMessenger) ShowErrorMessage(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
}

func (r *recordingMessenger) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// recordingNavigator collects navigation targets
type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingNavigator) NavigateTo(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingNavigator) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// zoneEchoFormatter renders "<zone> <RFC3339 in UTC>" so tests can check which zone was used
type zoneEchoFormatter struct{}

func (zoneEchoFormatter) Format(t time.Time, zone string) string {
	return zone + " " + t.UTC().Format(time.RFC3339)
}

// scriptedDialog answers Confirm with a fixed decision and remembers the prompt
type scriptedDialog struct {
	confirm bool
	prompts []results.PublishPrompt
}

func (d *scriptedDialog) Confirm(ctx context.Context, prompt results.PublishPrompt) bool {
	d.prompts = append(d.prompts, prompt)
	return d.confirm
}

var (
	testParams = results.PageParams{CourseID: "CS101", SessionName: "Week 1 Feedback"}
	testKey    = testParams.Key()
)

func testSession(status feedback.PublishStatus) *feedback.Session {
	return &feedback.Session{
		CourseID:                 testParams.CourseID,
		FeedbackSessionName:      testParams.SessionName,
		TimeZone:                 "Asia/Singapore",
		SubmissionStartTimestamp: core.NewEpochMillis(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)),
		SubmissionEndTimestamp:   core.NewEpochMillis(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		PublishStatus:            status,
	}
}

func testQuestions() []feedback.Question {
	return []feedback.Question{
		{FeedbackQuestionID: "q-1", QuestionNumber: 1, QuestionBrief: "Strengths"},
		{FeedbackQuestionID: "q-2", QuestionNumber: 2, QuestionBrief: "Rating"},
	}
}

func testRoster() []feedback.Student {
	return []feedback.Student{
		{Email: "a@x", Name: "A"},
		{Email: "b@x", Name: "B"},
		{Email: "c@x", Name: "C"},
	}
}

// expectInit wires the happy path of every initialization call
func expectInit(m *MockBackend, status feedback.PublishStatus) {
	intent := feedback.IntentInstructorResult
	m.On("GetSession", mock.Anything, testKey, intent).Return(testSession(status), nil)
	m.On("GetSectionNames", mock.Anything, testKey.CourseID).Return([]string{"Section A", "Section B"}, nil)
	m.On("GetQuestions", mock.Anything, testKey, intent).Return(testQuestions(), nil)
	m.On("GetStudents", mock.Anything, testKey, intent).Return(testRoster(), nil)
	m.On("GetSubmittedGiverSet", mock.Anything, testKey, intent).Return(&feedback.SubmittedGiverSet{GiverIdentifiers: []string{"a@x"}}, nil)
}

type fixture struct {
	backend   *MockBackend
	messenger *recordingMessenger
	navigator *recordingNavigator
	ctrl      *Controller
}

func newFixture() *fixture {
	f := &fixture{
		backend:   &MockBackend{},
		messenger: &recordingMessenger{},
		navigator: &recordingNavigator{},
	}
	f.ctrl = NewController(context.Background(), Dependencies{
		Backend:   f.backend,
		Status:    f.messenger,
		Timezone:  zoneEchoFormatter{},
		Navigator: f.navigator,
	})
	return f
}
