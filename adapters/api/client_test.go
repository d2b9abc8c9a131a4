package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionresults/domain/core"
	"sessionresults/domain/feedback"
	"sessionresults/internal/testkit"
)

func newTestClient(t *testing.T) (*Client, *testkit.TestKit) {
	t.Helper()
	kit := testkit.NewTestKit()
	t.Cleanup(kit.Close)

	client, err := NewClient(DefaultClientConfig(kit.URL()+"/"), nil)
	require.NoError(t, err)
	return client, kit
}

func TestClientConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultClientConfig("http://localhost:8081/webapi").Validate())

	var verr *ValidationError
	assert.ErrorAs(t, DefaultClientConfig("webapi").Validate(), &verr)
	assert.Equal(t, "BaseURL", verr.Field)

	cfg := DefaultClientConfig("http://localhost:8081")
	cfg.Timeout = 0
	assert.ErrorAs(t, cfg.Validate(), &verr)
	assert.Equal(t, "Timeout", verr.Field)
}

func TestClient_Reads(t *testing.T) {
	client, kit := newTestClient(t)
	ctx := context.Background()
	key := kit.Course.Key()

	session, err := client.GetSession(ctx, key, feedback.IntentInstructorResult)
	require.NoError(t, err)
	assert.Equal(t, "Mid-term Peer Feedback", session.FeedbackSessionName)
	assert.Equal(t, "Asia/Singapore", session.TimeZone)
	assert.False(t, session.SubmissionStartTimestamp.IsZero())

	sections, err := client.GetSectionNames(ctx, key.CourseID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tutorial 1", "Tutorial 2"}, sections)

	questions, err := client.GetQuestions(ctx, key, feedback.IntentInstructorResult)
	require.NoError(t, err)
	assert.Len(t, questions, 3)

	students, err := client.GetStudents(ctx, key, feedback.IntentInstructorResult)
	require.NoError(t, err)
	assert.Len(t, students, 4)

	givers, err := client.GetSubmittedGiverSet(ctx, key, feedback.IntentInstructorResult)
	require.NoError(t, err)
	assert.True(t, givers.Contains("alice@uni.edu"))

	results, err := client.GetResults(ctx, feedback.ResultQuery{Session: key, Intent: feedback.IntentInstructorResult, QuestionID: "q-text"})
	require.NoError(t, err)
	require.Len(t, results.Questions, 1)
	assert.Equal(t, "Bob wrote thorough tests.", results.Questions[0].AllResponses[0].Answer())

	reqs := kit.Backend.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, "/result", last.Path)
	assert.Equal(t, "INSTRUCTOR_RESULT", last.Query.Get("intent"))
	assert.Equal(t, "q-text", last.Query.Get("questionid"))
	assert.False(t, last.Query.Has("frgroupbysection"))
}

func TestClient_GetResults_InvalidScopeSkipsNetwork(t *testing.T) {
	client, kit := newTestClient(t)

	_, err := client.GetResults(context.Background(), feedback.ResultQuery{Session: kit.Course.Key()})
	assert.ErrorIs(t, err, core.ErrInvalidResultScope)
	assert.Zero(t, kit.Backend.Calls(http.MethodGet, PathResult))
}

func TestClient_PublishUnpublish(t *testing.T) {
	client, kit := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.PublishSession(ctx, kit.Course.Key()))
	assert.Equal(t, feedback.StatusPublished, kit.Backend.PublishStatus())

	require.NoError(t, client.UnpublishSession(ctx, kit.Course.Key()))
	assert.Equal(t, feedback.StatusNotPublished, kit.Backend.PublishStatus())

	reqs := kit.Backend.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, http.MethodDelete, reqs[1].Method)
	assert.False(t, reqs[0].Query.Has("intent"))
}

func TestClient_ServerErrorMessage(t *testing.T) {
	client, kit := newTestClient(t)
	kit.Backend.Fail(http.MethodGet, PathQuestions, http.StatusForbidden, "You are not authorized to view this session")

	_, err := client.GetQuestions(context.Background(), kit.Course.Key(), feedback.IntentInstructorResult)
	require.Error(t, err)

	var reqErr *feedback.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
	assert.Equal(t, "You are not authorized to view this session", reqErr.Message)
	assert.Equal(t, "You are not authorized to view this session", feedback.MessageOf(err))
}

func TestClient_NotFoundFromWrongSession(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetSession(context.Background(), feedback.SessionKey{CourseID: "CS2103T", SessionName: "Nope"}, feedback.IntentInstructorResult)
	require.Error(t, err)
	assert.Equal(t, "Feedback session is not found", feedback.MessageOf(err))
}

func TestClient_ContextCancelled(t *testing.T) {
	client, kit := newTestClient(t)
	release := kit.Backend.Hold(http.MethodGet, PathSession)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetSession(ctx, kit.Course.Key(), feedback.IntentInstructorResult)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message field", body: `{"message":"Session not found"}`, want: "Session not found"},
		{name: "nested error", body: `{"error":{"message":"Bad intent"}}`, want: "Bad intent"},
		{name: "plain text", body: "upstream unavailable", want: "upstream unavailable"},
		{name: "json without message", body: `{"code":1}`, want: "502 Bad Gateway"},
		{name: "empty", body: "", want: "502 Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body), "502 Bad Gateway"))
		})
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sectionNames": [`))
	}))
	defer srv.Close()

	client, err := NewClient(DefaultClientConfig(srv.URL), srv.Client())
	require.NoError(t, err)

	_, err = client.GetSectionNames(context.Background(), "CS2103T")
	require.Error(t, err)
	assert.Equal(t, "invalid response from server", feedback.MessageOf(err))
}
