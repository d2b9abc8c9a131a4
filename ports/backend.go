package ports

import (
	"context"

	"sessionresults/domain/feedback"
)

// FeedbackBackend is the typed client of the feedback backend API
type FeedbackBackend interface {
	// GetSession fetches session metadata (GET /session)
	GetSession(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) (*feedback.Session, error)

	// GetSectionNames fetches the section names of a course (GET /course/sections)
	GetSectionNames(ctx context.Context, courseID string) ([]string, error)

	// GetQuestions fetches the questions of a session (GET /questions)
	GetQuestions(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) ([]feedback.Question, error)

	// GetStudents fetches the course roster (GET /students)
	GetStudents(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) ([]feedback.Student, error)

	// GetSubmittedGiverSet fetches who has submitted (GET /session/submitted/giverset)
	GetSubmittedGiverSet(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) (*feedback.SubmittedGiverSet, error)

	// GetResults fetches results scoped to one question or one section (GET /result)
	GetResults(ctx context.Context, query feedback.ResultQuery) (*feedback.SessionResults, error)

	// PublishSession publishes results (POST /session/publish)
	PublishSession(ctx context.Context, key feedback.SessionKey) error

	// UnpublishSession unpublishes results (DELETE /session/publish)
	UnpublishSession(ctx context.Context, key feedback.SessionKey) error
}
