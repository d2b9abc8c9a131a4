package feedback

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"sessionresults/domain/core"
)

// Intent tells the backend which role is asking for the data
type Intent string

const (
	IntentInstructorResult Intent = "INSTRUCTOR_RESULT"
)

// PublishStatus is the publish state of a feedback session's results
type PublishStatus string

const (
	StatusNotPublished PublishStatus = "NOT_PUBLISHED"
	StatusPublished    PublishStatus = "PUBLISHED"
)

// IsPublished reports whether results are visible to students
func (s PublishStatus) IsPublished() bool {
	return s == StatusPublished
}

// Toggled returns the status after a successful publish or unpublish
func (s PublishStatus) Toggled() PublishStatus {
	if s.IsPublished() {
		return StatusNotPublished
	}
	return StatusPublished
}

// Session is the feedback session metadata returned by GET /session
type Session struct {
	CourseID                 string           `json:"courseId"`
	FeedbackSessionName      string           `json:"feedbackSessionName"`
	Instructions             string           `json:"instructions,omitempty"`
	TimeZone                 string           `json:"timeZone"`
	SubmissionStartTimestamp core.EpochMillis `json:"submissionStartTimestamp"`
	SubmissionEndTimestamp   core.EpochMillis `json:"submissionEndTimestamp"`
	SubmissionStatus         string           `json:"submissionStatus,omitempty"`
	PublishStatus            PublishStatus    `json:"publishStatus"`
	CreatedAtTimestamp       core.EpochMillis `json:"createdAtTimestamp,omitempty"`
}

// Key returns the course/session identity of the session
func (s Session) Key() SessionKey {
	return SessionKey{CourseID: s.CourseID, SessionName: s.FeedbackSessionName}
}

// SectionNames is the payload of GET /course/sections
type SectionNames struct {
	SectionNames []string `json:"sectionNames"`
}

// QuestionDetails carries the type-specific question settings
type QuestionDetails struct {
	QuestionType string `json:"questionType"`
	QuestionText string `json:"questionText"`
}

// Question is a feedback question as listed by GET /questions
type Question struct {
	FeedbackQuestionID  string          `json:"feedbackQuestionId"`
	QuestionNumber      int             `json:"questionNumber"`
	QuestionBrief       string          `json:"questionBrief"`
	QuestionDescription string          `json:"questionDescription,omitempty"`
	QuestionDetails     QuestionDetails `json:"questionDetails"`
	QuestionType        string          `json:"questionType"`
	GiverType           string          `json:"giverType"`
	RecipientType       string          `json:"recipientType"`
}

// Questions is the payload of GET /questions
type Questions struct {
	Questions []Question `json:"questions"`
}

// Student is one enrolled student of the course roster
type Student struct {
	Email       string `json:"email"`
	CourseID    string `json:"courseId"`
	Name        string `json:"name"`
	TeamName    string `json:"teamName"`
	SectionName string `json:"sectionName"`
	Comments    string `json:"comments,omitempty"`
	JoinState   string `json:"joinState,omitempty"`
}

// Students is the payload of GET /students
type Students struct {
	Students []Student `json:"students"`
}

// SubmittedGiverSet is the payload of GET /session/submitted/giverset
type SubmittedGiverSet struct {
	GiverIdentifiers []string `json:"giverIdentifiers"`
}

// Contains reports whether identifier has submitted
func (s SubmittedGiverSet) Contains(identifier string) bool {
	for _, id := range s.GiverIdentifiers {
		if id == identifier {
			return true
		}
	}
	return false
}

// Response is one feedback response inside a result payload
type Response struct {
	ResponseID       string          `json:"responseId"`
	Giver            string          `json:"giver"`
	GiverTeam        string          `json:"giverTeam"`
	GiverSection     string          `json:"giverSection"`
	Recipient        string          `json:"recipient"`
	RecipientTeam    string          `json:"recipientTeam"`
	RecipientSection string          `json:"recipientSection"`
	ResponseDetails  json.RawMessage `json:"responseDetails,omitempty"`
}

// Answer renders the type-dependent response details as display text.
// Text-like answers carry an "answer" field; other question types fall back to the raw JSON.
func (r Response) Answer() string {
	if len(r.ResponseDetails) == 0 {
		return ""
	}
	answer := gjson.GetBytes(r.ResponseDetails, "answer")
	if !answer.Exists() {
		return string(r.ResponseDetails)
	}
	if answer.IsArray() {
		parts := make([]string, 0, len(answer.Array()))
		for _, item := range answer.Array() {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, ", ")
	}
	return answer.String()
}

// QuestionResult bundles a question with its responses and statistics
type QuestionResult struct {
	FeedbackQuestion   Question   `json:"feedbackQuestion"`
	QuestionStatistics string     `json:"questionStatistics"`
	AllResponses       []Response `json:"allResponses"`
}

// SessionResults is the payload of GET /result
type SessionResults struct {
	Questions []QuestionResult `json:"questions"`
}
