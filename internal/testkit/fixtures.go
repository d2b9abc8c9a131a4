package testkit

import (
	"encoding/json"
	"time"

	"sessionresults/domain/core"
	"sessionresults/domain/feedback"
)

// Course is an in-memory course with one feedback session and its results
type Course struct {
	Session   feedback.Session
	Sections  []string
	Questions []feedback.Question
	Students  []feedback.Student
	Givers    []string
	Responses map[string][]feedback.Response // keyed by question id
	Stats     map[string]string              // keyed by question id
}

// Key returns the session key of the fixture session
func (c *Course) Key() feedback.SessionKey {
	return c.Session.Key()
}

// QuestionResults builds the /result payload for one question
func (c *Course) QuestionResults(questionID string) feedback.SessionResults {
	for _, q := range c.Questions {
		if q.FeedbackQuestionID == questionID {
			return feedback.SessionResults{Questions: []feedback.QuestionResult{{
				FeedbackQuestion:   q,
				QuestionStatistics: c.Stats[questionID],
				AllResponses:       append([]feedback.Response(nil), c.Responses[questionID]...),
			}}}
		}
	}
	return feedback.SessionResults{Questions: []feedback.QuestionResult{}}
}

// SectionResults builds the /result payload for one section.
// A response belongs to the section when its giver or recipient is in it.
func (c *Course) SectionResults(section string) feedback.SessionResults {
	out := feedback.SessionResults{Questions: []feedback.QuestionResult{}}
	for _, q := range c.Questions {
		var responses []feedback.Response
		for _, r := range c.Responses[q.FeedbackQuestionID] {
			if r.GiverSection == section || r.RecipientSection == section {
				responses = append(responses, r)
			}
		}
		if len(responses) == 0 {
			continue
		}
		out.Questions = append(out.Questions, feedback.QuestionResult{
			FeedbackQuestion:   q,
			QuestionStatistics: c.Stats[q.FeedbackQuestionID],
			AllResponses:       responses,
		})
	}
	return out
}

func details(v map[string]interface{}) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}

// NewCourse returns the demo course used by the fake backend and tests
func NewCourse() *Course {
	opening := time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC)
	closing := time.Date(2024, 3, 11, 15, 59, 0, 0, time.UTC)

	students := []feedback.Student{
		{Email: "alice@uni.edu", CourseID: "CS2103T", Name: "Alice Tan", TeamName: "Team 1", SectionName: "Tutorial 1", JoinState: "JOINED"},
		{Email: "bob@uni.edu", CourseID: "CS2103T", Name: "Bob Lim", TeamName: "Team 1", SectionName: "Tutorial 1", JoinState: "JOINED"},
		{Email: "carol@uni.edu", CourseID: "CS2103T", Name: "Carol Ng", TeamName: "Team 2", SectionName: "Tutorial 2", JoinState: "JOINED"},
		{Email: "dan@uni.edu", CourseID: "CS2103T", Name: "Dan Wong", TeamName: "Team 2", SectionName: "Tutorial 2", JoinState: "NOT_JOINED"},
	}

	questions := []feedback.Question{
		{
			FeedbackQuestionID:  "q-text",
			QuestionNumber:      1,
			QuestionBrief:       "What did your teammate do well?",
			QuestionDescription: "Comment on **specific** contributions.",
			QuestionDetails:     feedback.QuestionDetails{QuestionType: "TEXT", QuestionText: "What did your teammate do well?"},
			QuestionType:        "TEXT",
			GiverType:           "STUDENTS",
			RecipientType:       "OWN_TEAM_MEMBERS",
		},
		{
			FeedbackQuestionID: "q-scale",
			QuestionNumber:     2,
			QuestionBrief:      "Rate your teammate's contribution",
			QuestionDetails:    feedback.QuestionDetails{QuestionType: "NUMSCALE", QuestionText: "Rate your teammate's contribution"},
			QuestionType:       "NUMSCALE",
			GiverType:          "STUDENTS",
			RecipientType:      "OWN_TEAM_MEMBERS",
		},
		{
			FeedbackQuestionID: "q-mcq",
			QuestionNumber:     3,
			QuestionBrief:      "Which part of the project was hardest?",
			QuestionDetails:    feedback.QuestionDetails{QuestionType: "MCQ", QuestionText: "Which part of the project was hardest?"},
			QuestionType:       "MCQ",
			GiverType:          "STUDENTS",
			RecipientType:      "NONE",
		},
	}

	responses := map[string][]feedback.Response{
		"q-text": {
			{ResponseID: "r-1", Giver: "alice@uni.edu", GiverTeam: "Team 1", GiverSection: "Tutorial 1", Recipient: "bob@uni.edu", RecipientTeam: "Team 1", RecipientSection: "Tutorial 1",
				ResponseDetails: details(map[string]interface{}{"questionType": "TEXT", "answer": "Bob wrote thorough tests."})},
			{ResponseID: "r-2", Giver: "carol@uni.edu", GiverTeam: "Team 2", GiverSection: "Tutorial 2", Recipient: "dan@uni.edu", RecipientTeam: "Team 2", RecipientSection: "Tutorial 2",
				ResponseDetails: details(map[string]interface{}{"questionType": "TEXT", "answer": "Dan kept the backlog groomed."})},
		},
		"q-scale": {
			{ResponseID: "r-3", Giver: "alice@uni.edu", GiverTeam: "Team 1", GiverSection: "Tutorial 1", Recipient: "bob@uni.edu", RecipientTeam: "Team 1", RecipientSection: "Tutorial 1",
				ResponseDetails: details(map[string]interface{}{"questionType": "NUMSCALE", "answer": 4})},
			{ResponseID: "r-4", Giver: "carol@uni.edu", GiverTeam: "Team 2", GiverSection: "Tutorial 2", Recipient: "dan@uni.edu", RecipientTeam: "Team 2", RecipientSection: "Tutorial 2",
				ResponseDetails: details(map[string]interface{}{"questionType": "NUMSCALE", "answer": 5})},
		},
		"q-mcq": {
			{ResponseID: "r-5", Giver: "alice@uni.edu", GiverTeam: "Team 1", GiverSection: "Tutorial 1", Recipient: "%GENERAL%", RecipientSection: "None",
				ResponseDetails: details(map[string]interface{}{"questionType": "MCQ", "answer": "Integration"})},
		},
	}

	return &Course{
		Session: feedback.Session{
			CourseID:                 "CS2103T",
			FeedbackSessionName:      "Mid-term Peer Feedback",
			Instructions:             "Please be constructive.",
			TimeZone:                 "Asia/Singapore",
			SubmissionStartTimestamp: core.NewEpochMillis(opening),
			SubmissionEndTimestamp:   core.NewEpochMillis(closing),
			SubmissionStatus:         "CLOSED",
			PublishStatus:            feedback.StatusNotPublished,
		},
		Sections:  []string{"Tutorial 1", "Tutorial 2"},
		Questions: questions,
		Students:  students,
		Givers:    []string{"alice@uni.edu", "carol@uni.edu"},
		Responses: responses,
		Stats: map[string]string{
			"q-scale": `{"average":4.5,"min":4,"max":5}`,
		},
	}
}
