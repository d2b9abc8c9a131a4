package feedback

import (
	"net/url"

	"sessionresults/domain/core"
)

// Query parameter names understood by the backend
const (
	ParamCourseID       = "courseid"
	ParamSessionName    = "fsname"
	ParamIntent         = "intent"
	ParamQuestionID     = "questionid"
	ParamGroupBySection = "frgroupbysection"
)

// SessionKey identifies a feedback session within a course
type SessionKey struct {
	CourseID    string
	SessionName string
}

// Params encodes the key as backend query parameters
func (k SessionKey) Params() url.Values {
	v := url.Values{}
	v.Set(ParamCourseID, k.CourseID)
	v.Set(ParamSessionName, k.SessionName)
	return v
}

// WithIntent encodes the key plus the caller intent
func (k SessionKey) WithIntent(intent Intent) url.Values {
	v := k.Params()
	v.Set(ParamIntent, string(intent))
	return v
}

// ResultQuery scopes a GET /result call to one question or one section
type ResultQuery struct {
	Session    SessionKey
	Intent     Intent
	QuestionID string
	Section    string
}

// Validate enforces that exactly one scope is set
func (q ResultQuery) Validate() error {
	if (q.QuestionID == "") == (q.Section == "") {
		return core.ErrInvalidResultScope
	}
	return nil
}

// Params encodes the query as backend query parameters
func (q ResultQuery) Params() (url.Values, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	v := q.Session.WithIntent(q.Intent)
	if q.QuestionID != "" {
		v.Set(ParamQuestionID, q.QuestionID)
	} else {
		v.Set(ParamGroupBySection, q.Section)
	}
	return v, nil
}
