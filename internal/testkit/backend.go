package testkit

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"

	"sessionresults/domain/feedback"
)

// Endpoint paths served by the fake backend
const (
	pathSession           = "/session"
	pathCourseSections    = "/course/sections"
	pathQuestions         = "/questions"
	pathStudents          = "/students"
	pathSubmittedGiverSet = "/session/submitted/giverset"
	pathResult            = "/result"
	pathSessionPublish    = "/session/publish"
)

// Failure is an injected error answer for one endpoint
type Failure struct {
	Status  int
	Message string
}

// RecordedRequest is one request the fake backend received
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
}

// FakeBackend serves a Course over the feedback backend API
type FakeBackend struct {
	mu       sync.Mutex
	course   *Course
	failures map[string]Failure
	holds    map[string]chan struct{}
	requests []RecordedRequest
	engine   *gin.Engine
}

// BackendOption customizes a FakeBackend
type BackendOption func(*gin.Engine)

// WithRequestLogging adds gin's request logger
func WithRequestLogging() BackendOption {
	return func(e *gin.Engine) {
		e.Use(gin.Logger())
	}
}

// NewFakeBackend creates a fake backend serving course
func NewFakeBackend(course *Course, opts ...BackendOption) *FakeBackend {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	b := &FakeBackend{
		course:   course,
		failures: make(map[string]Failure),
		holds:    make(map[string]chan struct{}),
		engine:   gin.New(),
	}

	b.engine.Use(gin.Recovery())
	for _, opt := range opts {
		opt(b.engine)
	}
	b.engine.Use(b.record, b.hold, b.injectFailure)

	b.engine.GET(pathSession, b.handleSession)
	b.engine.GET(pathCourseSections, b.handleSections)
	b.engine.GET(pathQuestions, b.handleQuestions)
	b.engine.GET(pathStudents, b.handleStudents)
	b.engine.GET(pathSubmittedGiverSet, b.handleGiverSet)
	b.engine.GET(pathResult, b.handleResult)
	b.engine.POST(pathSessionPublish, b.handlePublish)
	b.engine.DELETE(pathSessionPublish, b.handleUnpublish)

	return b
}

// Handler returns the HTTP handler of the backend
func (b *FakeBackend) Handler() http.Handler {
	return b.engine
}

// Fail makes every request to method+path answer with status and message
func (b *FakeBackend) Fail(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = Failure{Status: status, Message: message}
}

// Recover removes an injected failure
func (b *FakeBackend) Recover(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method+" "+path)
}

// Hold blocks requests to method+path until the returned release func is called
func (b *FakeBackend) Hold(method, path string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.holds[method+" "+path] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.holds, method+" "+path)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Calls counts received requests to method+path
func (b *FakeBackend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Requests returns a copy of every received request
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// PublishStatus returns the current publish status of the fixture session
func (b *FakeBackend) PublishStatus() feedback.PublishStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.course.Session.PublishStatus
}

// SetPublishStatus overrides the publish status of the fixture session
func (b *FakeBackend) SetPublishStatus(status feedback.PublishStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.course.Session.PublishStatus = status
}

func (b *FakeBackend) record(c *gin.Context) {
	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
	})
	b.mu.Unlock()
	c.Next()
}

func (b *FakeBackend) hold(c *gin.Context) {
	b.mu.Lock()
	ch, ok := b.holds[c.Request.Method+" "+c.Request.URL.Path]
	b.mu.Unlock()
	if ok {
		select {
		case <-ch:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	c.Next()
}

func (b *FakeBackend) injectFailure(c *gin.Context) {
	b.mu.Lock()
	failure, ok := b.failures[c.Request.Method+" "+c.Request.URL.Path]
	b.mu.Unlock()
	if ok {
		c.AbortWithStatusJSON(failure.Status, gin.H{"message": failure.Message})
		return
	}
	c.Next()
}

// session validates courseid/fsname and answers 404 when they do not match the fixture
func (b *FakeBackend) session(c *gin.Context) (*feedback.Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.course.Session
	if c.Query(feedback.ParamCourseID) != s.CourseID || c.Query(feedback.ParamSessionName) != s.FeedbackSessionName {
		c.JSON(http.StatusNotFound, gin.H{"message": "Feedback session is not found"})
		return nil, false
	}
	return &s, true
}

func (b *FakeBackend) handleSession(c *gin.Context) {
	s, ok := b.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s)
}

func (b *FakeBackend) handleSections(c *gin.Context) {
	if c.Query(feedback.ParamCourseID) != b.course.Session.CourseID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Course is not found"})
		return
	}
	c.JSON(http.StatusOK, feedback.SectionNames{SectionNames: b.course.Sections})
}

func (b *FakeBackend) handleQuestions(c *gin.Context) {
	if _, ok := b.session(c); !ok {
		return
	}
	c.JSON(http.StatusOK, feedback.Questions{Questions: b.course.Questions})
}

func (b *FakeBackend) handleStudents(c *gin.Context) {
	if _, ok := b.session(c); !ok {
		return
	}
	c.JSON(http.StatusOK, feedback.Students{Students: b.course.Students})
}

func (b *FakeBackend) handleGiverSet(c *gin.Context) {
	if _, ok := b.session(c); !ok {
		return
	}
	c.JSON(http.StatusOK, feedback.SubmittedGiverSet{GiverIdentifiers: b.course.Givers})
}

func (b *FakeBackend) handleResult(c *gin.Context) {
	if _, ok := b.session(c); !ok {
		return
	}

	questionID := c.Query(feedback.ParamQuestionID)
	section := c.Query(feedback.ParamGroupBySection)
	switch {
	case questionID != "" && section == "":
		c.JSON(http.StatusOK, b.course.QuestionResults(questionID))
	case section != "" && questionID == "":
		c.JSON(http.StatusOK, b.course.SectionResults(section))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Exactly one of questionid or frgroupbysection is required"})
	}
}

func (b *FakeBackend) handlePublish(c *gin.Context) {
	b.setPublished(c, feedback.StatusPublished)
}

func (b *FakeBackend) handleUnpublish(c *gin.Context) {
	b.setPublished(c, feedback.StatusNotPublished)
}

func (b *FakeBackend) setPublished(c *gin.Context, status feedback.PublishStatus) {
	if _, ok := b.session(c); !ok {
		return
	}
	b.mu.Lock()
	b.course.Session.PublishStatus = status
	s := b.course.Session
	b.mu.Unlock()
	c.JSON(http.StatusOK, s)
}
