package testkit

import (
	"net/http/httptest"
)

// TestKit runs the fake backend on a local test server
type TestKit struct {
	Course  *Course
	Backend *FakeBackend
	Server  *httptest.Server
}

// NewTestKit starts a fake backend serving the demo course
func NewTestKit(opts ...BackendOption) *TestKit {
	course := NewCourse()
	backend := NewFakeBackend(course, opts...)
	return &TestKit{
		Course:  course,
		Backend: backend,
		Server:  httptest.NewServer(backend.Handler()),
	}
}

// URL returns the backend base URL
func (k *TestKit) URL() string {
	return k.Server.URL
}

// Close shuts the test server down
func (k *TestKit) Close() {
	k.Server.CloseClientConnections()
	k.Server.Close()
}
