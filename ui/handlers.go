package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"sessionresults/domain/core"
	"sessionresults/domain/feedback"
	"sessionresults/domain/results"
	apperrors "sessionresults/internal/errors"
	"sessionresults/internal/resultspage"
)

// pageData is what page and panel templates render
type pageData struct {
	Base     string
	View     results.PageView
	Options  results.ViewOptions
	Sections []results.SectionEntry
	Settled  bool
	Messages []string
}

type questionData struct {
	Base     string
	Entry    results.QuestionEntry
	Options  results.ViewOptions
	Groups   []results.ResponseGroup
	Messages []string
}

type sectionQuestion struct {
	Result feedback.QuestionResult
	Groups []results.ResponseGroup
}

type sectionData struct {
	Base      string
	Section   results.SectionEntry
	Options   results.ViewOptions
	Questions []sectionQuestion
	Messages  []string
}

type publishData struct {
	Base     string
	Prompt   results.PublishPrompt
	Messages []string
}

var panelTemplates = map[string]string{
	"session":    "panel_session",
	"sections":   "panel_sections",
	"questions":  "panel_questions",
	"noresponse": "panel_noresponse",
	"messages":   "panel_messages",
}

// handleSessions renders the sessions landing page
func (a *App) handleSessions(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "sessions.html", map[string]interface{}{
		"ResultsPath": ResultsPath,
	})
}

// handleOpenResults opens a new results page, waits briefly for the first fetches and renders it
func (a *App) handleOpenResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := results.PageParams{
		CourseID:    strings.TrimSpace(q.Get(feedback.ParamCourseID)),
		SessionName: strings.TrimSpace(q.Get(feedback.ParamSessionName)),
	}
	if params.CourseID == "" || params.SessionName == "" {
		a.writeError(w, apperrors.InvalidInput("courseid and fsname are required"))
		return
	}
	opts, err := results.ParseViewOptions(q)
	if err != nil {
		a.writeError(w, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}

	page := a.newPage(opts)
	id, err := a.pages.Put(page)
	if err != nil {
		a.writeError(w, apperrors.Wrap(err, "failed to open results page"))
		return
	}
	page.ID = id
	page.Controller.Init(params)

	ctx, cancel := context.WithTimeout(r.Context(), a.config.RenderWait)
	defer cancel()
	if err := page.Controller.Wait(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.logger.Debug("page %s opened with failures: %v", id, err)
	}

	a.renderTemplate(w, http.StatusOK, "page.html", a.pageData(page))
}

func (a *App) newPage(opts results.ViewOptions) *Page {
	page := &Page{
		Options: opts,
		flash:   &FlashMessenger{},
		nav:     &PendingNavigator{},
	}
	// the controller outlives the request that opened it
	page.Controller = resultspage.NewController(context.Background(), resultspage.Dependencies{
		Backend:   a.backend,
		Status:    page.flash,
		Timezone:  a.timezone,
		Navigator: page.nav,
		Logger:    a.logger,
	})
	return page
}

func (a *App) pageData(page *Page) pageData {
	view := page.Controller.Snapshot()
	return pageData{
		Base:     pageBase(page.ID),
		View:     view,
		Options:  page.Options,
		Sections: page.Options.VisibleSections(view.Sections),
		Settled:  page.Controller.Settled(),
		Messages: page.flash.Drain(),
	}
}

// handlePanel renders one panel of the page. Panels that are still loading poll themselves.
func (a *App) handlePanel(w http.ResponseWriter, r *http.Request) {
	page, ok := a.lookupPage(w, r)
	if !ok {
		return
	}
	name, ok := panelTemplates[chi.URLParam(r, "panel")]
	if !ok {
		a.writeError(w, apperrors.NotFound("panel"))
		return
	}
	a.renderTemplate(w, http.StatusOK, name, a.pageData(page))
}

// handleQuestion loads the responses of one question and renders its detail
func (a *App) handleQuestion(w http.ResponseWriter, r *http.Request) {
	page, ok := a.lookupPage(w, r)
	if !ok {
		return
	}
	id := pathParam(r, "id")

	if err := page.Controller.LoadQuestion(r.Context(), id); err != nil && core.IsNotFoundError(err) {
		a.writeError(w, apperrors.WithCode(apperrors.CodeNotFound, err))
		return
	}

	entry, _ := page.Controller.Snapshot().Question(id)
	responses := entry.Responses
	if page.Options.Section != "" {
		responses = page.Options.FilterResponses(responses, page.Options.Section)
	}
	a.renderTemplate(w, http.StatusOK, "question_detail", questionData{
		Base:     pageBase(page.ID),
		Entry:    entry,
		Options:  page.Options,
		Groups:   page.Options.GroupResponses(responses),
		Messages: page.flash.Drain(),
	})
}

// handleSection loads the results of one section and renders its detail
func (a *App) handleSection(w http.ResponseWriter, r *http.Request) {
	page, ok := a.lookupPage(w, r)
	if !ok {
		return
	}
	name := pathParam(r, "name")

	if err := page.Controller.LoadSection(r.Context(), name); err != nil && core.IsNotFoundError(err) {
		a.writeError(w, apperrors.WithCode(apperrors.CodeNotFound, err))
		return
	}

	section, _ := page.Controller.Snapshot().Section(name)
	data := sectionData{
		Base:     pageBase(page.ID),
		Section:  section,
		Options:  page.Options,
		Messages: page.flash.Drain(),
	}
	for _, q := range section.Questions {
		kept := page.Options.FilterResponses(q.AllResponses, name)
		data.Questions = append(data.Questions, sectionQuestion{
			Result: q,
			Groups: page.Options.GroupResponses(kept),
		})
	}
	a.renderTemplate(w, http.StatusOK, "section_detail", data)
}

// handlePublishModal renders the confirmation modal for the current publish status
func (a *App) handlePublishModal(w http.ResponseWriter, r *http.Request) {
	page, ok := a.lookupPage(w, r)
	if !ok {
		return
	}
	prompt, err := page.Controller.PublishPrompt()
	if err != nil {
		a.writeError(w, apperrors.WithCode(apperrors.CodeValidationError, err))
		return
	}
	a.renderTemplate(w, http.StatusOK, "publish_modal", publishData{
		Base:   pageBase(page.ID),
		Prompt: prompt,
	})
}

// handlePublish applies the decision taken in the modal
func (a *App) handlePublish(w http.ResponseWriter, r *http.Request) {
	page, ok := a.lookupPage(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		a.writeError(w, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}

	dialog := FormDialog{
		Confirmed: r.PostForm.Get("decision") == "confirm",
		Variant:   results.DialogVariant(r.PostForm.Get("variant")),
	}
	if err := page.Controller.TogglePublish(r.Context(), dialog); err != nil {
		if errors.Is(err, core.ErrSessionNotLoaded) {
			a.writeError(w, apperrors.WithCode(apperrors.CodeValidationError, err))
			return
		}
		a.logger.Info("publish toggle on page %s failed: %v", page.ID, err)
	}

	if target := page.nav.Take(); target != "" {
		// leaving the page tears it down
		a.pages.Remove(page.ID)
		redirect(w, r, target)
		return
	}

	a.renderTemplate(w, http.StatusOK, "publish_result", publishData{
		Base:     pageBase(page.ID),
		Messages: page.flash.Drain(),
	})
}

// handleExport streams the loaded results as a spreadsheet
func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	page, ok := a.lookupPage(w, r)
	if !ok {
		return
	}
	view := page.Controller.Snapshot()

	var buf bytes.Buffer
	if err := a.exporter.Export(view, page.Options, &buf); err != nil {
		a.writeError(w, apperrors.WithCode(apperrors.CodeValidationError, err))
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", view.Session.CourseID, view.Session.FeedbackSessionName)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Debug("writing export of page %s: %v", page.ID, err)
	}
}

// handleClosePage tears a page down when the browser leaves it
func (a *App) handleClosePage(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParsePageID(chi.URLParam(r, "page"))
	if err != nil {
		a.writeError(w, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}
	if !a.pages.Remove(id) {
		a.writeError(w, apperrors.NotFound("page"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) lookupPage(w http.ResponseWriter, r *http.Request) (*Page, bool) {
	id, err := core.ParsePageID(chi.URLParam(r, "page"))
	if err != nil {
		a.writeError(w, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return nil, false
	}
	page, err := a.pages.Get(id)
	if err != nil {
		a.writeError(w, apperrors.WithCode(apperrors.CodeNotFound, err))
		return nil, false
	}
	return page, true
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
	}
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	http.Error(w, message, status)
}

func pageBase(id core.PageID) string {
	return ResultsPath + "/" + id.String()
}

// pathParam returns an unescaped chi URL parameter
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
