package resultspage

import (
	"context"

	"sessionresults/domain/core"
	"sessionresults/domain/results"
	"sessionresults/ports"
)

// PublishPrompt describes the confirmation dialog the publish toggle would open now
func (c *Controller) PublishPrompt() (results.PublishPrompt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.state.sessionLoaded {
		return results.PublishPrompt{}, core.ErrSessionNotLoaded
	}
	return results.PublishPrompt{
		Variant:     results.VariantFor(c.state.session.PublishStatus),
		SessionName: c.state.session.FeedbackSessionName,
	}, nil
}

// TogglePublish asks dialog to confirm, then publishes or unpublishes the session.
// On success the status flips and the navigator moves to the sessions list; on failure the
// error is reported and the page stays. A dismissed dialog does nothing.
func (c *Controller) TogglePublish(ctx context.Context, dialog ports.ConfirmDialog) error {
	prompt, err := c.PublishPrompt()
	if err != nil {
		return err
	}

	if !dialog.Confirm(ctx, prompt) {
		c.logger.Debug("%s of %q cancelled", prompt.Variant, prompt.SessionName)
		return nil
	}

	c.mu.RLock()
	session := c.state.session
	c.mu.RUnlock()

	reqCtx, done := c.bind(ctx)
	defer done()

	if session.PublishStatus.IsPublished() {
		err = c.backend.UnpublishSession(reqCtx, session.Key())
	} else {
		err = c.backend.PublishSession(reqCtx, session.Key())
	}
	if err != nil {
		c.report(string(prompt.Variant), err)
		return err
	}

	if !c.update(func(s *pageState) {
		s.session.PublishStatus = session.PublishStatus.Toggled()
	}) {
		return core.ErrPageClosed
	}

	c.logger.Info("%s of %q in %s succeeded", prompt.Variant, session.FeedbackSessionName, session.CourseID)
	c.navigator.NavigateTo(results.SessionsListPath)
	return nil
}
