// Package dashboard reconciles the blog registry, the collaborator manager,
// and the user's selection into one consistent view state.
//
// All remote work runs on the caller's goroutine; a busy flag rejects
// overlapping actions so two mutations can never race on the same blog, and
// it is always cleared in a deferred final step. Failures become the error
// message field, never a stuck state — every action is user-retryable.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/docqmentary/plog/internal/api"
	"github.com/docqmentary/plog/internal/collab"
	"github.com/docqmentary/plog/internal/models"
	"github.com/docqmentary/plog/internal/registry"
	"github.com/docqmentary/plog/internal/session"
)

// ErrBusy is returned when an action is rejected because another action is
// still in flight. Selection changes are rejected too, so an in-flight call
// can never land against a blog that is no longer current.
var ErrBusy = errors.New("another action is in progress")

// ErrNotSignedIn is returned when an action requires a session.
var ErrNotSignedIn = errors.New("not signed in")

// Controller drives the ownership workflow for one signed-in user.
type Controller struct {
	sessions *session.Store
	registry *registry.Client
	collab   *collab.Manager

	mu         sync.Mutex
	busy       bool
	successMsg string
	errorMsg   string

	registerForm RegisterForm
	verifyForm   VerifyForm
	inviteForm   InviteForm
}

// NewController wires a controller from its collaborating components.
func NewController(sessions *session.Store, reg *registry.Client, mgr *collab.Manager) *Controller {
	return &Controller{
		sessions: sessions,
		registry: reg,
		collab:   mgr,
	}
}

// begin claims the busy flag and clears transient messages. It fails when a
// previous action has not settled or when no session is active.
func (c *Controller) begin() (apiKey string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return "", ErrBusy
	}
	apiKey = c.sessions.APIKey()
	if apiKey == "" {
		return "", ErrNotSignedIn
	}
	c.busy = true
	c.successMsg = ""
	c.errorMsg = ""
	return apiKey, nil
}

// finish releases the busy flag and records the action's outcome.
func (c *Controller) finish(success string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.errorMsg = err.Error()
		return
	}
	c.successMsg = success
}

// Refresh reloads the blog list and, when that settles a selection, the
// selected blog's collaborators.
func (c *Controller) Refresh(ctx context.Context) error {
	apiKey, err := c.begin()
	if err != nil {
		return err
	}

	_, err = c.registry.List(ctx, apiKey)
	if err == nil {
		err = c.syncCollaborators(ctx, apiKey)
	}
	c.finish("", err)
	return err
}

// Select makes a different blog current. Forms and transient messages are
// reset, the stale collaborator list is cleared before the new one loads,
// and the top-level blog list is left alone.
func (c *Controller) Select(ctx context.Context, blogID int64) error {
	apiKey, err := c.begin()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.verifyForm = VerifyForm{}
	c.inviteForm = InviteForm{}
	c.mu.Unlock()

	c.registry.Select(blogID)
	err = c.syncCollaborators(ctx, apiKey)
	c.finish("", err)
	return err
}

// Register claims a new blog from the register form. The server record is
// the authoritative state, so it lands in the cache directly and becomes the
// selection; its (empty) collaborator list is then loaded.
func (c *Controller) Register(ctx context.Context) error {
	apiKey, err := c.begin()
	if err != nil {
		return err
	}

	c.mu.Lock()
	form := c.registerForm
	c.mu.Unlock()

	if err := form.Validate(); err != nil {
		c.finish("", err)
		return err
	}

	blog, err := c.registry.Register(ctx, apiKey, form.NaverBlogID, form.Title)
	if err != nil {
		c.finish("", err)
		return err
	}

	c.mu.Lock()
	c.registerForm = RegisterForm{}
	c.mu.Unlock()

	err = c.syncCollaborators(ctx, apiKey)
	c.finish(fmt.Sprintf("Blog %s created. Drop the tokens into your verification post.", blog.NaverBlogID), err)
	return err
}

// Verify submits the verify form for the selected blog. The outcome message
// reports what the server said, but displayed status always comes from the
// re-listed blog record, never from the verify response.
func (c *Controller) Verify(ctx context.Context) error {
	apiKey, err := c.begin()
	if err != nil {
		return err
	}

	selected := c.registry.Selected()
	if selected == nil {
		err = errors.New("no blog selected")
		c.finish("", err)
		return err
	}

	c.mu.Lock()
	form := c.verifyForm
	c.mu.Unlock()

	if err := form.Validate(); err != nil {
		c.finish("", err)
		return err
	}

	status, err := c.registry.Verify(ctx, apiKey, selected.ID, form.toRequest())
	if err != nil {
		c.finish("", err)
		return err
	}

	c.mu.Lock()
	c.verifyForm = VerifyForm{}
	c.mu.Unlock()

	msg := "Verification check complete. Refresh to confirm status."
	if status.Reason != "" {
		msg = fmt.Sprintf("Verification %s: %s", status.Status, status.Reason)
	}
	c.finish(msg, nil)
	return nil
}

// Disown releases the selected blog. Irreversible; the UI offers no undo.
func (c *Controller) Disown(ctx context.Context) error {
	apiKey, err := c.begin()
	if err != nil {
		return err
	}

	selected := c.registry.Selected()
	if selected == nil {
		err = errors.New("no blog selected")
		c.finish("", err)
		return err
	}

	if _, err = c.registry.Disown(ctx, apiKey, selected.ID); err != nil {
		c.finish("", err)
		return err
	}

	c.finish("Blog marked as disowned. Tokens revoked and collaborators removed.", nil)
	return nil
}

// Invite sends the invite form's email a collaborator invitation for the
// selected blog. A blank email is rejected before any network call.
func (c *Controller) Invite(ctx context.Context) error {
	apiKey, err := c.begin()
	if err != nil {
		return err
	}

	c.mu.Lock()
	form := c.inviteForm
	c.mu.Unlock()

	if err := form.Validate(); err != nil {
		c.finish("", err)
		return err
	}

	if _, err = c.collab.Invite(ctx, apiKey, form.Email); err != nil {
		c.finish("", err)
		return err
	}

	c.mu.Lock()
	c.inviteForm = InviteForm{}
	c.mu.Unlock()

	c.finish("Invitation sent.", nil)
	return nil
}

// Revoke revokes one collaborator invitation on the selected blog.
func (c *Controller) Revoke(ctx context.Context, collaboratorID int64) error {
	apiKey, err := c.begin()
	if err != nil {
		return err
	}

	if _, err = c.collab.Revoke(ctx, apiKey, collaboratorID); err != nil {
		c.finish("", err)
		return err
	}

	c.finish("Collaborator revoked.", nil)
	return nil
}

// syncCollaborators re-scopes the collaborator manager to the registry's
// selection and loads the list. A superseded load is not an error: its
// result was dropped on purpose.
func (c *Controller) syncCollaborators(ctx context.Context, apiKey string) error {
	selectedID := c.registry.SelectedID()
	c.collab.SetBlog(selectedID)
	if selectedID == 0 {
		return nil
	}
	if _, err := c.collab.Load(ctx, apiKey); err != nil && !errors.Is(err, collab.ErrSuperseded) {
		return err
	}
	return nil
}

func (f VerifyForm) toRequest() api.VerifyBlogRequest {
	return api.VerifyBlogRequest{
		PostURL: f.PostURL,
		Title:   f.Title,
		Body:    f.Body,
	}
}

// Busy reports whether an action is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// SuccessMessage returns the last action's success message, if any.
func (c *Controller) SuccessMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.successMsg
}

// ErrorMessage returns the last action's error message, if any.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorMsg
}

// Blogs returns the cached blog list.
func (c *Controller) Blogs() []models.Blog {
	return c.registry.Blogs()
}

// Selected returns the selected blog, or nil.
func (c *Controller) Selected() *models.Blog {
	return c.registry.Selected()
}

// Collaborators returns the selected blog's cached invitation list.
func (c *Controller) Collaborators() []models.Collaborator {
	return c.collab.Collaborators()
}

// SetRegisterForm replaces the register form's values.
func (c *Controller) SetRegisterForm(f RegisterForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registerForm = f
}

// SetVerifyForm replaces the verify form's values.
func (c *Controller) SetVerifyForm(f VerifyForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifyForm = f
}

// SetInviteForm replaces the invite form's values.
func (c *Controller) SetInviteForm(f InviteForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inviteForm = f
}
