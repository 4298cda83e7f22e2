package admission

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/draft"
)

const (
	MsgSubmitted    = "Your application has been submitted successfully."
	MsgSubmitFailed = "Failed to submit application. Please try again."
)

// ErrSubmitInFlight is returned while a previous submission has not completed.
var ErrSubmitInFlight = errors.New("a submission is already in progress")

type State int

const (
	StateEmpty State = iota
	StateHydrating
	StateEditing
	StatePersisting
	StateSubmitting
	StateSubmittedSuccess
	StateSubmittedError
)

var stateNames = [...]string{"empty", "hydrating", "editing", "persisting", "submitting", "submitted", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

type (
	// Receipt is the backend's acknowledgement of a submission.
	Receipt struct {
		Message   string `json:"message"`
		Reference string `json:"reference"`
	}

	// Backend accepts the multipart submission; token is empty for anonymous applicants.
	Backend interface {
		SubmitAdmission(ctx context.Context, token string, p Payload) (Receipt, error)
	}

	// Notifier is told about every accepted submission.
	Notifier interface {
		ApplicationReceived(v Variant, f Form, r Receipt)
	}

	// Result is the outcome of a successful Submit.
	Result struct {
		Confirmed bool    `json:"confirmed"`
		Message   string  `json:"message"`
		Receipt   Receipt `json:"receipt"`
	}

	// Snapshot is a consistent copy of the engine state for rendering.
	Snapshot struct {
		Variant     Variant            `json:"variant"`
		State       string             `json:"state"`
		Form        Form               `json:"form"`
		Attachments []AttachmentStatus `json:"attachments"`
	}

	Deps struct {
		Drafts   draft.Repository
		Backend  Backend
		Notifier Notifier // optional
		Logger   core.Logger
		Now      func() time.Time
	}
)

// Engine holds one user's in-progress form. Every change to the form is
// persisted as a draft once hydration is done; attachments stay in memory.
type Engine struct {
	variant Variant
	owner   string
	deps    Deps

	mu          sync.Mutex
	state       State
	hydrated    bool
	form        Form
	attachments Attachments
	lastActive  time.Time
}

func NewEngine(v Variant, owner string, deps Deps) *Engine {
	if deps.Logger == nil {
		deps.Logger = core.NopLogger{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Engine{
		variant:     v,
		owner:       owner,
		deps:        deps,
		state:       StateEmpty,
		form:        DefaultForm(),
		attachments: make(Attachments),
		lastActive:  deps.Now(),
	}
}

func (e *Engine) Variant() Variant { return e.variant }

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) LastActive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActive
}

// Hydrate loads the persisted draft over the default form. A missing, unreadable
// or corrupt draft leaves the defaults in place.
func (e *Engine) Hydrate(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.state = StateHydrating
	e.form = e.loadDraft(ctx)
	e.attachments = make(Attachments)
	e.hydrated = true
	e.state = StateEditing
}

func (e *Engine) loadDraft(ctx context.Context) Form {
	data, err := e.deps.Drafts.Load(ctx, e.variant.DraftKey(), e.owner)
	if err != nil {
		if errors.Cause(err) != draft.ErrNotFound {
			e.deps.Logger.Debug("loading draft", err, map[string]interface{}{"key": e.variant.DraftKey()})
		}
		return DefaultForm()
	}

	f := DefaultForm()
	if err := json.Unmarshal(data, &f); err != nil {
		e.deps.Logger.Debug("decoding draft", err, map[string]interface{}{"key": e.variant.DraftKey()})
		return DefaultForm()
	}
	if f.EnrollmentPurposes == nil {
		f.EnrollmentPurposes = []string{}
	}
	return f
}

// Edit sets a single (dotted) form field and persists the whole form.
func (e *Engine) Edit(ctx context.Context, field string, values []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	f := e.form
	f.EnrollmentPurposes = append([]string{}, e.form.EnrollmentPurposes...)
	if err := draft.Patch(&f, field, values); err != nil {
		return core.NewFieldError(field, "Unknown form field.")
	}
	if f.EnrollmentPurposes == nil {
		f.EnrollmentPurposes = []string{}
	}
	e.form = f
	e.leaveTerminalState()
	e.persist(ctx)
	return nil
}

// persist must be called with mu held. It never writes before hydration.
func (e *Engine) persist(ctx context.Context) {
	if !e.hydrated {
		return
	}
	prev := e.state
	e.state = StatePersisting
	defer func() { e.state = prev }()

	data, err := json.Marshal(e.form)
	if err != nil {
		e.deps.Logger.Debug("encoding draft", err)
		return
	}
	if err := e.deps.Drafts.Save(ctx, e.variant.DraftKey(), e.owner, data); err != nil {
		e.deps.Logger.Debug("saving draft", err, map[string]interface{}{"key": e.variant.DraftKey()})
	}
}

// Attach replaces the attachment of its slot.
func (e *Engine) Attach(at Attachment) error {
	if !e.variant.accepts(at.Slot) {
		return core.NewFieldError(string(at.Slot), "This form does not accept that file.")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.attachments[at.Slot] = at
	e.leaveTerminalState()
	return nil
}

func (e *Engine) Detach(slot Slot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	delete(e.attachments, slot)
}

// Reset restores the default form and drops attachments. The persisted draft is
// kept, so the next hydration brings it back.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.form = DefaultForm()
	e.attachments = make(Attachments)
	e.leaveTerminalState()
}

// Submit validates the form and sends it. Validation failures never reach the
// backend. On success the form, attachments and draft are cleared; on failure
// everything is left as it was.
func (e *Engine) Submit(ctx context.Context, token string) (Result, error) {
	e.mu.Lock()
	e.touch()
	if e.state == StateSubmitting {
		e.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}
	if err := Validate(e.variant, e.form, e.attachments); err != nil {
		e.mu.Unlock()
		return Result{}, err
	}
	form := e.form
	p, err := BuildPayload(e.variant, form, e.attachments)
	if err != nil {
		e.mu.Unlock()
		return Result{}, err
	}
	e.state = StateSubmitting
	e.mu.Unlock()

	receipt, err := e.deps.Backend.SubmitAdmission(ctx, token, p)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if err != nil {
		e.state = StateSubmittedError
		return Result{}, errors.Wrap(err, "submitting "+string(e.variant))
	}

	e.form = DefaultForm()
	e.attachments = make(Attachments)
	if err := e.deps.Drafts.Clear(ctx, e.variant.DraftKey(), e.owner); err != nil {
		e.deps.Logger.Debug("clearing draft", err, map[string]interface{}{"key": e.variant.DraftKey()})
	}
	e.state = StateSubmittedSuccess

	if e.deps.Notifier != nil {
		e.deps.Notifier.ApplicationReceived(e.variant, form, receipt)
	}

	msg := receipt.Message
	if msg == "" {
		msg = MsgSubmitted
	}
	return Result{Confirmed: true, Message: msg, Receipt: receipt}, nil
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := e.form
	f.EnrollmentPurposes = append([]string{}, e.form.EnrollmentPurposes...)
	return Snapshot{
		Variant:     e.variant,
		State:       e.state.String(),
		Form:        f,
		Attachments: e.attachments.Status(e.variant),
	}
}

func (e *Engine) touch() { e.lastActive = e.deps.Now() }

// leaveTerminalState must be called with mu held.
func (e *Engine) leaveTerminalState() {
	switch e.state {
	case StateSubmittedSuccess, StateSubmittedError:
		e.state = StateEditing
	}
}
