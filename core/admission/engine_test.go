package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/draft"
	inmemdrafts "github.com/tclass/web/storage/drafts/inmem"
)

type backendMock struct {
	mu      sync.Mutex
	calls   []Payload
	tokens  []string
	receipt Receipt
	err     error
	started chan struct{}
	release chan struct{}
}

func (b *backendMock) SubmitAdmission(_ context.Context, token string, p Payload) (Receipt, error) {
	b.mu.Lock()
	b.calls = append(b.calls, p)
	b.tokens = append(b.tokens, token)
	b.mu.Unlock()
	if b.started != nil {
		b.started <- struct{}{}
		<-b.release
	}
	return b.receipt, b.err
}

func (b *backendMock) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

type notifierMock struct {
	variants []Variant
	forms    []Form
}

func (n *notifierMock) ApplicationReceived(v Variant, f Form, _ Receipt) {
	n.variants = append(n.variants, v)
	n.forms = append(n.forms, f)
}

// brokenRepo fails every operation.
type brokenRepo struct{}

func (brokenRepo) Load(context.Context, draft.Key, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}
func (brokenRepo) Save(context.Context, draft.Key, string, []byte) error {
	return errors.New("disk on fire")
}
func (brokenRepo) Clear(context.Context, draft.Key, string) error { return errors.New("disk on fire") }

func newTestEngine(t *testing.T, v Variant) (*Engine, draft.Repository, *backendMock) {
	t.Helper()
	repo := inmemdrafts.NewDraftRepository(inmemdrafts.Open())
	backend := &backendMock{}
	e := NewEngine(v, "owner-1", Deps{Drafts: repo, Backend: backend})
	e.Hydrate(context.Background())
	return e, repo, backend
}

func edit(t *testing.T, e *Engine, field string, values ...string) {
	t.Helper()
	require.NoError(t, e.Edit(context.Background(), field, values))
}

func TestEngine_Hydrate(t *testing.T) {
	ctx := context.Background()
	repo := inmemdrafts.NewDraftRepository(inmemdrafts.Open())

	t.Run("no draft", func(t *testing.T) {
		e := NewEngine(VariantAdmission, "nobody", Deps{Drafts: repo})
		assert.Equal(t, StateEmpty, e.State())
		e.Hydrate(ctx)
		assert.Equal(t, StateEditing, e.State())
		assert.Equal(t, DefaultForm(), e.Snapshot().Form)
	})

	t.Run("merges over defaults", func(t *testing.T) {
		// an old draft without nationality or purposes
		require.NoError(t, repo.Save(ctx, draft.AdmissionKey, "partial", []byte(`{"firstName":"Ana","father":{"name":"Ben"}}`)))
		e := NewEngine(VariantAdmission, "partial", Deps{Drafts: repo})
		e.Hydrate(ctx)

		f := e.Snapshot().Form
		assert.Equal(t, "Ana", f.FirstName)
		assert.Equal(t, "Ben", f.Father.Name)
		assert.Equal(t, "Filipino", f.Nationality)
		assert.Equal(t, []string{}, f.EnrollmentPurposes)
	})

	t.Run("corrupt draft", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, draft.AdmissionKey, "corrupt", []byte(`{"firstName":`)))
		e := NewEngine(VariantAdmission, "corrupt", Deps{Drafts: repo})
		e.Hydrate(ctx)
		assert.Equal(t, DefaultForm(), e.Snapshot().Form)
		assert.Equal(t, StateEditing, e.State())
	})

	t.Run("storage failure", func(t *testing.T) {
		e := NewEngine(VariantAdmission, "x", Deps{Drafts: brokenRepo{}})
		e.Hydrate(ctx)
		assert.Equal(t, DefaultForm(), e.Snapshot().Form)
		require.NoError(t, e.Edit(ctx, "firstName", []string{"Ana"}))
		assert.Equal(t, "Ana", e.Snapshot().Form.FirstName)
	})
}

func TestEngine_DraftRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, repo, _ := newTestEngine(t, VariantVocational)
	edit(t, e, "firstName", "Ana")
	edit(t, e, "address.city", "Tacloban")
	edit(t, e, "enrollmentPurposes", "Employment", "Others")
	edit(t, e, "enrollmentPurposeOthers", "Hobby")
	edit(t, e, "validIdType", "Others")
	edit(t, e, "validIdTypeOther", "Barangay ID")
	before := e.Snapshot().Form

	// a page reload mounts a new engine over the same storage
	reloaded := NewEngine(VariantVocational, "owner-1", Deps{Drafts: repo})
	reloaded.Hydrate(ctx)
	assert.Equal(t, before, reloaded.Snapshot().Form)

	// other variants and owners are untouched
	other := NewEngine(VariantAdmission, "owner-1", Deps{Drafts: repo})
	other.Hydrate(ctx)
	assert.Equal(t, DefaultForm(), other.Snapshot().Form)
}

func TestEngine_NoPersistBeforeHydration(t *testing.T) {
	ctx := context.Background()
	repo := inmemdrafts.NewDraftRepository(inmemdrafts.Open())
	require.NoError(t, repo.Save(ctx, draft.AdmissionKey, "owner-1", []byte(`{"firstName":"Ana","lastName":"Reyes"}`)))

	e := NewEngine(VariantAdmission, "owner-1", Deps{Drafts: repo})
	require.NoError(t, e.Edit(ctx, "firstName", []string{"Zed"}))

	data, err := repo.Load(ctx, draft.AdmissionKey, "owner-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Ana","lastName":"Reyes"}`, string(data))
}

func TestEngine_Edit_unknownField(t *testing.T) {
	e, _, _ := newTestEngine(t, VariantAdmission)
	err := e.Edit(context.Background(), "father", []string{"x"})
	require.Error(t, err)
	err = e.Edit(context.Background(), "nope", []string{"x"})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "nope", verr.Fields[0].Field)
}

func TestEngine_Attachments(t *testing.T) {
	e, _, _ := newTestEngine(t, VariantAdmission)

	assert.Error(t, e.Attach(Attachment{Slot: SlotValidID, Filename: "id.png"}))
	require.NoError(t, e.Attach(Attachment{Slot: SlotIDPicture, Filename: "a.png"}))
	require.NoError(t, e.Attach(Attachment{Slot: SlotIDPicture, Filename: "b.png"}))

	st := e.Snapshot().Attachments
	assert.Equal(t, "b.png", st[0].Filename)
	assert.True(t, st[0].Selected)

	e.Detach(SlotIDPicture)
	st = e.Snapshot().Attachments
	assert.Equal(t, "No file selected", st[0].Filename)
	assert.False(t, st[0].Selected)
}

func TestEngine_Reset(t *testing.T) {
	ctx := context.Background()
	e, repo, _ := newTestEngine(t, VariantAdmission)
	edit(t, e, "firstName", "Ana")
	require.NoError(t, e.Attach(Attachment{Slot: SlotIDPicture, Filename: "a.png"}))

	e.Reset()
	once := e.Snapshot()
	e.Reset()
	assert.Equal(t, once, e.Snapshot())
	assert.Equal(t, DefaultForm(), once.Form)
	assert.False(t, once.Attachments[0].Selected)

	// the persisted draft survives a reset
	reloaded := NewEngine(VariantAdmission, "owner-1", Deps{Drafts: repo})
	reloaded.Hydrate(ctx)
	assert.Equal(t, "Ana", reloaded.Snapshot().Form.FirstName)
}

func TestEngine_Submit_requiresEmail(t *testing.T) {
	e, _, backend := newTestEngine(t, VariantAdmission)
	edit(t, e, "firstName", "Ana")

	_, err := e.Submit(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "Email address is required.", core.UserMessage(err, MsgSubmitFailed))
	assert.Equal(t, 0, backend.callCount())
	assert.Equal(t, StateEditing, e.State())
}

func TestEngine_Submit_success(t *testing.T) {
	ctx := context.Background()
	e, repo, backend := newTestEngine(t, VariantAdmission)
	notifier := &notifierMock{}
	e.deps.Notifier = notifier
	backend.receipt = Receipt{Reference: "ADM-7"}

	edit(t, e, "firstName", "Ana")
	edit(t, e, "emailAddress", "ana@example.com")
	require.NoError(t, e.Attach(Attachment{Slot: SlotIDPicture, Filename: "a.png", ContentType: "image/png", Data: pngData}))

	res, err := e.Submit(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.Equal(t, MsgSubmitted, res.Message)
	assert.Equal(t, "ADM-7", res.Receipt.Reference)
	assert.Equal(t, []string{"tok"}, backend.tokens)
	require.Len(t, backend.calls[0].Files, 1)

	assert.Equal(t, StateSubmittedSuccess, e.State())
	snap := e.Snapshot()
	assert.Equal(t, DefaultForm(), snap.Form)
	assert.False(t, snap.Attachments[0].Selected)

	_, err = repo.Load(ctx, draft.AdmissionKey, "owner-1")
	assert.Equal(t, draft.ErrNotFound, err)

	require.Len(t, notifier.forms, 1)
	assert.Equal(t, "ana@example.com", notifier.forms[0].EmailAddress)

	// editing again leaves the terminal state
	edit(t, e, "firstName", "Ben")
	assert.Equal(t, StateEditing, e.State())
}

func TestEngine_Submit_failureKeepsState(t *testing.T) {
	ctx := context.Background()
	e, repo, backend := newTestEngine(t, VariantAdmission)
	backend.err = &core.ServerError{Status: 422, Message: "Course is full."}

	edit(t, e, "emailAddress", "ana@example.com")
	require.NoError(t, e.Attach(Attachment{Slot: SlotIDPicture, Filename: "a.png", ContentType: "image/png", Data: pngData}))
	before := e.Snapshot()

	_, err := e.Submit(ctx, "")
	require.Error(t, err)
	assert.Equal(t, "Course is full.", core.UserMessage(err, MsgSubmitFailed))
	assert.Equal(t, StateSubmittedError, e.State())

	after := e.Snapshot()
	assert.Equal(t, before.Form, after.Form)
	assert.Equal(t, before.Attachments, after.Attachments)
	data, err := repo.Load(ctx, draft.AdmissionKey, "owner-1")
	require.NoError(t, err)
	assert.Contains(t, string(data), "ana@example.com")

	// a retry goes through
	backend.err = nil
	_, err = e.Submit(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.callCount())
}

func TestEngine_Submit_inFlight(t *testing.T) {
	ctx := context.Background()
	e, _, backend := newTestEngine(t, VariantAdmission)
	backend.started = make(chan struct{})
	backend.release = make(chan struct{})
	edit(t, e, "emailAddress", "ana@example.com")

	done := make(chan error)
	go func() {
		_, err := e.Submit(ctx, "")
		done <- err
	}()

	select {
	case <-backend.started:
	case <-time.After(time.Second):
		t.Fatal("submission never reached the backend")
	}
	assert.Equal(t, StateSubmitting, e.State())

	_, err := e.Submit(ctx, "")
	assert.Equal(t, ErrSubmitInFlight, err)

	close(backend.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, backend.callCount())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "editing", StateEditing.String())
	assert.Equal(t, "submitted", StateSubmittedSuccess.String())
	assert.Equal(t, "unknown", State(42).String())
}
