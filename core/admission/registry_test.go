package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inmemdrafts "github.com/tclass/web/storage/drafts/inmem"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	deps := Deps{
		Drafts:  inmemdrafts.NewDraftRepository(inmemdrafts.Open()),
		Backend: &backendMock{},
		Now:     func() time.Time { return now },
	}
	reg := NewRegistry(deps, time.Hour)

	e := reg.Get(ctx, VariantAdmission, "owner-1")
	assert.Equal(t, StateEditing, e.State())
	require.NoError(t, e.Edit(ctx, "firstName", []string{"Ana"}))
	require.NoError(t, e.Attach(Attachment{Slot: SlotIDPicture, Filename: "a.png"}))

	assert.Same(t, e, reg.Get(ctx, VariantAdmission, "owner-1"))
	assert.NotSame(t, e, reg.Get(ctx, VariantVocational, "owner-1"))
	assert.NotSame(t, e, reg.Get(ctx, VariantAdmission, "owner-2"))
	assert.Equal(t, 3, reg.Len())

	// remounting rehydrates from the draft and forgets attachments
	mounted := reg.Mount(ctx, VariantAdmission, "owner-1")
	assert.NotSame(t, e, mounted)
	assert.Equal(t, "Ana", mounted.Snapshot().Form.FirstName)
	assert.False(t, mounted.Snapshot().Attachments[0].Selected)
	assert.Same(t, mounted, reg.Get(ctx, VariantAdmission, "owner-1"))

	now = now.Add(45 * time.Minute)
	mounted.Detach(SlotIDPicture) // keeps owner-1 alive
	now = now.Add(30 * time.Minute)

	assert.Equal(t, 2, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
	assert.Same(t, mounted, reg.Get(ctx, VariantAdmission, "owner-1"))
}

func TestRegistry_noIdleTimeout(t *testing.T) {
	reg := NewRegistry(Deps{Drafts: inmemdrafts.NewDraftRepository(inmemdrafts.Open())}, 0)
	reg.Get(context.Background(), VariantAdmission, "owner-1")
	assert.Equal(t, 0, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Mount_whileSubmitting(t *testing.T) {
	ctx := context.Background()
	backend := &backendMock{started: make(chan struct{}), release: make(chan struct{})}
	reg := NewRegistry(Deps{Drafts: inmemdrafts.NewDraftRepository(inmemdrafts.Open()), Backend: backend}, time.Hour)

	e := reg.Mount(ctx, VariantAdmission, "owner-1")
	require.NoError(t, e.Edit(ctx, "emailAddress", []string{"ana@example.com"}))

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

	// reloading the form page mid-submit keeps the submitting engine
	mounted := reg.Mount(ctx, VariantAdmission, "owner-1")
	assert.Same(t, e, mounted)
	_, err := mounted.Submit(ctx, "")
	assert.Equal(t, ErrSubmitInFlight, err)

	close(backend.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, backend.callCount())

	// once done, mounting starts over from the (cleared) draft
	fresh := reg.Mount(ctx, VariantAdmission, "owner-1")
	assert.NotSame(t, e, fresh)
	assert.Equal(t, "", fresh.Snapshot().Form.EmailAddress)
}

func TestRegistry_Get_concurrent(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(Deps{Drafts: inmemdrafts.NewDraftRepository(inmemdrafts.Open())}, time.Hour)

	const n = 16
	engines := make([]*Engine, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engines[i] = reg.Get(ctx, VariantAdmission, "owner-1")
		}(i)
	}
	wg.Wait()

	for _, e := range engines {
		assert.Same(t, engines[0], e)
	}
	assert.Equal(t, 1, reg.Len())
}
