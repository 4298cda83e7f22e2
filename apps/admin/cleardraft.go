package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tclass/web/core/draft"
)

var (
	errUnknownForm      = errors.New("unknown form, expected admission or vocational")
	errMemoryDraftStore = errors.New("drafts are kept in the web server's memory (draft.store=memory), there is nothing to clear from here")
)

func (cli *commandLine) clearDraft(ctx context.Context, form, owner string) error {
	key, ok := draft.ParseKey(form)
	if !ok {
		return errUnknownForm
	}
	if cli.draftStore == "memory" {
		return errMemoryDraftStore
	}

	repo, closeRepo, err := cli.openDrafts(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	if err = repo.Clear(ctx, key, owner); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Cleared the %s draft of %s\n", form, owner)
	return nil
}
