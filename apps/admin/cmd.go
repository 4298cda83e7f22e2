package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"

	"github.com/tclass/web/core/auth"
	"github.com/tclass/web/core/draft"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// minSuggestRatio is the similarity an unknown command needs to get a suggestion.
const minSuggestRatio = 0.6

var commands = []string{"login", "cleardraft", "migrate"}

type commandLine struct {
	out        io.Writer
	authSvc    *auth.Service
	draftStore string // draft.store from the config
	openDrafts func(ctx context.Context) (draft.Repository, func() error, error)
	openDB     func(ctx context.Context) (*sqlx.DB, error)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL [-role ROLE]                      - check credentials against the backend")
	fmt.Fprintln(cli.out, "  cleardraft -form admission|vocational -owner ID      - delete a persisted form draft")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                               - run draft store migrations (postgres)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginCmd.SetOutput(cli.out)
	loginEmail := loginCmd.String("email", "", "The account email. The password will be prompted next.")
	loginRole := loginCmd.String("role", "", "Role hint sent along with the credentials (student, faculty or admin).")

	clearDraftCmd := flag.NewFlagSet("cleardraft", flag.ContinueOnError)
	clearDraftCmd.SetOutput(cli.out)
	clearDraftForm := clearDraftCmd.String("form", "", "The form of the draft: admission or vocational.")
	clearDraftOwner := clearDraftCmd.String("owner", "", "The draft owner id (the tclass_draft_id cookie).")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail, string(pwd), *loginRole)

	case "cleardraft":
		if err := clearDraftCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *clearDraftForm == "" || *clearDraftOwner == "" {
			clearDraftCmd.Usage()
			return errHelp
		}
		return cli.clearDraft(ctx, *clearDraftForm, *clearDraftOwner)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])

	default:
		if s := suggest(args[1], commands); s != "" {
			fmt.Fprintf(cli.out, "unknown command %q, did you mean %q?\n", args[1], s)
		}
		cli.printUsage()
		return errHelp
	}
}

// suggest returns the candidate most similar to `cmd`, or "" when none is close enough.
func suggest(cmd string, candidates []string) string {
	var (
		best      string
		bestRatio float64
	)
	a := strings.Split(strings.ToLower(cmd), "")
	for _, c := range candidates {
		ratio := difflib.NewMatcher(a, strings.Split(c, "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = c, ratio
		}
	}
	if bestRatio < minSuggestRatio {
		return ""
	}
	return best
}
