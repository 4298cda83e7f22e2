package main

import (
	"context"

	"github.com/tclass/web/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	db, err := cli.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return gooseRunFunc(db.DB, args[0], args[1:]...)
}
