package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	appfs "github.com/trezcool/releve/fs"
	"github.com/trezcool/releve/storage/database"
)

var (
	gooseRunFunc   = goose.RunFS               // mockable
	createDBFunc   = database.CreateIfNotExist // mockable
	migrationsPath = "migrations"
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("no database connection")
	}
	return gooseRunFunc(args[0], cli.db, appfs.FS, migrationsPath, args[1:]...)
}

// createDB prompts for the admin password when an admin user is set without one.
func (cli *commandLine) createDB() error {
	conf := *cli.conf
	if conf.Database.AdminUser != "" && conf.Database.AdminPassword == "" {
		_, _ = fmt.Fprintf(cli.out, "Enter password for %s:", conf.Database.AdminUser)
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		_, _ = fmt.Fprintln(cli.out)
		if err != nil {
			return errors.Wrap(err, "reading password")
		}
		if len(pwd) == 0 {
			return errHelp
		}
		conf.Database.AdminPassword = string(pwd)
	}
	if err := createDBFunc(context.Background(), &conf); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "database %q ready\n", conf.Database.Name)
	return nil
}
