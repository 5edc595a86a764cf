package main

import (
	"halal-directory/internal/database"
)

type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" default:"1" help:"Apply all pending migrations"`
	Status MigrateStatusCmd `cmd:"" help:"Show applied and pending migrations"`
}

type MigrateUpCmd struct{}

func (m *MigrateUpCmd) Run(ctx *Context) error {
	db, err := ctx.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return database.RunMigrations(db.DB(), ctx.Logger)
}

type MigrateStatusCmd struct{}

func (m *MigrateStatusCmd) Run(ctx *Context) error {
	db, err := ctx.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return database.GetMigrationStatus(db.DB())
}
