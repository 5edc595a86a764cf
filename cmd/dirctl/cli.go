package main

import (
	"io"

	"halal-directory/internal/config"
	"halal-directory/internal/database"

	"go.uber.org/zap"
)

// Context is passed to every command's Run method
type Context struct {
	Config *config.Config
	Logger *zap.Logger
	Out    io.Writer
	OpenDB func() (database.Service, error)
}

type CLI struct {
	Debug bool `help:"Enable debug logging"`

	Migrate MigrateCmd `cmd:"" help:"Manage database migrations"`
	Geocode GeocodeCmd `cmd:"" help:"Resolve location text to coordinates"`
	Claim   ClaimCmd   `cmd:"" help:"Inspect business claims"`
}
