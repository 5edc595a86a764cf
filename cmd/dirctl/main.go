// Command dirctl runs operator tasks against the directory database and providers.
package main

import (
	"halal-directory/internal/config"
	"halal-directory/internal/database"
	"halal-directory/internal/logger"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("dirctl"),
		kong.Description("Operator tooling for the halal directory."),
		kong.UsageOnError(),
	)

	cfg := config.Load()
	env := cfg.Server.Env
	if cli.Debug {
		env = "development"
	}

	log, err := logger.New(env)
	ctx.FatalIfErrorf(err)
	defer log.Sync() //nolint:errcheck

	err = ctx.Run(&Context{
		Config: cfg,
		Logger: log,
		Out:    ctx.Stdout,
		OpenDB: func() (database.Service, error) {
			return database.New(cfg.Database, log)
		},
	})
	if err != nil {
		log.Error("Command failed", zap.String("command", ctx.Command()), zap.Error(err))
	}
	ctx.FatalIfErrorf(err)
}
