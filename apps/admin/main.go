package main

import (
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
	logsvc "github.com/trezcool/coursehub/services/logger"
)

func main() {
	conf := core.NewConfig()
	zl := logsvc.NewZapLogger(conf)
	logger := zl.Named("ADMIN").Sugar()
	defer func() { _ = logger.Sync() }()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		validate:   validate,
		translator: translator,
		logger:     logger,
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Errorf("error: %s", err)
		}
		_ = logger.Sync()
		os.Exit(1)
	}
}
