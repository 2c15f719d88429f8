package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/course"
	"github.com/trezcool/ccourse/core/material"
	"github.com/trezcool/ccourse/core/schedule"
	"github.com/trezcool/ccourse/core/user"
	logsvc "github.com/trezcool/ccourse/services/logger"
	"github.com/trezcool/ccourse/storage"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage; migrations are left to the migrate command
	repos, err := storage.Open(context.Background(), conf, storage.Options{SkipMigrations: true})
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Storage, err), err)
	}

	validator := core.NewValidator()
	course.InitValidators(validator.Validate, validator.Translator)
	schedule.InitValidators(validator.Validate, validator.Translator)
	material.InitValidators(validator.Validate, validator.Translator)
	user.InitValidators(validator.Validate, validator.Translator)

	curriculum, err := course.LoadCurriculum(course.DefaultCurriculum())
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	// start CLI
	cli := commandLine{
		usrSvc:       user.NewService(repos.Users, validator),
		progressRepo: repos.Progress,
		curriculum:   curriculum,
		logger:       logger,
	}
	if repos.DB != nil {
		cli.db = repos.DB.DB
	}

	err = cli.run(os.Args)
	if cerr := repos.Close(); cerr != nil {
		logger.Error(fmt.Sprintf("closing storage: %v", cerr), cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
		}
		os.Exit(1)
	}
}
