package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/enrollment"
	"github.com/trezcool/masomo-storefront/core/user"
	backendsvc "github.com/trezcool/masomo-storefront/services/backend"
	logsvc "github.com/trezcool/masomo-storefront/services/logger"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lshortfile), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	client := backendsvc.NewClient(conf, logger)
	courseRepo := backendsvc.NewCourseRepository(client)

	// start CLI
	cli := commandLine{
		out:       os.Stdout,
		conf:      conf.Catalog,
		validate:  validate,
		usrSvc:    user.NewService(backendsvc.NewUserRepository(client)),
		courseSvc: course.NewService(courseRepo),
		enrSvc:    enrollment.NewService(backendsvc.NewEnrollmentRepository(client), courseRepo),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
