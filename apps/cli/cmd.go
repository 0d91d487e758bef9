package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/enrollment"
	"github.com/trezcool/masomo-storefront/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out       io.Writer
	conf      core.CatalogConfig
	validate  *validator.Validate
	usrSvc    *user.Service
	courseSvc *course.Service
	enrSvc    *enrollment.Service
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

func (cli *commandLine) printUsage() {
	cli.printf("Usage:\n")
	cli.printf("  courses [-page N] [-limit N] [-search TEXT] [-category NAME] [-sort FIELD] [-order asc|desc] - browse the catalog\n")
	cli.printf("  course -id ID - show a course's outline\n")
	cli.printf("  login -email EMAIL - open a session; the password is prompted next\n")
	cli.printf("  progress -session SESSION [-search TEXT] [-status all|in-progress|completed] - show your learning progress\n")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	coursesCmd := flag.NewFlagSet("courses", flag.ContinueOnError)
	coursesPage := coursesCmd.Int("page", 1, "The page to show.")
	coursesLimit := coursesCmd.Int("limit", cli.conf.DefaultLimit, "The number of courses per page.")
	coursesSearch := coursesCmd.String("search", "", "Only show courses matching this text.")
	coursesCategory := coursesCmd.String("category", "", "Only show courses of this category.")
	coursesSort := coursesCmd.String("sort", "", "Sort by price, createdAt or title.")
	coursesOrder := coursesCmd.String("order", "", "Sort order: asc or desc.")

	courseCmd := flag.NewFlagSet("course", flag.ContinueOnError)
	courseID := courseCmd.String("id", "", "The course ID.")

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginEmail := loginCmd.String("email", "", "The account's email. The password will be prompted next.")

	progressCmd := flag.NewFlagSet("progress", flag.ContinueOnError)
	progressSession := progressCmd.String("session", "", "The session printed by `login`.")
	progressSearch := progressCmd.String("search", "", "Only show courses matching this text.")
	progressStatus := progressCmd.String("status", enrollment.FilterAll, "all, in-progress or completed.")

	for _, fs := range []*flag.FlagSet{coursesCmd, courseCmd, loginCmd, progressCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "courses":
		if err := coursesCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.courses(course.QueryFilter{
			Page:      *coursesPage,
			Limit:     *coursesLimit,
			Search:    *coursesSearch,
			Category:  *coursesCategory,
			SortBy:    *coursesSort,
			SortOrder: *coursesOrder,
		})
	case "course":
		if err := courseCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *courseID == "" {
			courseCmd.Usage()
			return errHelp
		}
		return cli.course(*courseID)
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		cli.printf("Enter password:")
		pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
		cli.printf("\n")
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginEmail, string(pwd))
	case "progress":
		if err := progressCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *progressSession == "" {
			progressCmd.Usage()
			return errHelp
		}
		return cli.progress(*progressSession, *progressSearch, *progressStatus)
	default:
		cli.printUsage()
		return errHelp
	}
}
