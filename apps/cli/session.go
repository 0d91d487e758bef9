package main

import (
	"context"

	"github.com/trezcool/masomo-storefront/core/enrollment"
	"github.com/trezcool/masomo-storefront/core/listing"
	"github.com/trezcool/masomo-storefront/core/user"
)

// login opens a backend session and prints it, to be reused with `progress -session`.
func (cli *commandLine) login(email, pwd string) error {
	lr := user.LoginRequest{Email: email, Password: pwd}
	if err := lr.Validate(cli.validate); err != nil {
		return err
	}
	usr, session, err := cli.usrSvc.Login(context.Background(), lr)
	if err != nil {
		return err
	}
	cli.printf("Logged in as %s <%s> (%s)\n", usr.Name, usr.Email, usr.EffectiveRole())
	cli.printf("session: %s\n", session)
	return nil
}

// progress prints the learner's stats and enrolled courses.
func (cli *commandLine) progress(session, search, status string) error {
	enrs, err := cli.enrSvc.Mine(context.Background(), session)
	if listing.IsMalformed(err) {
		cli.printf("Your courses could not be read, please try again later.\n")
		return nil
	}
	if err != nil {
		return err
	}

	stats := enrollment.ComputeStats(enrs.Items)
	cli.printf("Enrolled courses:  %d\n", stats.EnrolledCourses)
	cli.printf("Completed modules: %d\n", stats.CompletedModules)
	cli.printf("Average progress:  %d%%\n", stats.AverageProgress)
	cli.printf("In progress:       %d\n", stats.InProgress)
	cli.printf("Completed:         %d\n", stats.Completed)

	filtered := enrollment.Filter(enrs.Items, search, status)
	if len(filtered) == 0 {
		cli.printf("\nNo courses found\n")
		return nil
	}
	cli.printf("\n")
	for _, e := range filtered {
		cli.printf("  [%-6s] %3.0f%%  %s\n", e.ProgressBand(), e.Progress, e.Title())
	}
	return nil
}
