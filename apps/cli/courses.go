package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/listing"
	"github.com/trezcool/masomo-storefront/core/paging"
)

// courses prints a page of the catalog followed by its page controls.
func (cli *commandLine) courses(filter course.QueryFilter) error {
	filter.Clean(cli.conf.DefaultLimit)
	if err := filter.Validate(cli.validate); err != nil {
		return err
	}

	page, err := cli.courseSvc.Query(context.Background(), "", filter)
	if listing.IsMalformed(err) {
		cli.printf("The catalog could not be read, please try again later.\n")
		return nil
	}
	if err != nil {
		return err
	}

	cli.printf("%s\n", course.Showing(page))
	if len(page.Items) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	for _, crs := range page.Items {
		fmt.Fprintf(tw, "  %s\t%s\t$%.2f\t%s\t%s\n",
			crs.ID, crs.Title, crs.Price, crs.Category, course.FormatDuration(crs.TotalDuration()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pg := page.Pagination
	if ctrls := paging.NewControls(pg.Page, pg.TotalPages, cli.conf.MaxVisiblePages); ctrls != nil {
		cli.printf("\n%s\n%s\n", ctrls.Render(), course.PageSummary(pg))
	}
	return nil
}

// course prints the outline of a course.
func (cli *commandLine) course(id string) error {
	crs, err := cli.courseSvc.GetByID(context.Background(), "", id)
	if err != nil {
		return err
	}

	cli.printf("%s (%s)\n", crs.Title, course.FormatDuration(crs.TotalDuration()))
	cli.printf("by %s • $%.2f • %s\n", crs.Instructor, crs.Price, crs.Category)
	if len(crs.Tags) > 0 {
		cli.printf("tags: %s\n", strings.Join(crs.Tags, ", "))
	}
	cli.printf("\n%s\n", crs.Description)

	if len(crs.Modules) > 0 {
		cli.printf("\nModules:\n")
		tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
		for _, m := range crs.SortedModules() {
			fmt.Fprintf(tw, "  %d.\t%s\t%s\n", m.Order, m.Title, course.FormatDuration(m.Duration))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(crs.Batches) > 0 {
		cli.printf("\nBatches:\n")
		for _, b := range crs.Batches {
			cli.printf("  %s  starts %s\n", b.BatchID, b.StartDate)
		}
	}
	return nil
}
