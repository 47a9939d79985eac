package main

import (
	"fmt"

	"github.com/fwojciec/folio"
)

// Run executes the classify command.
func (c *ClassifyCmd) Run(deps *Dependencies) error {
	cls, err := deps.Converter.Classify(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s: %s\n", cls.Kind, cls.URL)
	if cls.Title != "" {
		fmt.Fprintf(deps.Stdout, "  Title:  %s\n", cls.Title)
	}
	if cls.Author != "" {
		fmt.Fprintf(deps.Stdout, "  Author: %s\n", cls.Author)
	}

	part := ""
	for _, l := range cls.Links {
		if l.Part != part {
			part = l.Part
			fmt.Fprintf(deps.Stdout, "  %s\n", part)
		}
		fmt.Fprintf(deps.Stdout, "  %3d. %s <%s>\n", l.Ordinal, l.Title, l.URL)
	}

	for _, w := range cls.Warnings {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", w)
	}
	return nil
}
