package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/skematree"
)

func newCheckCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [document]",
		Short: "Report every problem found in a document",
		Long: `Decode the document, build its tree and print one line per issue.
The exit status is 1 when any issue (including decoder warnings) is found.
Without a document argument, standard input is read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, warnings, err := o.parse(cmd, docArg(args))
			issues := warnings
			if err != nil {
				parsed, ok := skematree.AsIssues(err)
				if !ok {
					return err
				}
				issues = append(issues, parsed...)
			} else {
				issues = append(issues, skematree.Check(n)...)
			}

			out := cmd.OutOrStdout()
			for _, it := range issues {
				fmt.Fprintln(out, it.Error())
			}
			if len(issues) > 0 {
				o.log.Debug().Int("issues", len(issues)).Msg("check failed")
				return errIssuesFound
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}
