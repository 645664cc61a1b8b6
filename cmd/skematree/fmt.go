package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/skematree"
)

func newFmtCmd(o *options) *cobra.Command {
	var opt skematree.EncodeOpt
	cmd := &cobra.Command{
		Use:   "fmt [document]",
		Short: "Re-serialize a document through its schema",
		Long: `Decode the document, fill in defaults and write it back in declaration
order. Problems are logged but do not stop the output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, warnings, err := o.parse(cmd, docArg(args))
			if err != nil {
				return err
			}
			for _, w := range warnings {
				o.log.Warn().Str("path", w.Path).Str("code", w.Code).Msg(w.Message)
			}
			b, err := skematree.Marshal(n, opt)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().BoolVar(&opt.IgnoreUnused, "ignore-unused", false, "omit optional keys absent from the input")
	cmd.Flags().BoolVar(&opt.Pretty, "pretty", false, "indent output")
	return cmd
}
