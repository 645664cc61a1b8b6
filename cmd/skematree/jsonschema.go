package main

import (
	"fmt"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newJSONSchemaCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema",
		Short: "Print the schema as a JSON Schema document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := o.template()
			if err != nil {
				return err
			}
			b, err := j.MarshalIndent(tpl.JSONSchema(), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}
