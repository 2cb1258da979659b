package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/treecodec/jsonschema"
)

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Work with JSON Schema documents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dedup [file]",
		Short: "Factor repeated enums and structures into definitions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			s, err := jsonschema.Parse(data)
			if err != nil {
				return fmt.Errorf("parse schema: %w", err)
			}
			before := len(s.Definitions)
			out := jsonschema.Dedupe(s)
			b, err := out.MarshalIndent()
			if err != nil {
				return err
			}
			a.log.Debug("schema deduplicated",
				zap.Int("definitions_before", before),
				zap.Int("definitions_after", len(out.Definitions)))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	})
	return cmd
}
