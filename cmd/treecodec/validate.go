package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/treecodec/jsonschema"
)

func newValidateCmd(a *app) *cobra.Command {
	var schemaPath, format string
	cmd := &cobra.Command{
		Use:   "validate --schema schema.json [file]",
		Short: "Validate a document against a JSON Schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			successColor := color.New(color.FgGreen, color.Bold)
			errorColor := color.New(color.FgRed, color.Bold)

			raw, err := os.ReadFile(schemaPath)
			if err != nil {
				return fmt.Errorf("read schema: %w", err)
			}
			checker, err := jsonschema.NewCheckerJSON(raw)
			if err != nil {
				return fmt.Errorf("compile schema: %w", err)
			}

			data, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if format == "" {
				format = formatOf(name, a.cfg.DefaultFormat)
			}
			r, err := readerFor(format, a.cfg.Indent)
			if err != nil {
				return err
			}
			doc, err := r.Read(string(data))
			if err != nil {
				return fmt.Errorf("read %s: %w", format, err)
			}

			if err := checker.Validate(doc); err != nil {
				errorColor.Fprintln(cmd.ErrOrStderr(), "invalid")
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return errReported
			}
			successColor.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON Schema file")
	cmd.Flags().StringVar(&format, "format", "", "input format: json, yaml, toml, msgpack")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
