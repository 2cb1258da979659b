package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/treecodec"
)

func newConvertCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a document between formats",
		Long: `Convert reads a document and writes it in another format. The input
format defaults to the file extension, then to default_format from the config.
Key order is kept across formats.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if from == "" {
				from = formatOf(name, a.cfg.DefaultFormat)
			}
			src, err := readerFor(from, a.cfg.Indent)
			if err != nil {
				return err
			}
			dst, err := readerFor(to, a.cfg.Indent)
			if err != nil {
				return err
			}

			doc, err := treecodec.DecodeText(src, treecodec.Any(), string(data)).Get()
			if err != nil {
				return fmt.Errorf("read %s: %w", from, err)
			}
			out, err := treecodec.EncodeText(dst, treecodec.Any(), doc)
			if err != nil {
				return err
			}
			a.log.Debug("converted document",
				zap.String("from", from),
				zap.String("to", to),
				zap.Int("bytes", len(out)))
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format: json, yaml, toml, msgpack")
	cmd.Flags().StringVar(&to, "to", "json", "output format: json, yaml, toml, msgpack")
	return cmd
}
