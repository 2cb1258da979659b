package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reoring/treecodec"
	"github.com/reoring/treecodec/source/json"
	"github.com/reoring/treecodec/source/msgpack"
	"github.com/reoring/treecodec/source/toml"
	"github.com/reoring/treecodec/source/yaml"
)

func readerFor(format string, indent int) (treecodec.TreeReader, error) {
	switch strings.ToLower(format) {
	case "json":
		return json.Reader{Indent: strings.Repeat(" ", indent)}, nil
	case "yaml", "yml":
		return yaml.Reader{Indent: indent}, nil
	case "toml":
		return toml.New(), nil
	case "msgpack", "mpk":
		return msgpack.New(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// formatOf guesses a format from a file extension.
func formatOf(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".msgpack", ".mpk":
		return "msgpack"
	}
	return fallback
}

// readInput reads the file named by args[0], or stdin when there is none or
// it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return b, "", nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}
	return b, args[0], nil
}
