package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/storygoal/internal/store"
)

// exportWritten is printed after an export to a file.
type exportWritten struct {
	File    string `json:"file" yaml:"file"`
	Goals   int    `json:"goals" yaml:"goals"`
	Stories int    `json:"stories" yaml:"stories"`
}

func addTransferCommands(root *cobra.Command, a *app) {
	var file string
	exportCmd := &cobra.Command{
		Use:   "export <user_key>",
		Short: "Dump a workspace as JSON or YAML",
		Long: `Dump a workspace's registration, goals and stories. Without --file the
document is printed in the --output format. With --file it is written to
disk, as YAML when the file ends in .yaml or .yml and as JSON otherwise.

Examples:
  storygoal export alice > alice.json
  storygoal export alice --file backup/alice.yaml`,
		Args: positional(1, 1, "<user_key>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			data, err := st.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if file == "" {
				return a.render(cmd.OutOrStdout(), data)
			}
			if err := writeExportFile(file, data); err != nil {
				return err
			}
			a.log.Info().Str("user_key", args[0]).Str("file", file).Msg("workspace exported")
			return a.render(cmd.OutOrStdout(), &exportWritten{
				File:    file,
				Goals:   len(data.Goals),
				Stories: len(data.Stories),
			})
		},
	}
	exportCmd.Flags().StringVarP(&file, "file", "f", "", "write the export to this file")
	root.AddCommand(exportCmd)

	root.AddCommand(&cobra.Command{
		Use:   "import <user_key> <file>",
		Short: "Load an export into a workspace",
		Long: `Load a JSON or YAML export into a workspace, keeping the original ids.
Records whose id already exists are skipped, so importing the same file
twice is harmless. Use "-" to read from stdin.`,
		Args: positional(2, 2, "<user_key> <file>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readExportFile(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			res, err := st.Import(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), res)
		},
	})
}

func isYAMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func writeExportFile(path string, data *store.ExportData) error {
	var buf bytes.Buffer
	var err error
	if isYAMLFile(path) {
		err = writeYAML(&buf, data)
	} else {
		err = writeJSON(&buf, data)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// readExportFile decodes an export document. "-" reads stdin as JSON.
// Malformed documents are reported as invalid input.
func readExportFile(path string, stdin io.Reader) (*store.ExportData, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, newUsageError("reading %s: %v", path, err)
	}

	data := &store.ExportData{}
	if isYAMLFile(path) {
		err = yaml.Unmarshal(raw, data)
	} else {
		err = json.Unmarshal(raw, data)
	}
	if err != nil {
		return nil, newUsageError("parsing %s: %v", path, err)
	}
	return data, nil
}
