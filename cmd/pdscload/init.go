package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/pdscload/internal/config"
	"github.com/nao1215/pdscload/internal/model"
)

//go:embed templates/pdscload.yaml
var configTemplate embed.FS

const templatePath = "templates/pdscload.yaml"

// initFlags maps init flags to the keys they set under defaults.
var initFlags = map[string]string{
	"data":         "dataPath",
	"target":       "targetPath",
	"kind":         "targetKind",
	"content-base": "contentBase",
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Init writes a commented .pdscload configuration file holding the
built-in defaults. Paths given as flags are filled in.

Examples:
  # Create .pdscload in the current directory
  pdscload init

  # Fill in the archive and the target
  pdscload init -d /srv/archive -t /media/usb --kind site

  # Write somewhere else, replacing an existing file
  pdscload init -o /etc/pdscload/config.yaml -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Path of the file to write")
	cmd.Flags().BoolP("force", "f", false,
		"Replace an existing file")
	cmd.Flags().StringP("data", "d", "", "Archive root to record")
	cmd.Flags().StringP("target", "t", "", "Target to record")
	cmd.Flags().StringP("kind", "k", "", "Target kind to record: device or site")
	cmd.Flags().String("content-base", "", "Viewer directory to record")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	values := make(map[string]string)
	for flag, key := range initFlags {
		v, err := cmd.Flags().GetString(flag)
		if err != nil {
			return err
		}
		if v != "" {
			values[key] = v
		}
	}
	if kind, ok := values["targetKind"]; ok && !model.TargetKind(kind).Valid() {
		return fmt.Errorf("%w: %q", config.ErrInvalidTargetKind, kind)
	}

	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
	}

	tmpl, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}
	content, err := fillDefaults(tmpl, values)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), outputPath)
	if err != nil {
		return err
	}
	if _, err := out.Write(content); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(w, "Set dataPath and targetPath, then run 'pdscload load'.")
	return nil
}

// fillDefaults sets keys under defaults in the template. Comments survive
// the round trip; an empty values map returns the template unchanged.
func fillDefaults(tmpl []byte, values map[string]string) ([]byte, error) {
	if len(values) == 0 {
		return tmpl, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(tmpl, &doc); err != nil {
		return nil, fmt.Errorf("parse config template: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("config template is empty")
	}
	defaults := mappingValue(doc.Content[0], "defaults")
	if defaults == nil || defaults.Kind != yaml.MappingNode {
		return nil, errors.New("config template has no defaults section")
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		setScalar(defaults, k, values[k])
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("render config template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setScalar(m *yaml.Node, key, value string) {
	if v := mappingValue(m, key); v != nil {
		v.Kind = yaml.ScalarNode
		v.Tag = "!!str"
		v.Value = value
		v.Content = nil
		return
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}
