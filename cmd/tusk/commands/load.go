package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/ui/output"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

func (c *CLI) newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <file|dir>",
		Short: "Load a configuration, compiling it first if needed, and print every value",
		Long: "Load a configuration, compiling it first if needed, and print every value.\n" +
			"A directory loads every " + domain.LevelFileName + " from the filesystem root down to it;\n" +
			"keys set by deeper files replace those of shallower ones.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			if format != "text" && format != "json" && format != "yaml" {
				return zerr.With(zerr.New("unknown output format"), "format", format)
			}

			loaded, err := c.app.Load(cmd.Context(), args[0], runOptions(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				plain := make(map[string]any, len(loaded.Values))
				for k, v := range loaded.Values {
					plain[k] = v.Interface()
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plain)
			case "yaml":
				// A mapping node keeps the keys in declaration order.
				doc := &yaml.Node{Kind: yaml.MappingNode}
				for _, k := range loaded.Keys {
					var val yaml.Node
					if err := val.Encode(loaded.Values[k].Interface()); err != nil {
						return err
					}
					doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, &val)
				}
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(doc)
			}

			p := output.NewPrinter(out)
			for _, k := range loaded.Keys {
				p.Pair(k, loaded.Values[k].String())
			}
			for _, rec := range loaded.Records {
				if len(loaded.Records) > 1 {
					_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", rec.SourcePath, describe(rec))
				} else {
					_, err = fmt.Fprintln(cmd.ErrOrStderr(), describe(rec))
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func (c *CLI) newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <file|dir> <key>",
		Short: "Print a single value",
		Long: "Print a single value. A directory answers from the deepest " + domain.LevelFileName + "\n" +
			"between the filesystem root and it that sets the key.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fallback *domain.Value
			if cmd.Flags().Changed("default") {
				d, _ := cmd.Flags().GetString("default")
				v := domain.String(d)
				fallback = &v
			}
			v, err := c.app.Get(cmd.Context(), args[0], args[1], fallback, runOptions(cmd))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v.Text())
			return err
		},
	}
	cmd.Flags().StringP("default", "d", "", "Value to print when no file sets the key")
	return cmd
}
