package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/virtualboard/vb-ident/internal/manifest"
	"github.com/virtualboard/vb-ident/internal/util"
)

func newBatchCommand() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "batch <manifest>",
		Short: "Sanitize every name listed in a YAML or JSON manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options()
			if err != nil {
				return err
			}
			format = strings.ToLower(format)
			if format == "" {
				format = "text"
			}
			switch format {
			case "text", "json", "yaml":
			default:
				return NewCLIError(ExitCodeValidation, fmt.Sprintf("unknown format %s", format))
			}

			m, err := manifest.Load(args[0])
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return WrapCLIError(ExitCodeNotFound, err)
				}
				return WrapCLIError(ExitCodeValidation, err)
			}
			res, err := m.Apply(opts.Mode)
			if err != nil {
				return WrapCLIError(ExitCodeValidation, err)
			}

			var buf bytes.Buffer
			switch format {
			case "json":
				err = util.PrintJSON(&buf, res)
			case "yaml":
				err = util.PrintYAML(&buf, res)
			default:
				buf.WriteString(util.RenderText(res))
			}
			if err != nil {
				return WrapCLIError(ExitCodeUnknown, err)
			}

			log := opts.Logger().WithFields(logrus.Fields{
				"component": "batch",
				"manifest":  args[0],
				"format":    format,
			})

			if opts.JSONOutput {
				payload := map[string]interface{}{
					"format":  format,
					"total":   res.Total,
					"changed": res.Changed,
				}
				if output != "" && output != util.StdoutTarget {
					if err := util.WriteFileAtomic(output, buf.Bytes(), 0o644); err != nil {
						return WrapCLIError(ExitCodeFilesystem, err)
					}
					payload["path"] = output
					payload["written"] = true
				} else {
					payload["written"] = false
					if format == "json" {
						payload["result"] = res
					} else {
						payload["content"] = buf.String()
					}
				}
				log.Info("batch complete")
				return respond(cmd, opts, true, "batch sanitized", payload)
			}

			written, err := util.WriteOutput(cmd.OutOrStdout(), output, buf.Bytes())
			if err != nil {
				return WrapCLIError(ExitCodeFilesystem, err)
			}
			log.WithField("written", written).Info("batch complete")
			if written {
				return respond(cmd, opts, true, fmt.Sprintf("Wrote %d names to %s", res.Total, output), nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&output, "output", "", "Output file path (use '-' or omit for stdout)")
	return cmd
}
