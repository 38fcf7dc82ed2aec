package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/virtualboard/vb-ident/internal/config"
	"github.com/virtualboard/vb-ident/internal/ident"
	"github.com/virtualboard/vb-ident/internal/manifest"
)

func newSanitizeCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "sanitize [input...]",
		Short: "Sanitize strings into identifiers",
		Long:  "Replace every character outside [A-Za-z0-9] with an underscore. Reads stdin line by line when no arguments are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options()
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd, args)
			if err != nil {
				return err
			}

			log := opts.Logger().WithField("component", "sanitize")
			entries := make([]manifest.Entry, 0, len(inputs))
			changed := 0
			for _, in := range inputs {
				out := opts.Mode.Sanitize(in)
				e := manifest.Entry{Input: in, Output: out, Changed: out != in}
				if e.Changed {
					changed++
				}
				entries = append(entries, e)
			}
			log.WithFields(logrus.Fields{
				"mode":    opts.Mode.String(),
				"total":   len(entries),
				"changed": changed,
			}).Info("sanitized inputs")

			if check {
				return checkEntries(cmd, opts, entries)
			}

			if opts.JSONOutput {
				return respond(cmd, opts, true, "sanitized", map[string]interface{}{
					"mode":    opts.Mode.String(),
					"total":   len(entries),
					"changed": changed,
					"entries": entries,
				})
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), e.Output)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Only verify the inputs are already identifiers; exit 1 otherwise")
	return cmd
}

func checkEntries(cmd *cobra.Command, opts *config.Options, entries []manifest.Entry) error {
	invalid := make([]string, 0)
	for _, e := range entries {
		if !ident.IsIdentifier(e.Input) {
			invalid = append(invalid, e.Input)
		}
	}
	if opts.JSONOutput {
		if err := respond(cmd, opts, len(invalid) == 0, "check", map[string]interface{}{
			"total":   len(entries),
			"invalid": invalid,
		}); err != nil {
			return err
		}
	} else {
		for _, in := range invalid {
			fmt.Fprintf(cmd.OutOrStdout(), "not an identifier: %q\n", in)
		}
	}
	if len(invalid) > 0 {
		return NewCLIError(ExitCodeValidation, fmt.Sprintf("%d of %d inputs are not identifiers", len(invalid), len(entries)))
	}
	return nil
}
