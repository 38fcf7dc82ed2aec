package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/virtualboard/vb-ident/internal/upgrade"
	"github.com/virtualboard/vb-ident/internal/version"
)

// newUpgrader is replaced in tests to point at a fake release server.
var newUpgrader = func(cmd *cobra.Command) (*upgrade.Upgrader, error) {
	opts, err := options()
	if err != nil {
		return nil, err
	}
	return upgrade.NewUpgrader(opts.Logger()), nil
}

func newUpgradeCommand() *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade vbid to the latest version",
		Long:  "Check GitHub releases for a newer vbid and replace the running binary if one is available.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options()
			if err != nil {
				return err
			}
			upgrader, err := newUpgrader(cmd)
			if err != nil {
				return err
			}

			var res *upgrade.Result
			if checkOnly {
				res, err = upgrader.Check(cmd.Context(), version.Current)
			} else {
				res, err = upgrader.Upgrade(cmd.Context(), version.Current)
			}
			if err != nil {
				code := ExitCodeNetwork
				if errors.Is(err, os.ErrPermission) {
					code = ExitCodeFilesystem
					err = errors.New("upgrade failed: permission denied. Please run with sudo to upgrade the binary")
				} else if errors.Is(err, upgrade.ErrReplaceFailed) {
					code = ExitCodeFilesystem
				}
				if opts.JSONOutput {
					if rerr := respond(cmd, opts, false, "upgrade failed", map[string]interface{}{
						"error":           err.Error(),
						"current_version": version.Current,
					}); rerr != nil {
						return rerr
					}
				}
				return WrapCLIError(code, err)
			}

			if opts.JSONOutput {
				return respond(cmd, opts, true, "upgrade", res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether a newer version exists")
	return cmd
}
