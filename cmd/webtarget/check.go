// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate a client configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.configFile == "" {
				return errors.New("no client configuration file given; use --config")
			}
			configs, err := root.clientConfigs()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(configs))
			for name := range configs {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				cfg := configs[name]
				timeout := "none"
				if cfg.Timeout > 0 {
					timeout = cfg.Timeout.String()
				}
				fmt.Fprintf(out, "%s\ttimeout=%s credentials=%t headers=%d\n",
					name, timeout, cfg.Credentials != nil, len(cfg.Headers))
			}
			fmt.Fprintf(out, "%d client configuration(s) OK\n", len(names))
			return nil
		},
	}
}
