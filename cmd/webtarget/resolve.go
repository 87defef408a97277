// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opentofu/webtarget/binding"
	"github.com/opentofu/webtarget/webtarget"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	var (
		base   string
		params []string
	)
	cmd := &cobra.Command{
		Use:   "resolve TEMPLATE",
		Short: "Resolve a URI template against path parameters and a base URI",
		Example: `  webtarget resolve '/items/{id}' --base https://api.example.com/v1/ --param id=42
  webtarget resolve 'https://inventory.example.com/{sku}' -p sku=A-1 -c clients.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := requestFromFlags(base, params)
			if err != nil {
				return err
			}
			configs, err := root.clientConfigs()
			if err != nil {
				return err
			}

			logger := root.logger(cmd.ErrOrStderr())
			reg := binding.NewRegistry()
			webtarget.Register(reg, binding.Properties{
				webtarget.ConfigurationProperty: configs,
			}, webtarget.WithTrace(logTrace(logger)))

			f, err := reg.Bind(binding.Descriptor{
				Name: args[0],
				Type: webtarget.TargetType,
				Kind: binding.KindURI,
			})
			if err != nil {
				return err
			}
			v, err := f.Value(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v.(*webtarget.Target))
			return err
		},
	}
	cmd.Flags().StringVarP(&base, "base", "b", "", "base URI of the request, for relative templates")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "path parameter as NAME=VALUE; repeat a name to capture several values")
	return cmd
}

func requestFromFlags(base string, params []string) (*binding.Request, error) {
	req := &binding.Request{
		Params: make(map[string][]string, len(params)),
	}
	for _, p := range params {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid path parameter %q: must be NAME=VALUE", p)
		}
		req.Params[name] = append(req.Params[name], value)
	}
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid base URI: %w", err)
		}
		if !u.IsAbs() {
			return nil, fmt.Errorf("invalid base URI %q: must be absolute", base)
		}
		req.Base = u
	}
	return req, nil
}
