// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"io"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opentofu/webtarget/webtarget"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "webtarget",
		Short:        "Resolve outbound target URI templates",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML file of named client configurations")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log binding and resolution events")

	cmd.AddCommand(newResolveCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	return cmd
}

func (o *rootOptions) logger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func (o *rootOptions) clientConfigs() (map[string]*webtarget.ClientConfig, error) {
	if o.configFile == "" {
		return nil, nil
	}
	return webtarget.LoadClientConfigs(o.configFile)
}

// logTrace returns a trace that reports each event to the given logger.
func logTrace(logger logrus.FieldLogger) *webtarget.Trace {
	return &webtarget.Trace{
		FactoryCreated: func(template string, override bool) {
			logger.WithFields(logrus.Fields{
				"template": template,
				"override": override,
			}).Debug("bound target parameter")
		},
		TargetResolved: func(_ context.Context, template string, u *url.URL) {
			logger.WithFields(logrus.Fields{
				"template": template,
				"url":      u.String(),
			}).Debug("resolved target")
		},
		TargetFailed: func(_ context.Context, template string, err error) {
			logger.WithError(err).WithField("template", template).Error("failed to resolve target")
		},
	}
}
