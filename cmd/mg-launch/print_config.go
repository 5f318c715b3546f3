// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/marketing-generator/mg-launch/cmd/mg-launch/cli"
	"github.com/marketing-generator/mg-launch/lib/config"
	"github.com/marketing-generator/mg-launch/lib/launch"
)

type printConfigParams struct {
	commonParams
	cli.JSONOutput
}

// resolvedConfig is the print-config document. It names the required
// variables but never carries their values.
type resolvedConfig struct {
	SettingsFile string                    `json:"settings_file,omitempty" yaml:"settings_file,omitempty"`
	Required     []requiredVariable        `json:"required" yaml:"required"`
	Launch       launch.Summary            `json:"launch" yaml:"launch"`
	SmokeCheck   config.SmokeCheckSettings `json:"smoke_check" yaml:"smoke_check"`
	Health       config.HealthSettings     `json:"health" yaml:"health"`
}

type requiredVariable struct {
	Name string `json:"name" yaml:"name"`
	Set  bool   `json:"set" yaml:"set"`
}

func (a *app) printConfigCommand() *cli.Command {
	var params printConfigParams

	return &cli.Command{
		Name:    "print-config",
		Summary: "Print the resolved launch parameters",
		Description: `Resolve defaults and print the parameters "run" would use, as YAML
(default) or JSON. Required variables are listed by name with whether
they are set; their values are never printed.`,
		Usage: "mg-launch print-config [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("print-config", pflag.ContinueOnError)
			params.addFlags(flagSet)
			params.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Usage("unexpected argument: %s", args[0])
			}
			return a.printConfig(params)
		},
	}
}

func (a *app) printConfig(params printConfigParams) error {
	if _, err := params.logger(a, "print-config"); err != nil {
		return err
	}

	loaded, err := a.loadEnvironment(params.commonParams)
	if err != nil {
		return err
	}
	spec, err := launch.Resolve(loaded.set, loaded.settings)
	if err != nil {
		return err
	}
	effective := loaded.settings.ForEnvironment(spec.Environment)

	document := resolvedConfig{
		SettingsFile: loaded.settingsPath,
		Launch:       spec.Summary(),
		SmokeCheck:   effective.SmokeCheck,
		Health:       effective.Health,
	}
	for _, key := range effective.Required {
		document.Required = append(document.Required, requiredVariable{Name: key, Set: loaded.set.Has(key)})
	}

	if done, err := params.EmitJSON(a.stdout, document); done {
		return err
	}
	data, err := yaml.Marshal(document)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	_, err = a.stdout.Write(data)
	return err
}
