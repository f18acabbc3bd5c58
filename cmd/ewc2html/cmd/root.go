// Copyright 2026 The EWC Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the ewc2html command line tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wikicreole/ewc"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ewc2html INPUT.txt OUTPUT.html",
	Short: "converts Extended WikiCreole markup to an HTML4 fragment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		headingDepth, _ := flags.GetInt("heading-depth")
		compact, _ := flags.GetBool("compact")
		inputEncoding := viper.GetString("input_encoding")
		outputEncoding := viper.GetString("output_encoding")
		includePath := viper.GetString("include_path")
		localLinkPattern := viper.GetString("local_link_pattern")
		localImagePattern := viper.GetString("local_image_pattern")
		nakedURLs := viper.GetBool("naked_urls")
		emAndStrong := viper.GetBool("em_and_strong")

		src, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("ewc2html: %w", err)
		}
		defer src.Close()

		cfg := ewc.Config{
			InputEncoding:     inputEncoding,
			OutputEncoding:    outputEncoding,
			LocalLinkPattern:  localLinkPattern,
			LocalImagePattern: localImagePattern,
			CompactHTML:       compact,
			IncludePath:       includePath,
			NakedURLs:         nakedURLs,
			EmAndStrong:       emAndStrong,
		}
		p := ewc.NewParser(cfg)

		doc, err := p.Parse(ewc.NewDecoder(src, inputEncoding))
		if err != nil {
			return fmt.Errorf("ewc2html: %w", err)
		}

		html, err := p.RenderHTML(doc, headingDepth)
		if err != nil {
			return fmt.Errorf("ewc2html: %w", err)
		}

		if err := os.WriteFile(args[1], []byte(html), 0o644); err != nil {
			return fmt.Errorf("ewc2html: %w", err)
		}
		return nil
	},
}

// Execute runs the root command and exits the process with a non-zero
// status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ewc2html.yaml)")

	flags := rootCmd.Flags()
	flags.Int("heading-depth", 0, "offset added to every heading level before clamping to h1-h6")
	flags.Bool("compact", false, "omit the newline ewc2html otherwise inserts before each opening tag")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".ewc2html")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
