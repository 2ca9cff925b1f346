// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-omf/omf"
)

const version = "0.1.0"

var (
	cfgPath    string
	wantRecords, wantTables, wantWarnings, wantAnomalies, wantAll bool
)

func prettyPrint(v interface{}) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<error marshaling: %v>", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func dumpOne(path string, cfg config) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("reading %s: %v", path, err)
		return
	}

	f, err := omf.OpenBytes(data, nil)
	if err != nil {
		log.Printf("parsing %s: %v", path, err)
		return
	}

	if cfg.All || cfg.Records {
		if f.Module != nil {
			fmt.Println(prettyPrint(f.Module.Records))
		} else {
			for _, mod := range f.Library.Modules {
				fmt.Println(prettyPrint(mod.Records))
			}
		}
	}
	if cfg.All || cfg.Tables {
		if f.Module != nil {
			fmt.Printf("names=%d segments=%d groups=%d externs=%d\n",
				f.Module.NumNames(), f.Module.NumSegments(), f.Module.NumGroups(), f.Module.NumExterns())
		}
	}
	if cfg.All || cfg.Warnings {
		var warnings []omf.Warning
		if f.Module != nil {
			warnings = f.Module.Warnings
		} else {
			warnings = f.Library.Warnings
		}
		for _, w := range warnings {
			fmt.Println(w.String())
		}
	}
	if cfg.All || cfg.Anomalies {
		if f.Module != nil {
			for _, a := range f.Module.Anomalies {
				fmt.Println(a)
			}
		}
	}
}

func dumpPath(path string, cfg config) {
	if !isDirectory(path) {
		dumpOne(path, cfg)
		return
	}
	filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			dumpOne(p, cfg)
		}
		return nil
	})
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "omfdump",
		Short: "A Relocatable Object Module Format (OMF) parser and dumper",
		Long:  "omfdump decodes 8086/80286/80386 OMF object files and static libraries and reports their structure.",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "path to a TOML file of default flag values")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the omfdump version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("omfdump version", version)
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [file or directory]...",
		Short: "Decode and print OMF modules or libraries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("reading config %s: %w", cfgPath, err)
			}
			if cmd.Flags().Changed("records") {
				cfg.Records = wantRecords
			}
			if cmd.Flags().Changed("tables") {
				cfg.Tables = wantTables
			}
			if cmd.Flags().Changed("warnings") {
				cfg.Warnings = wantWarnings
			}
			if cmd.Flags().Changed("anomalies") {
				cfg.Anomalies = wantAnomalies
			}
			if cmd.Flags().Changed("all") {
				cfg.All = wantAll
			}
			for _, path := range args {
				dumpPath(path, cfg)
			}
			return nil
		},
	}
	dumpCmd.Flags().BoolVar(&wantRecords, "records", false, "print the decoded record sequence")
	dumpCmd.Flags().BoolVar(&wantTables, "tables", false, "print table summary counts")
	dumpCmd.Flags().BoolVar(&wantWarnings, "warnings", false, "print non-fatal parse warnings")
	dumpCmd.Flags().BoolVar(&wantAnomalies, "anomalies", false, "print structural anomalies")
	dumpCmd.Flags().BoolVar(&wantAll, "all", false, "print everything")

	verifyCmd := &cobra.Command{
		Use:   "verify [file or directory]...",
		Short: "Re-dump and re-checksum a module, reporting any mismatch (libraries are skipped)",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, path := range args {
				verifyPath(path)
			}
		},
	}

	rootCmd.AddCommand(versionCmd, dumpCmd, verifyCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func verifyOne(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("reading %s: %v", path, err)
		return
	}
	f, err := omf.OpenBytes(data, nil)
	if err != nil {
		log.Printf("%s: parse failed: %v", path, err)
		return
	}
	if f.Module == nil {
		fmt.Printf("%s: library, skipping checksum verification\n", path)
		return
	}
	warnings := omf.VerifyChecksums(f.Module)
	if len(warnings) == 0 {
		fmt.Printf("%s: OK\n", path)
		return
	}
	for _, w := range warnings {
		fmt.Printf("%s: %s\n", path, w.String())
	}
}

func verifyPath(path string) {
	if !isDirectory(path) {
		verifyOne(path)
		return
	}
	filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			verifyOne(p)
		}
		return nil
	})
}
