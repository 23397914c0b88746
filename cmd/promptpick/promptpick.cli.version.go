package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// versionOutput represents JSON output for version
type versionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// versionsYAML represents the versions.yaml file structure
type versionsYAML struct {
	Project struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"project"`
	Git struct {
		Commit string `yaml:"commit"`
		Branch string `yaml:"branch"`
	} `yaml:"git"`
	Build struct {
		Time      string `yaml:"time"`
		GoVersion string `yaml:"go_version"`
	} `yaml:"build"`
}

var versionSearchPaths = []string{"versions.yaml", "../versions.yaml", "../../versions.yaml"}

func newVersionCommand(cio *cliIO) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   CmdNameVersion,
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}
			v := getVersionInfo(versionSearchPaths)
			if format == OutputFormatJSON {
				if err := writeJSON(FlagDefaultOutput, v, cio.stdout); err != nil {
					return commandError(ErrMsgWriteOutputFailed, err)
				}
				return nil
			}
			fmt.Fprintf(cio.stdout, VersionTextTemplate+FmtNewline,
				v.Version, v.Commit, v.Branch, v.BuildTime, v.GoVersion)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	return cmd
}

// getVersionInfo reads the first parseable versions.yaml among paths
func getVersionInfo(paths []string) *versionOutput {
	v := &versionOutput{
		Version:   VersionUnknown,
		Commit:    VersionUnknown,
		Branch:    VersionUnknown,
		BuildTime: VersionUnknown,
		GoVersion: runtime.Version(),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var vy versionsYAML
		if err := yaml.Unmarshal(data, &vy); err != nil {
			continue
		}

		setIfPresent(&v.Version, vy.Project.Version)
		setIfPresent(&v.Commit, vy.Git.Commit)
		setIfPresent(&v.Branch, vy.Git.Branch)
		setIfPresent(&v.BuildTime, vy.Build.Time)
		setIfPresent(&v.GoVersion, vy.Build.GoVersion)
		break
	}
	return v
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
