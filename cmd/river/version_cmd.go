package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in river's version
	VersionMajor = 0
	// VersionMinor is the minor number in river's version
	VersionMinor = 1
	// VersionPatch is the patch number in river's version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of river",
		Long:  `All software has versions. This is river's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("river v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
