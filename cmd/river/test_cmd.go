package main

import (
	"fmt"
	"os"

	"github.com/jay-ng-mc/river"
	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/feature/yaml"
	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	treeInput     string
	dataInput     string
	metadataInput string
	targetFeature string
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a tree",
		Long:  `Test the performance of a tree against a stream of data with a prequential evaluation: every sample is predicted before it is learned, so the reported errors estimate the tree's performance on unseen data.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			metadata, err := yaml.ReadMetadataFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			features := metadata.Features
			if config.targetFeature == "" {
				config.targetFeature = metadata.Target
			}
			if config.targetFeature == "" {
				fmt.Fprintln(os.Stderr, "no target feature: set the target-feature flag or declare a target on the metadata")
				os.Exit(3)
			}
			var target feature.Feature
			for i, f := range features {
				if f.Name() == config.targetFeature {
					target = f
					features[i], features[len(features)-1] = features[len(features)-1], features[i]
					break
				}
			}
			if target == nil {
				fmt.Fprintf(os.Stderr, "target feature '%s' is not defined\n", config.targetFeature)
				os.Exit(3)
			}
			t, err := config.loadTree(config.treeInput, features[0:len(features)-1], nil)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			stream, err := config.datasetInput(config.dataInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			config.Logf("Testing tree against stream...")
			report, err := river.Evaluate(config.Context(), t, stream, target)
			if err != nil {
				fmt.Fprintf(os.Stderr, "testing tree: %v\n", err)
				os.Exit(6)
			}
			config.Logf("Done")
			fmt.Println(report)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv), JSON (.json) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to test the tree against (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file or a redis://[:password@]host:port[/db]/name URL from which the tree to test will be loaded (required)")
	cmd.PersistentFlags().StringVarP(&(config.targetFeature), "target-feature", "c", "", "name of the feature the tree predicts (defaults to the target declared on the metadata)")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}
