package main

import (
	"fmt"
	"os"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/feature/yaml"
	"github.com/spf13/cobra"
)

type setCmdConfig struct {
	*rootCmdConfig
	setInput      string
	metadataInput string
	setOutput     string
}

func setCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &setCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Manage datasets",
		Long:  `Copy and inspect datasets across backends`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			config.Logf("Features from metadata read")

			output, err := config.datasetOutput(config.setOutput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			stream, err := config.datasetInput(config.setInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}

			var written int
			var writeErr error
			sampleStream, errStream := stream.Read(config.Context())
			for s := range sampleStream {
				_, writeErr = output.Write(config.Context(), []dataset.Sample{s})
				if writeErr != nil {
					cancel := config.ContextCancelFunc()
					cancel()
					break
				}
				written++
			}
			err = <-errStream
			if writeErr != nil {
				fmt.Fprintln(os.Stderr, writeErr)
				os.Exit(5)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			config.Logf("Flushing output dataset...")
			err = output.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			config.Logf("Done")
			config.Logf("Copied %d samples into the output dataset", written)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.setInput), "input", "i", "", "path to an input CSV (.csv), JSON (.json) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the dataset to read (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.setOutput), "output", "o", "", "path to a CSV (.csv), JSON (.json) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL to dump the dataset to (defaults to STDOUT in CSV)")
	cmd.AddCommand(splitCmd(config))
	return cmd
}

func (scc *setCmdConfig) Validate() error {
	if scc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}
