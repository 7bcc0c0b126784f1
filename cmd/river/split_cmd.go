package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/feature/yaml"
	"github.com/spf13/cobra"
)

type splitCmdConfig struct {
	*setCmdConfig
	splitOutput      string
	splitProbability int
}

func splitCmd(setConfig *setCmdConfig) *cobra.Command {
	config := &splitCmdConfig{setCmdConfig: setConfig}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a dataset into two datasets",
		Long:  `Split a dataset into an output dataset and a split dataset, assigning each sample at random`,
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
			splitOutput, err := config.datasetOutput(config.splitOutput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			stream, err := config.datasetInput(config.setInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}

			randomizer := rand.New(rand.NewSource(time.Now().UnixNano()))
			var outputCount, splitCount int
			var writeErr error
			sampleStream, errStream := stream.Read(config.Context())
			for s := range sampleStream {
				if (100 * randomizer.Float32()) > float32(config.splitProbability) {
					_, writeErr = output.Write(config.Context(), []dataset.Sample{s})
					outputCount++
				} else {
					_, writeErr = splitOutput.Write(config.Context(), []dataset.Sample{s})
					splitCount++
				}
				if writeErr != nil {
					cancel := config.ContextCancelFunc()
					cancel()
					break
				}
			}
			err = <-errStream
			if writeErr != nil {
				fmt.Fprintln(os.Stderr, writeErr)
				os.Exit(6)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			config.Logf("Flushing output dataset...")
			err = output.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			config.Logf("Flushing split dataset...")
			err = splitOutput.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
			config.Logf("Done")
			config.Logf("Input dataset with %d samples was split into datasets with %d and %d samples", outputCount+splitCount, outputCount, splitCount)
		},
	}
	cmd.Flags().IntVarP(&(config.splitProbability), "split-probability", "p", 20, "probability as percent integer that a sample of the dataset will be assigned to the split dataset")
	cmd.Flags().StringVarP(&(config.splitOutput), "split-output", "s", "", "path or connection URL to dump the split dataset to (required)")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	if scc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if scc.splitProbability <= 0 || scc.splitProbability > 100 {
		return fmt.Errorf("split-probability flag was set to an invalid value: it must be set to an integer between 1 and 100")
	}
	return nil
}
