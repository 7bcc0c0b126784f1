package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jay-ng-mc/river"
	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/feature/yaml"
	"github.com/jay-ng-mc/river/tree"
	"github.com/jay-ng-mc/river/tree/linear"
	"github.com/spf13/cobra"
)

type trainCmdConfig struct {
	*rootCmdConfig
	dataInput       string
	metadataInput   string
	treeOutput      string
	targetFeature   string
	leafModel       string
	gracePeriod     int
	splitConfidence float64
	tieThreshold    float64
	maxDepth        int
	maxSize         float64
	binarySplit     bool
	nominal         []string
	reportEvery     int
}

func trainCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &trainCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a tree on a stream of data",
		Long:  `Train a tree on a stream of data to predict a certain feature, one sample at a time.`,
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
			trainFeatures := features[0 : len(features)-1]
			opts, err := config.treeOptions(trainFeatures)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			stream, err := config.datasetInput(config.dataInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			t := tree.New(trainFeatures, opts)
			config.Logf("Training tree on stream to predict %s with %d features...", target.Name(), len(trainFeatures))
			count, err := river.Train(config.Context(), t, stream, target, &river.TrainOptions{
				ReportEvery: config.reportEvery,
				Logf:        config.Logf,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "training tree: %v\n", err)
				os.Exit(6)
			}
			summary := t.Summary()
			config.Logf("Done")
			config.Logf("Learned %d samples into %d nodes: %d active leaves, %d inactive leaves, %d option branches", count, summary.Nodes, summary.ActiveLeaves, summary.InactiveLeaves, summary.OptionBranches)
			err = config.storeTree(config.treeOutput, t, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv), JSON (.json) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to train the tree on (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeOutput), "output", "o", "", "path to a file or a redis://[:password@]host:port[/db][/name] URL where the trained tree will be stored in JSON format (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.targetFeature), "target-feature", "c", "", "name of the feature the tree learns to predict (defaults to the target declared on the metadata)")
	cmd.PersistentFlags().StringVar(&(config.leafModel), "leaf-model", "linear", "model fit at every leaf to refine its predictions, the following are valid: mean, linear, linear:[LEARNING-RATE]")
	cmd.PersistentFlags().IntVar(&(config.gracePeriod), "grace-period", 0, "weight a leaf must accumulate between split attempts (defaults to 200)")
	cmd.PersistentFlags().Float64Var(&(config.splitConfidence), "split-confidence", 0, "allowed probability of a wrong split decision (defaults to 1e-7)")
	cmd.PersistentFlags().Float64Var(&(config.tieThreshold), "tie-threshold", 0, "bound below which tied split candidates stop being told apart (defaults to 0.05)")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", 0, "depth beyond which leaves stop growing (defaults to 0: unbounded)")
	cmd.PersistentFlags().Float64Var(&(config.maxSize), "max-size", 0, "memory budget for the tree in MB (defaults to 100)")
	cmd.PersistentFlags().BoolVar(&(config.binarySplit), "binary-split", false, "restrict splits on discrete features to one-against-the-rest instead of one child per value")
	cmd.PersistentFlags().StringSliceVar(&(config.nominal), "nominal", nil, "names of continuous features to treat as nominal")
	cmd.PersistentFlags().IntVar(&(config.reportEvery), "report-every", 10000, "number of learned samples between progress reports (0 disables them)")
	return cmd
}

func (tcc *trainCmdConfig) Validate() error {
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

func (tcc *trainCmdConfig) treeOptions(trainFeatures []feature.Feature) (*tree.Options, error) {
	model, err := leafModel(tcc.leafModel, trainFeatures)
	if err != nil {
		return nil, err
	}
	return &tree.Options{
		GracePeriod:       tcc.gracePeriod,
		SplitConfidence:   tcc.splitConfidence,
		TieThreshold:      tcc.tieThreshold,
		MaxDepth:          tcc.maxDepth,
		MaxSize:           tcc.maxSize,
		BinarySplit:       tcc.binarySplit,
		NominalAttributes: tcc.nominal,
		Model:             model,
		Logf:              tcc.Logf,
	}, nil
}

func leafModel(lm string, features []feature.Feature) (tree.Model, error) {
	parsedLM := strings.Split(lm, ":")
	lmParams := parsedLM[1:]
	switch parsedLM[0] {
	case "mean":
		return nil, nil
	case "linear":
		var learningRate float64
		if len(lmParams) > 0 {
			var err error
			learningRate, err = strconv.ParseFloat(lmParams[0], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing linear leaf model learning rate: %v", err)
			}
		}
		return linear.New(features, learningRate), nil
	}
	return nil, fmt.Errorf("unknown leaf model %s", parsedLM[0])
}
