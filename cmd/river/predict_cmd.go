package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jay-ng-mc/river/dataset"
	"github.com/jay-ng-mc/river/dataset/inputsample"
	"github.com/jay-ng-mc/river/feature"
	"github.com/jay-ng-mc/river/feature/yaml"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	treeInput      string
	metadataInput  string
	undefinedValue string
	setValues      []string
}

type stdoutFeatureValueRequester string

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a value for a sample",
		Long:  `Use a trained tree to predict the target value for a sample, describing the sample with set flags or answering a reduced set of questions about its features`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			t, err := config.loadTree(config.treeInput, features, nil)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			sample, err := config.sample(features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			prediction, err := t.Predict(config.Context(), sample)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			fmt.Printf("Predicted value for the sample is %f\n", prediction)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features the tree was trained with (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file or a redis://[:password@]host:port[/db]/name URL from which the tree will be loaded (required)")
	cmd.PersistentFlags().StringVarP(&(config.undefinedValue), "undefined-value", "u", "?", "value to input to define a sample's value for a feature as undefined")
	cmd.PersistentFlags().StringArrayVarP(&(config.setValues), "set", "s", nil, "FEATURE=VALUE value of the sample for a feature, repeatable (when not set the values are requested interactively)")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	return nil
}

/*
sample builds the sample to predict for: from the set flags when any
was given, requesting values interactively on the standard input and
output otherwise. Interactive requests are made only for the features
the prediction actually needs.
*/
func (pcc *predictCmdConfig) sample(features []feature.Feature) (dataset.Sample, error) {
	if len(pcc.setValues) == 0 {
		return inputsample.New(os.Stdin, features, stdoutFeatureValueRequester(pcc.undefinedValue), pcc.undefinedValue), nil
	}
	featureValues := make(map[string]interface{})
	for _, sv := range pcc.setValues {
		parsedSV := strings.SplitN(sv, "=", 2)
		if len(parsedSV) != 2 {
			return nil, fmt.Errorf("set flag %q is not in FEATURE=VALUE form", sv)
		}
		f := featureByName(features, parsedSV[0])
		if f == nil {
			return nil, fmt.Errorf("set flag %q: feature %s is not defined", sv, parsedSV[0])
		}
		if parsedSV[1] == pcc.undefinedValue {
			continue
		}
		var value interface{} = parsedSV[1]
		if _, ok := f.(*feature.ContinuousFeature); ok {
			fv, err := strconv.ParseFloat(parsedSV[1], 64)
			if err != nil {
				return nil, fmt.Errorf("set flag %q: parsing value: %v", sv, err)
			}
			value = fv
		}
		if ok, err := f.Valid(value); !ok {
			return nil, fmt.Errorf("set flag %q: %v", sv, err)
		}
		featureValues[f.Name()] = value
	}
	return dataset.NewSample(featureValues), nil
}

func featureByName(features []feature.Feature, name string) feature.Feature {
	for _, f := range features {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func (sfvr stdoutFeatureValueRequester) RequestValueFor(f feature.Feature) error {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		fmt.Printf("Please provide the sample's %s:\n(valid values are %v or %s if undefined)\n", f.Name(), f.AvailableValues(), string(sfvr))
	case *feature.ContinuousFeature:
		fmt.Printf("Please provide the sample's %s:\n(valid values are real numbers or %s if undefined)\n", f.Name(), string(sfvr))
	default:
		return fmt.Errorf("unknown feature type %T", f)
	}
	return nil
}

func (sfvr stdoutFeatureValueRequester) RejectValueFor(f feature.Feature, value interface{}) error {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		fmt.Printf("%v is not a valid value for the sample's %s. Please provide one of %v or %s if undefined.\n", value, f.Name(), f.AvailableValues(), string(sfvr))
	case *feature.ContinuousFeature:
		fmt.Printf("%v is not a valid value for the sample's %s. Please provide a real number or %s if undefined.\n", value, f.Name(), string(sfvr))
	default:
		return fmt.Errorf("unknown feature type %T", f)
	}
	return nil
}
