/*
Package yaml provides methods to parse feature.Feature specifications,
also known as metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"os"
	"sort"

	"github.com/jay-ng-mc/river/feature"
	yaml "gopkg.in/yaml.v2"
)

/*
Metadata represents the contents of a metadata document: the features
samples may define, and optionally the name of the feature a regressor
built on them should learn to predict.
*/
type Metadata struct {
	Features []feature.Feature
	Target   string
}

/*
ReadMetadata takes a slice of bytes with a feature specification in YML
and returns the Metadata parsed from it or an error.

The YML is expected to be an object containing a features property and
optionally a target property. The value for features should be an object
with a property for each feature with its name and either the string
value 'continuous' for continuous features or a list of valid values for
discrete features. The value for target, when given, should be the name
of one of the declared continuous features.

Features are returned sorted by name so that consumers iterating over
them produce stable output.
*/
func ReadMetadata(md []byte) (*Metadata, error) {
	metadata := struct {
		Features map[string]interface{}
		Target   string
	}{}
	err := yaml.Unmarshal(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml features: %v", err)
	}
	if metadata.Features == nil {
		return nil, fmt.Errorf("metadata file has no feature information")
	}
	features := []feature.Feature{}
	for fn, vs := range metadata.Features {
		switch values := vs.(type) {
		case string:
			features = append(features, feature.NewContinuousFeature(fn))
		case []interface{}:
			stringVs := []string{}
			for _, v := range values {
				stringVs = append(stringVs, fmt.Sprintf("%v", v))
			}
			features = append(features, feature.NewDiscreteFeature(fn, stringVs))
		case []string:
			features = append(features, feature.NewDiscreteFeature(fn, values))
		default:
			return nil, fmt.Errorf("invalid feature declaration of type %T", vs)
		}
	}
	sort.Slice(features, func(i, j int) bool { return features[i].Name() < features[j].Name() })
	if metadata.Target != "" {
		var target feature.Feature
		for _, f := range features {
			if f.Name() == metadata.Target {
				target = f
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("declared target %s is not a declared feature", metadata.Target)
		}
		if _, ok := target.(*feature.ContinuousFeature); !ok {
			return nil, fmt.Errorf("declared target %s is not a continuous feature", metadata.Target)
		}
	}
	return &Metadata{features, metadata.Target}, nil
}

/*
ReadFeatures takes a slice of bytes with a feature specification in YML
and returns a slice of features parsed from it or an error, ignoring any
target declaration.
*/
func ReadFeatures(md []byte) ([]feature.Feature, error) {
	metadata, err := ReadMetadata(md)
	if err != nil {
		return nil, err
	}
	return metadata.Features, nil
}

/*
ReadMetadataFromFile takes a filepath string, reads its contents and uses
ReadMetadata to parse it and return the metadata or an error. If the file
indicated by the filepath cannot be opened for reading an error will be
returned.
*/
func ReadMetadataFromFile(filepath string) (*Metadata, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading features yml file %s: %v", filepath, err)
	}
	metadata, err := ReadMetadata(md)
	if err != nil {
		err = fmt.Errorf("parsing features yml file %s: %v", filepath, err)
	}
	return metadata, err
}

/*
ReadFeaturesFromFile takes a filepath string, reads its contents and uses
ReadFeatures to parse it and return a slice of parsed features or an
error. If the file indicated by the filepath cannot be opened for reading
an error will be returned.
*/
func ReadFeaturesFromFile(filepath string) ([]feature.Feature, error) {
	metadata, err := ReadMetadataFromFile(filepath)
	if err != nil {
		return nil, err
	}
	return metadata.Features, nil
}
