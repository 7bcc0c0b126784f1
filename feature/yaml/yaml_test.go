package yaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jay-ng-mc/river/feature"
	"github.com/stretchr/testify/require"
)

const weatherMetadata = `
features:
  temperature: continuous
  humidity: continuous
  outlook: [sunny, overcast, rain]
  windy: [true, false]
target: temperature
`

func TestReadMetadataParsesFeaturesSortedByName(t *testing.T) {
	metadata, err := ReadMetadata([]byte(weatherMetadata))
	require.NoError(t, err)
	require.Equal(t, "temperature", metadata.Target)
	require.Len(t, metadata.Features, 4)

	var names []string
	for _, f := range metadata.Features {
		names = append(names, f.Name())
	}
	require.Equal(t, []string{"humidity", "outlook", "temperature", "windy"}, names)

	outlook, ok := metadata.Features[1].(*feature.DiscreteFeature)
	require.True(t, ok)
	require.Equal(t, []string{"sunny", "overcast", "rain"}, outlook.AvailableValues())

	_, ok = metadata.Features[0].(*feature.ContinuousFeature)
	require.True(t, ok)

	windy, ok := metadata.Features[3].(*feature.DiscreteFeature)
	require.True(t, ok)
	require.Equal(t, []string{"true", "false"}, windy.AvailableValues())
}

func TestReadMetadataWithoutTarget(t *testing.T) {
	metadata, err := ReadMetadata([]byte("features:\n  x: continuous\n"))
	require.NoError(t, err)
	require.Equal(t, "", metadata.Target)
	require.Len(t, metadata.Features, 1)
}

func TestReadMetadataRejectsUnknownTarget(t *testing.T) {
	_, err := ReadMetadata([]byte("features:\n  x: continuous\ntarget: y\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a declared feature")
}

func TestReadMetadataRejectsDiscreteTarget(t *testing.T) {
	_, err := ReadMetadata([]byte("features:\n  color: [red, blue]\ntarget: color\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a continuous feature")
}

func TestReadMetadataRejectsMissingFeatures(t *testing.T) {
	_, err := ReadMetadata([]byte("target: x\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no feature information")
}

func TestReadMetadataRejectsInvalidFeatureDeclaration(t *testing.T) {
	_, err := ReadMetadata([]byte("features:\n  x: 42\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid feature declaration")
}

func TestReadFeaturesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.yml")
	require.NoError(t, os.WriteFile(path, []byte(weatherMetadata), 0600))

	features, err := ReadFeaturesFromFile(path)
	require.NoError(t, err)
	require.Len(t, features, 4)
}

func TestReadFeaturesFromMissingFile(t *testing.T) {
	_, err := ReadFeaturesFromFile(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "nope.yml")
}
