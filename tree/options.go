package tree

import (
	"github.com/jay-ng-mc/river/tree/splitter"
)

const (
	/*
		LeafPredictionMean identifies the leaf prediction mode in which
		leaves predict the running mean of their target statistics.
	*/
	LeafPredictionMean = "mean"
	/*
		LeafPredictionModel identifies the leaf prediction mode in which
		leaves predict with the model they hold. This is the only mode
		trees support: other modes are coerced to it when a tree is
		built.
	*/
	LeafPredictionModel = "model"
	/*
		LeafPredictionAdaptive identifies the leaf prediction mode in
		which leaves choose between their model and their running mean
		according to which has been faring better.
	*/
	LeafPredictionAdaptive = "adaptive"
)

const (
	defaultGracePeriod          = 200
	defaultSplitConfidence      = 1e-07
	defaultTieThreshold         = 0.05
	defaultModelSelectorDecay   = 0.95
	defaultMinSamplesSplit      = 5.0
	defaultMaxSizeMB            = 100.0
	defaultMemoryEstimatePeriod = 1000000
)

/*
Options gathers the knobs that govern how a tree grows.

A zero-value Options is usable: every field left at its zero value is
replaced with its default when the tree is built. Callers are trusted
to provide sensible values, no range validation is applied.
*/
type Options struct {
	// GracePeriod is the weight a leaf must accumulate between
	// attempts to split. Defaults to 200.
	GracePeriod int
	// MaxDepth is the depth beyond which leaves stop growing. Zero or
	// negative values leave the depth unbounded.
	MaxDepth int
	// SplitConfidence is the allowed probability of the split
	// decision being wrong, the delta of the Hoeffding bound.
	// Defaults to 1e-7.
	SplitConfidence float64
	// TieThreshold is the bound below which ties between candidate
	// splits are broken anyway. Defaults to 0.05.
	TieThreshold float64
	// LeafPrediction names the prediction mode leaves use. Only
	// LeafPredictionModel is supported: any other value is coerced to
	// it, with a notice through Logf.
	LeafPrediction string
	// ModelSelectorDecay is the exponential decay applied to the
	// faded error of leaf models under LeafPredictionAdaptive.
	// Defaults to 0.95. It is kept for interface parity and has no
	// effect, as adaptive prediction is coerced to model prediction.
	ModelSelectorDecay float64
	// NominalAttributes lists features to treat as nominal even when
	// declared continuous.
	NominalAttributes []string
	// Splitter is the prototype cloned into every leaf to track
	// continuous features. Defaults to an EBST splitter.
	Splitter splitter.Splitter
	// MinSamplesSplit is the weight every resulting child of a
	// candidate split must hold for the candidate to have merit.
	// Defaults to 5.
	MinSamplesSplit float64
	// BinarySplit restricts nominal features to one-against-the-rest
	// splits instead of one child per category.
	BinarySplit bool
	// MaxSize is the memory budget for the tree, in MB. Defaults to
	// 100.
	MaxSize float64
	// MemoryEstimatePeriod is the number of learning calls between
	// recomputations of the tree's memory estimate. Defaults to
	// 1000000.
	MemoryEstimatePeriod int
	// StopMemManagement halts growth for good when the memory budget
	// is first exceeded, instead of deactivating leaves.
	StopMemManagement bool
	// RemovePoorAttrs disables clearly poor features at leaves when a
	// split attempt finds them.
	RemovePoorAttrs bool
	// NoMeritPreprune disables merit pre-pruning. By default a null
	// split competes with the candidate splits of a leaf, so that
	// leaves whose best candidate is no better than not splitting are
	// deactivated instead of split.
	NoMeritPreprune bool
	// Model is the prototype cloned into leaves that have no parent
	// model to inherit from. Leaves with a nil model predict their
	// running mean.
	Model Model
	// Logf, when not nil, receives notices about configuration
	// coercions. The tree never writes anywhere by itself.
	Logf func(format string, args ...interface{})
}

/*
withDefaults returns a copy of the given options with every zero-value
field replaced by its default, coercing the leaf prediction mode to
LeafPredictionModel when needed. A nil o is taken as the zero value.
*/
func withDefaults(o *Options) Options {
	var opts Options
	if o != nil {
		opts = *o
	}
	if opts.GracePeriod == 0 {
		opts.GracePeriod = defaultGracePeriod
	}
	if opts.SplitConfidence == 0 {
		opts.SplitConfidence = defaultSplitConfidence
	}
	if opts.TieThreshold == 0 {
		opts.TieThreshold = defaultTieThreshold
	}
	if opts.LeafPrediction == "" {
		opts.LeafPrediction = LeafPredictionModel
	}
	if opts.LeafPrediction != LeafPredictionModel {
		if opts.Logf != nil {
			opts.Logf("leaf prediction mode %q not supported, reverting to %q", opts.LeafPrediction, LeafPredictionModel)
		}
		opts.LeafPrediction = LeafPredictionModel
	}
	if opts.ModelSelectorDecay == 0 {
		opts.ModelSelectorDecay = defaultModelSelectorDecay
	}
	if opts.Splitter == nil {
		opts.Splitter = splitter.NewEBST()
	}
	if opts.MinSamplesSplit == 0 {
		opts.MinSamplesSplit = defaultMinSamplesSplit
	}
	if opts.MaxSize == 0 {
		opts.MaxSize = defaultMaxSizeMB
	}
	if opts.MemoryEstimatePeriod == 0 {
		opts.MemoryEstimatePeriod = defaultMemoryEstimatePeriod
	}
	return opts
}
