// Package options defines the comparison options, the two presets of
// default values and the normalizer that completes a partial configuration.
//
// Normalization walks an ordered rule table. Each rule is a Literal or a
// Computed default; Computed defaults read options resolved by earlier rules
// (a serve command embeds its dist directory) and run only when their option
// is absent, so a supplied control-sha never triggers a git call.
package options
