//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() *OptionSpec {
	return &OptionSpec{
		Fields: map[string]Field{
			"aspect_ratio": {Kind: KindString, Enum: []string{"1:1", "16:9"}, Default: "1:1"},
			"duration":     {Kind: KindInt, IntEnum: []int{4, 6, 8}, Default: 8},
			"stability":    {Kind: KindFloat, Range: &Range{Min: 0, Max: 1}},
			"seed":         {Kind: KindInt, Range: &Range{Min: 0, Max: 0}},
			"loop":         {Kind: KindBool, Default: false},
		},
		Rules: []Rule{
			{
				Name: "square needs short duration",
				Check: func(opts Options) string {
					if opts.String("aspect_ratio") == "1:1" && opts.Int("duration") == 4 {
						return "aspect_ratio=1:1 cannot be combined with duration=4"
					}
					return ""
				},
			},
		},
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	out, err := testSpec().Normalize(nil)
	require.NoError(t, err)
	assert.Equal(t, "1:1", out.String("aspect_ratio"))
	assert.Equal(t, 8, out.Int("duration"))
	assert.False(t, out.Bool("loop"))
	// Optional fields without defaults stay absent.
	assert.False(t, out.Has("stability"))
	assert.False(t, out.Has("seed"))
}

func TestNormalizeRejectsUnknownOption(t *testing.T) {
	_, err := testSpec().Normalize(Options{"bogus": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.Contains(t, err.Error(), "bogus")
}

func TestNormalizeEnumViolations(t *testing.T) {
	_, err := testSpec().Normalize(Options{"aspect_ratio": "4:3"})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = testSpec().Normalize(Options{"duration": 5})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestNormalizeRangeViolations(t *testing.T) {
	_, err := testSpec().Normalize(Options{"stability": 1.5})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = testSpec().Normalize(Options{"stability": -0.1})
	assert.ErrorIs(t, err, ErrInvalidOption)

	// Max <= Min means unbounded above.
	out, err := testSpec().Normalize(Options{"seed": 4294967295})
	require.NoError(t, err)
	assert.Equal(t, 4294967295, out.Int("seed"))

	_, err = testSpec().Normalize(Options{"seed": -1})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestNormalizeTypeCoercion(t *testing.T) {
	// JSON-style float64 integers are accepted for int fields.
	out, err := testSpec().Normalize(Options{"duration": float64(6)})
	require.NoError(t, err)
	assert.Equal(t, 6, out.Int("duration"))

	_, err = testSpec().Normalize(Options{"duration": 6.5})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = testSpec().Normalize(Options{"loop": "yes"})
	assert.ErrorIs(t, err, ErrInvalidOption)

	// Int values are accepted for float fields.
	out, err = testSpec().Normalize(Options{"stability": 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Float("stability"))
}

func TestNormalizeCombinationRule(t *testing.T) {
	_, err := testSpec().Normalize(Options{"duration": 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOptionCombination)

	// The same duration with the other aspect ratio is fine.
	_, err = testSpec().Normalize(Options{"duration": 4, "aspect_ratio": "16:9"})
	assert.NoError(t, err)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := Options{"duration": 6}
	_, err := testSpec().Normalize(in)
	require.NoError(t, err)
	assert.Len(t, in, 1)
	assert.False(t, in.Has("aspect_ratio"))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(InvalidOptionf("x")))
	assert.True(t, IsFatal(InvalidCombinationf("x")))
	assert.True(t, IsFatal(MissingCredentialf("x")))
	assert.True(t, IsFatal(ContentRejectedf("x")))
	assert.False(t, IsFatal(Transportf("x")))
	assert.False(t, IsFatal(ErrJobTimeout))
}
