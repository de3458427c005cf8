// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package comm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	input := "site,pH,moisture,management\ns1,4.2,3,NM\ns2,5.1,2,BF\n"

	env, err := ParseEnv(strings.NewReader(input), ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2"}, env.Sites)
	assert.Equal(t, []string{"pH", "moisture", "management"}, env.Vars)

	ph, ok := env.NumericColumn(0)
	require.True(t, ok)
	assert.Equal(t, []float64{4.2, 5.1}, ph)

	_, ok = env.NumericColumn(2)
	assert.False(t, ok, "management is categorical")
	assert.Equal(t, []string{"NM", "BF"}, env.Column(2))
}

func TestEnvAlign(t *testing.T) {
	env, err := ParseEnv(strings.NewReader("site,pH\ns2,5.1\ns1,4.2\n"), ',')
	require.NoError(t, err)

	aligned, err := env.Align([]string{"s1", "s2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2"}, aligned.Sites)
	assert.Equal(t, [][]string{{"4.2"}, {"5.1"}}, aligned.Cells)
	assert.Equal(t, []string{"s2", "s1"}, env.Sites, "source order unchanged")
}

func TestEnvAlignMismatch(t *testing.T) {
	env, err := ParseEnv(strings.NewReader("site,pH\ns1,4.2\ns2,5.1\n"), ',')
	require.NoError(t, err)

	_, err = env.Align([]string{"s1", "s3"})
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = env.Align([]string{"s1"})
	assert.ErrorIs(t, err, ErrMalformedInput)
}
