package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProblemLines(t *testing.T) {
	err := errors.Join(
		errors.New(`Config.HTTP.Timeout: failed "min" (value 0s)`),
		errors.New(`Config.Gaia.Dataset: failed "required" (value )`),
	)
	assert.Equal(t, []string{
		`Config.HTTP.Timeout: failed "min" (value 0s)`,
		`Config.Gaia.Dataset: failed "required" (value )`,
	}, problemLines(err))
}

func TestSkipsSetup(t *testing.T) {
	assert.True(t, skipsSetup(versionCmd))
	assert.True(t, skipsSetup(initCmd))
	assert.False(t, skipsSetup(fetchCmd))
	assert.False(t, skipsSetup(showCmd))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"fetch", "download", "merge", "load", "publish", "run", "config", "version"} {
		assert.True(t, names[want], want)
	}
}
