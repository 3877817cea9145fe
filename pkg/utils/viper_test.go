package utils

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestViperGetWithDefault(t *testing.T) {
	defer viper.Reset()

	viper.Set("a.int", 7)
	viper.Set("a.str", "x")
	viper.Set("a.bool", "false")
	viper.Set("a.seconds", 3)
	viper.Set("a.ratio", "0")

	assert.Equal(t, 7, ViperGetIntWithDefault("a.int", 1))
	assert.Equal(t, 1, ViperGetIntWithDefault("a.none", 1))
	assert.Equal(t, int64(7), ViperGetInt64WithDefault("a.int", 1))
	assert.Equal(t, "x", ViperGetStringWithDefault("a.str", "d"))
	assert.Equal(t, "d", ViperGetStringWithDefault("a.none", "d"))
	assert.False(t, ViperGetBoolWithDefault("a.bool", true))
	assert.True(t, ViperGetBoolWithDefault("a.none", true))
	assert.Equal(t, 3*time.Second, ViperGetSecondsWithDefault("a.seconds", time.Minute))
	assert.Equal(t, time.Minute, ViperGetSecondsWithDefault("a.none", time.Minute))
	assert.Equal(t, float64(0), ViperGetFloat64WithDefault("a.ratio", 1))
	assert.Equal(t, 0.5, ViperGetFloat64WithDefault("a.none", 0.5))
}
