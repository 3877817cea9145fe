package utils

import (
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

func ViperGetInt64WithDefault(key string, defaultValue int64) int64 {
	v := viper.GetInt64(key)
	if v == 0 {
		return defaultValue
	}
	return v
}

func ViperGetIntWithDefault(key string, defaultValue int) int {
	v := viper.GetInt(key)
	if v == 0 {
		return defaultValue
	}
	return v
}

func ViperGetStringWithDefault(key string, defaultValue string) string {
	v := viper.GetString(key)
	if len(v) == 0 {
		return defaultValue
	}
	return v
}

// ViperGetFloat64WithDefault returns defaultValue only when key is not set at all, so 0 is a valid value.
func ViperGetFloat64WithDefault(key string, defaultValue float64) float64 {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return cast.ToFloat64(viper.Get(key))
}

// ViperGetBoolWithDefault returns defaultValue only when key is not set at all.
func ViperGetBoolWithDefault(key string, defaultValue bool) bool {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return cast.ToBool(viper.Get(key))
}

// ViperGetSecondsWithDefault reads an integer number of seconds.
func ViperGetSecondsWithDefault(key string, defaultValue time.Duration) time.Duration {
	v := viper.GetInt64(key)
	if v <= 0 {
		return defaultValue
	}
	return time.Duration(v) * time.Second
}
