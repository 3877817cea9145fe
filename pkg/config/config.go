package config

import (
	"bytes"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"fb-s2s/pkg/logger"
)

// ReadBkConfig reads fileName from the first matching config path and watches it for changes.
func ReadBkConfig(fileName string, configPaths ...string) error {
	viper.SetConfigName(fileName)
	if len(configPaths) < 1 {
		// look for current dir
		viper.AddConfigPath(".")
	} else {
		for _, configPath := range configPaths {
			viper.AddConfigPath(configPath)
		}
	}
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrap(err, "cannot read config file")
	}

	watch()
	return nil
}

// ReadBkConfigByFile reads the config file at path and watches it for changes.
func ReadBkConfigByFile(file string) error {
	viper.SetConfigFile(file)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "cannot read config file %v", file)
	}

	watch()
	return nil
}

// LoadConfig -- read config from bytes
func LoadConfig(configType string, value []byte, isMerge bool) error {
	viper.SetConfigType(configType)
	if isMerge {
		return viper.MergeConfig(bytes.NewBuffer(value))
	}
	return viper.ReadConfig(bytes.NewBuffer(value))
}

func watch() {
	viper.WatchConfig()
	viper.OnConfigChange(onConfigChange)
}

// onConfigChange re-applies the settings that can change at runtime: logger.level.
// Everything else is read once at startup.
func onConfigChange(e fsnotify.Event) {
	logger.BkLog.Infof("Config file changed: %v", e.Name)

	level := viper.GetString("logger.level")
	if level == "" {
		return
	}
	if err := logger.BkLog.SetLevel(level); err != nil {
		logger.BkLog.Warnf("Invalid logger.level %v: %v", level, err)
		return
	}
	logger.BkLog.Infof("Logger level set to %v", level)
}
