package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"

	"github.com/complydesk/arbiter/pkg/dotdir"
)

// validKeys are the dotted config keys accepted by `arbiter config`.
// The list derives from setViperDefaults, so every default is settable.
func validKeys() []string {
	v := viper.New()
	setViperDefaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// ValidConfigKeys returns the sorted list of settable config keys.
func ValidConfigKeys() []string {
	return validKeys()
}

// IsValidConfigKey reports whether key is a known config key.
func IsValidConfigKey(key string) bool {
	for _, k := range validKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// WriteValue persists key=value into config.toml in configDir (or the
// current directory), creating the file if it does not exist. Existing
// file values for other keys are preserved.
func WriteValue(configDir, key, value string) (string, error) {
	v, err := InitViper(configDir)
	if err != nil {
		return "", err
	}

	v.Set(key, value)

	path := v.ConfigFileUsed()
	if path == "" {
		dir, err := dotdir.NewManager().Target(configDir)
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, "config.toml")
	}

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}
