package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/glls/rankPrivateVPNServers/internal/shared/types"
)

// Load returns the defaults overlaid with the ini file at fileName, when it
// exists. A missing file is not an error; a malformed one is.
func Load(fileName string) (*types.Config, error) {
	cfg := types.Defaults()

	if fileName != "" {
		if _, err := os.Stat(fileName); err == nil {
			iniFile, err := ini.Load(fileName)
			if err != nil {
				return nil, err
			}
			if err := iniFile.MapTo(cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	overrideFromEnvInt(&cfg.Threads, "RANKPVPN_THREADS")
	overrideFromEnvString(&cfg.Level, "RANKPVPN_LOG_LEVEL")
	return cfg, nil
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

func overrideFromEnvString(target *string, envName string) {
	envValue := strings.TrimSpace(os.Getenv(envName))
	if envValue != "" {
		*target = envValue
	}
}
