package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	portEnvVar   = "PORT"
	appNameVar   = "APP_NAME"
	folderEnvVar = "FOLDER"
	baseURLVar   = "BASE_URL"
	envVar       = "ENV"
	logLevelVar  = "LOG_LEVEL"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.v.GetString(portEnvVar)
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameVar)
}

// GetDataFolder is where the disk media store keeps uploads when S3 is not configured.
func (e EnvVars) GetDataFolder() string {
	return e.v.GetString(folderEnvVar)
}

// GetBaseURL returns the public base URL of the server (e.g., "https://videotube.example.com")
func (e EnvVars) GetBaseURL() string {
	return strings.TrimSuffix(e.v.GetString(baseURLVar), "/")
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(logLevelVar)
}

func (e EnvVars) GetEnv() string {
	env := e.v.GetString(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}
