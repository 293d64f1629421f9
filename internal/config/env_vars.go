package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	Port     string `env:"PORT,default=8080"`
	AppName  string `env:"APP_NAME,default=Auth Bridge"`
	Env      string `env:"ENV,default=DEV"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	if e.AppName == "" {
		return "Auth Bridge"
	}
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	if e.LogLevel == "" {
		return "info"
	}
	return strings.ToLower(e.LogLevel)
}
