package util

import (
	"os"
	"strings"
)

type EnvironmentVariables map[string]string

func GetEnvironmentVariables() EnvironmentVariables {
	environmentVariables := EnvironmentVariables{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// GetDefault returns the variable's value, or the fallback when it is unset
// or empty
func (e EnvironmentVariables) GetDefault(key string, fallback string) string {
	if value := e[key]; value != "" {
		return value
	}

	return fallback
}
