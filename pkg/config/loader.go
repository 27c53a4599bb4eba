package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/recast-io/recast/pkg/recerrors"
)

// Load reads a YAML configuration file into cfg, substituting ${VAR}
// references with environment variable values first.
func Load(filePath string, cfg *BaseConfig) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeConfig, "failed to read config file")
	}

	content := substituteEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeConfig, "failed to parse config YAML")
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		content = content[:start] + os.Getenv(varName) + content[end+1:]
	}
	return content
}
