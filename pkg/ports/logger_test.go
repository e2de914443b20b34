package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("verbose"))
	assert.Equal(t, LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LevelError, ParseLogLevel("fatal"))
	assert.Equal(t, LevelQuiet, ParseLogLevel("quiet"))
	assert.Equal(t, LevelInfo, ParseLogLevel("nonsense"))
}

func TestLogLevel_YAML(t *testing.T) {
	var v struct {
		Level LogLevel `yaml:"level"`
	}
	assert.NoError(t, yaml.Unmarshal([]byte("level: warning\n"), &v))
	assert.Equal(t, LevelWarn, v.Level)

	assert.Error(t, yaml.Unmarshal([]byte("level: loud\n"), &v))

	out, err := yaml.Marshal(v)
	assert.NoError(t, err)
	assert.Equal(t, "level: warn\n", string(out))
}
