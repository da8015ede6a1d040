package term

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/backmassage/ytsub/internal/config"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })

	Configure(config.ColorAlways)
	assert.True(t, Enabled())
	assert.NotEmpty(t, Red)

	Configure(config.ColorNever)
	assert.False(t, Enabled())
	assert.Empty(t, Red)
	assert.Empty(t, NC)
}

func TestConfigureAutoRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	Configure(config.ColorAuto)
	assert.False(t, Enabled())
}

func TestIsTerminalNil(t *testing.T) {
	assert.False(t, IsTerminal(nil))
}

func TestConfigureSetsEveryColor(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })

	Configure(config.ColorAlways)
	got := []string{Red, Green, Yellow, Blue, Cyan, Gray, NC}
	assert.Equal(t, palette[:], got)
	assert.Equal(t, "\033[0m", NC)
}
