package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/webpilot/internal/config"
)

func TestDefaultAllocatorOptions(t *testing.T) {
	base := len(DefaultAllocatorOptions(config.BrowserConfig{Headless: true}))

	t.Run("headful adds an override", func(t *testing.T) {
		opts := DefaultAllocatorOptions(config.BrowserConfig{Headless: false})
		assert.Len(t, opts, base+1)
	})

	t.Run("viewport and extras", func(t *testing.T) {
		opts := DefaultAllocatorOptions(config.BrowserConfig{
			Headless:        true,
			DisableGPU:      true,
			IgnoreTLSErrors: true,
			ViewportWidth:   1280,
			ViewportHeight:  800,
			Args:            []string{"--lang=en-US", "no-zygote", ""},
		})
		// gpu, tls, window size, two args.
		assert.Len(t, opts, base+5)
	})

	t.Run("exec path", func(t *testing.T) {
		opts := DefaultAllocatorOptions(config.BrowserConfig{Headless: true, ExecPath: "/usr/bin/chromium"})
		assert.Len(t, opts, base+1)
	})

	assert.NotEmpty(t, DefaultAllocatorOptions(config.BrowserConfig{}))
}
