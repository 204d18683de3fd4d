package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBannerNotEmpty(t *testing.T) {
	assert.NotEmpty(t, Banner)
}

func TestBannerStyleRenders(t *testing.T) {
	rendered := bannerStyle.Render(Banner)
	assert.NotEmpty(t, rendered)
}
