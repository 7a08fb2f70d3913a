package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
)

func TestContextGetters(t *testing.T) {
	tests := []struct {
		name          string
		ctx           *Context
		wantVersion   string
		wantBuildDate string
	}{
		{"nil context", nil, UnknownValue, UnknownValue},
		{"empty context", &Context{}, UnknownValue, UnknownValue},
		{"populated", &Context{Version: "v1.2.0", BuildDate: "2026-10-01"}, "v1.2.0", "2026-10-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantVersion, tt.ctx.GetVersion())
			assert.Equal(t, tt.wantBuildDate, tt.ctx.GetBuildDate())
		})
	}
}

func TestNewAssignsInstanceID(t *testing.T) {
	a := New("v1", "today")
	b := New("v1", "today")

	assert.NotEqual(t, UnknownValue, a.GetInstanceID())
	assert.NotEqual(t, a.GetInstanceID(), b.GetInstanceID())
	assert.Equal(t, "cropsevai v1 (built today)", a.String())
}

func TestApply(t *testing.T) {
	s := &conf.Settings{}
	New("v2.0.0", "").Apply(s)

	assert.Equal(t, "v2.0.0", s.Version)
	assert.Equal(t, UnknownValue, s.BuildDate)

	var nilCtx *Context
	nilCtx.Apply(s)
	assert.Equal(t, UnknownValue, s.Version)
	New("x", "y").Apply(nil)
}
