package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mode      string
		wantDebug bool
	}{
		{name: "release is production", mode: "release", wantDebug: false},
		{name: "debug is development", mode: "debug", wantDebug: true},
		{name: "test is development", mode: "test", wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, err := New(tt.mode)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Equal(t, tt.wantDebug, l.Core().Enabled(zap.DebugLevel))
		})
	}
}
