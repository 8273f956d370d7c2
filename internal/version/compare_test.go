package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		toolVersion   string
		configVersion string
		expectError   bool
		errorContains string
	}{
		{
			name:          "exact match",
			toolVersion:   "1.2.0",
			configVersion: "1.2.0",
		},
		{
			name:          "patch differs",
			toolVersion:   "1.2.0",
			configVersion: "1.2.7",
		},
		{
			name:          "older config minor",
			toolVersion:   "1.3.0",
			configVersion: "1.1.0",
		},
		{
			name:          "v prefix",
			toolVersion:   "v1.1.0",
			configVersion: "v1.0",
		},
		{
			name:          "empty config version",
			toolVersion:   "1.1.0",
			configVersion: "",
		},
		{
			name:          "development tool build",
			toolVersion:   "main",
			configVersion: "9.9.9",
		},
		{
			name:          "newer config minor",
			toolVersion:   "1.1.0",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "config requires 1.2.x",
		},
		{
			name:          "major differs",
			toolVersion:   "2.0.0",
			configVersion: "1.0.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:          "invalid config version",
			toolVersion:   "1.0.0",
			configVersion: "latest",
			expectError:   true,
			errorContains: "invalid config version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConfigCompatibility(tt.toolVersion, tt.configVersion)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
