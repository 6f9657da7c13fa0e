package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  ServeConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "stdio transport is valid",
			config:  ServeConfig{Transport: "stdio"},
			wantErr: false,
		},
		{
			name:    "sse transport is valid",
			config:  ServeConfig{Transport: "sse"},
			wantErr: false,
		},
		{
			name:    "streamable-http transport is valid",
			config:  ServeConfig{Transport: "streamable-http"},
			wantErr: false,
		},
		{
			name:    "unknown transport is rejected",
			config:  ServeConfig{Transport: "websocket"},
			wantErr: true,
			errMsg:  "unsupported transport type",
		},
		{
			name:    "empty transport is rejected",
			config:  ServeConfig{Transport: ""},
			wantErr: true,
			errMsg:  "unsupported transport type",
		},
		{
			name: "valid allowed origins",
			config: ServeConfig{
				Transport:      "streamable-http",
				AllowedOrigins: "https://app.example.com, https://other.example.com",
			},
			wantErr: false,
		},
		{
			name: "origin without scheme is rejected",
			config: ServeConfig{
				Transport:      "streamable-http",
				AllowedOrigins: "app.example.com",
			},
			wantErr: true,
			errMsg:  "invalid allowed origins",
		},
		{
			name: "origin with path is rejected",
			config: ServeConfig{
				Transport:      "streamable-http",
				AllowedOrigins: "https://app.example.com/callback",
			},
			wantErr: true,
			errMsg:  "invalid allowed origins",
		},
		{
			name: "metrics config does not affect validation",
			config: ServeConfig{
				Transport: "stdio",
				Metrics:   MetricsServeConfig{Enabled: true},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
