package logger_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/peladahub/pelada-service/internal/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logger.Config
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "valid production config",
			config: &logger.Config{
				ServiceName:    "pelada-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
				Format:         "json",
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:      "empty config falls back to defaults",
			config:    &logger.Config{},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name: "dev defaults to debug console",
			config: &logger.Config{
				Env: "dev",
			},
			wantLevel: zerolog.DebugLevel,
		},
		{
			name: "invalid env rejected",
			config: &logger.Config{
				Env: "production", // validator expects dev|staging|prod
			},
			expectError: true,
		},
		{
			name: "invalid level rejected",
			config: &logger.Config{
				Env:   "prod",
				Level: "loud",
			},
			expectError: true,
		},
		{
			name: "invalid format rejected",
			config: &logger.Config{
				Env:    "prod",
				Format: "xml",
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := logger.New(tc.config)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.wantLevel, zerolog.GlobalLevel())
		})
	}
}
