// internal/infra/logger/logger.go
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. APP_ENV=local gets the console encoder,
// everything else gets JSON for Cloud Logging.
func New(appEnv string) (*zap.Logger, error) {
	if strings.EqualFold(strings.TrimSpace(appEnv), "local") {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "severity"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// MaskShort shortens addresses and signatures for log lines: abcd***wxyz
func MaskShort(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 10 {
		return s
	}
	return s[:4] + "***" + s[len(s)-4:]
}
