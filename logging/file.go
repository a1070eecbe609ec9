package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewFileLogger opens (creating or appending to) path and returns a
// *zap.Logger writing JSON lines to it at debug level, plus a close
// function the caller should defer. Use with SetLogger to route every
// TX/RX and connection event in this module to a file.
func NewFileLogger(path string) (*zap.Logger, func() error, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), zapcore.DebugLevel)
	logger := zap.New(core)

	return logger, file.Close, nil
}

