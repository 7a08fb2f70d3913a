// rotation.go
package logger

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// CreateRotatingFileCore creates a zapcore.Core that writes to a rotating file.
// The returned closer releases the file handle and stops lumberjack's mill goroutine.
func CreateRotatingFileCore(
	output FileOutput,
	encoder zapcore.Encoder,
	level zapcore.LevelEnabler,
) (zapcore.Core, io.Closer, error) {
	if output.Path == "" {
		return nil, nil, errors.New("file path is required for rotating logger")
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(output.Path), 0o755); err != nil {
		return nil, nil, err
	}

	maxSize := output.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	rotator := &lumberjack.Logger{
		Filename:   output.Path,
		MaxSize:    maxSize,
		MaxBackups: output.MaxRotatedFiles,
		MaxAge:     output.MaxAge,
		Compress:   output.Compress,
	}

	return zapcore.NewCore(encoder, zapcore.AddSync(rotator), level), rotator, nil
}
