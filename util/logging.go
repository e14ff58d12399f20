package util

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger initializes the service-wide logger, writing errors
// and regular entries to separate files and mirroring both to the
// standard streams
func DefaultLogger(debug bool, logDir string) (*zap.Logger, error) {
	logDir = strings.TrimSpace(logDir)

	if logDir == "" {
		return nil, errors.New("empty log directory path")
	}

	// creating log directory if it doesn't exist
	if err := CreateDirectoryIfNotExists(logDir, 0755); err != nil {
		return nil, err
	}

	errFilepath := filepath.Join(logDir, "errors.log")
	errFile, err := os.OpenFile(errFilepath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open error log file: %s", errFilepath)
	}
	errFileLog := zapcore.Lock(zapcore.AddSync(errFile))

	stdFilepath := filepath.Join(logDir, "standard.log")
	stdFile, err := os.OpenFile(stdFilepath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open standard log file: %s", stdFilepath)
	}
	stdFileLog := zapcore.Lock(zapcore.AddSync(stdFile))

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		if lvl == zapcore.DebugLevel && !debug {
			return false
		}

		return lvl < zapcore.ErrorLevel
	})

	fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	consoleEncoder := zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())

	core := zapcore.NewTee(
		// files
		zapcore.NewCore(fileEncoder, errFileLog, highPriority),
		zapcore.NewCore(fileEncoder, stdFileLog, lowPriority),

		// stdout, stderr
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), highPriority),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), lowPriority),
	)

	return zap.New(core), nil
}
