package logging

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits of log files opened by NewRotatingFile.
const (
	LogFileMaxSizeMB  = 50
	LogFileMaxBackups = 3
	LogFileMaxAgeDays = 28
)

// NewRotatingFile returns a writer appending to path. The file is rotated
// once it reaches LogFileMaxSizeMB and old files are compressed. The caller
// closes the writer.
func NewRotatingFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    LogFileMaxSizeMB,
		MaxBackups: LogFileMaxBackups,
		MaxAge:     LogFileMaxAgeDays,
		Compress:   true,
	}
}
