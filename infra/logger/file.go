package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes a size-rotated log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	outMu   sync.RWMutex
	fileOut io.Writer
)

type fileSink struct{ lj *lumberjack.Logger }

// Close detaches the file from new loggers and closes it.
func (s *fileSink) Close() error {
	outMu.Lock()
	if fileOut == io.Writer(s.lj) {
		fileOut = nil
	}
	outMu.Unlock()
	return s.lj.Close()
}

// EnableFile copies the output of every logger created afterwards into a
// rotated file.
func EnableFile(cfg FileConfig) (io.Closer, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	outMu.Lock()
	fileOut = lj
	outMu.Unlock()
	return &fileSink{lj: lj}, nil
}

func withFile(w io.Writer) io.Writer {
	outMu.RLock()
	defer outMu.RUnlock()
	if fileOut == nil {
		return w
	}
	return zerolog.MultiLevelWriter(w, fileOut)
}
