// Package logsink scopes a run's diagnostics to a timestamped log file.
//
// A sink is acquired before a run starts and released with defer, so the
// file is synced and closed on every exit path. Callers log through
// Sink.Logger while the sink is held and go back to their own logger
// afterwards.
package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp prefix of log file names.
const TimeLayout = "2006-01-02_150405"

type Sink struct {
	path   string
	file   *os.File
	logger *zap.Logger

	once sync.Once
	err  error
}

// FileName builds "<time>_calculate_<name>.log".
func FileName(now time.Time, name string) string {
	return fmt.Sprintf("%s_calculate_%s.log", now.Format(TimeLayout), name)
}

// Acquire creates dir if needed and opens a new log file in it. The
// returned logger writes JSON lines at level and above and carries fields.
func Acquire(dir, name string, now time.Time, level zapcore.Level, fields ...zap.Field) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, FileName(now, name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(f), level)

	return &Sink{
		path:   path,
		file:   f,
		logger: zap.New(core).With(fields...),
	}, nil
}

func (s *Sink) Path() string { return s.path }

func (s *Sink) Logger() *zap.Logger { return s.logger }

// Release flushes and closes the log file. It is safe to call more than
// once; later calls return the first result.
func (s *Sink) Release() error {
	s.once.Do(func() {
		syncErr := s.logger.Sync()
		closeErr := s.file.Close()
		if closeErr != nil {
			s.err = closeErr
		} else if syncErr != nil {
			s.err = syncErr
		}
		s.logger = zap.NewNop()
	})
	return s.err
}
