package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"coldroute/internal/logger"
)

// stdoutLogger writes each entry to stdout as a JSON line.
type stdoutLogger struct{}

func (stdoutLogger) Log(_ context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	fmt.Println("[AUDIT]", string(data))
	return nil
}

func (stdoutLogger) Close() error { return nil }

// fileLogger buffers entries on a channel and appends them to a single
// file (it is not rotated), flushing periodically or synchronously when the buffer is full.
type fileLogger struct {
	cfg    Config
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
	buffer chan Entry
	done   chan struct{}
	wg     sync.WaitGroup
}

func newFileLogger(cfg Config) (*fileLogger, error) {
	path := cfg.FilePath
	if path == "" {
		path = "audit.log"
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open log file: %w", err)
	}

	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	l := &fileLogger{
		cfg:    cfg,
		file:   file,
		writer: bufio.NewWriter(file),
		buffer: make(chan Entry, bufferSize),
		done:   make(chan struct{}),
	}
	l.wg.Add(1)
	go l.processLoop()
	return l, nil
}

func (l *fileLogger) Log(_ context.Context, entry Entry) error {
	select {
	case l.buffer <- entry:
		return nil
	default:
		return l.writeEntry(entry)
	}
}

func (l *fileLogger) Close() error {
	close(l.done)
	l.wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		select {
		case entry := <-l.buffer:
			if err := l.writeEntryLocked(entry); err != nil {
				logger.Log.Warn("audit: write entry during shutdown", "error", err)
			}
		default:
			if err := l.writer.Flush(); err != nil {
				logger.Log.Warn("audit: flush during shutdown", "error", err)
			}
			return l.file.Close()
		}
	}
}

func (l *fileLogger) processLoop() {
	defer l.wg.Done()

	flushPeriod := l.cfg.FlushPeriod
	if flushPeriod <= 0 {
		flushPeriod = 5 * time.Second
	}
	ticker := time.NewTicker(flushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case entry := <-l.buffer:
			if err := l.writeEntry(entry); err != nil {
				logger.Log.Warn("audit: write entry", "error", err)
			}
		case <-ticker.C:
			l.flush()
		}
	}
}

func (l *fileLogger) writeEntry(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeEntryLocked(entry)
}

func (l *fileLogger) writeEntryLocked(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = l.writer.Write(append(data, '\n'))
	return err
}

func (l *fileLogger) flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		logger.Log.Warn("audit: flush", "error", err)
	}
}

// noopLogger discards every entry; used when auditing is disabled.
type noopLogger struct{}

func (noopLogger) Log(context.Context, Entry) error { return nil }
func (noopLogger) Close() error                      { return nil }
