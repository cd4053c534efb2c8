// Package logtest 提供测试用的日志实现
package logtest

import (
	"fmt"
	"sync"

	logInterface "github.com/weisyn/proofsql/pkg/interfaces/infrastructure/log"
	"go.uber.org/zap"
)

// NopLogger 不输出任何内容
type NopLogger struct{}

// NewTestLogger 创建测试用的空日志
func NewTestLogger() logInterface.Logger {
	return &NopLogger{}
}

func (m *NopLogger) Debug(msg string)                                  {}
func (m *NopLogger) Debugf(format string, args ...interface{})         {}
func (m *NopLogger) Info(msg string)                                   {}
func (m *NopLogger) Infof(format string, args ...interface{})          {}
func (m *NopLogger) Warn(msg string)                                   {}
func (m *NopLogger) Warnf(format string, args ...interface{})          {}
func (m *NopLogger) Error(msg string)                                  {}
func (m *NopLogger) Errorf(format string, args ...interface{})         {}
func (m *NopLogger) Fatal(msg string)                                  {}
func (m *NopLogger) Fatalf(format string, args ...interface{})         {}
func (m *NopLogger) With(args ...interface{}) logInterface.Logger      { return m }
func (m *NopLogger) Sync() error                                       { return nil }
func (m *NopLogger) GetZapLogger() *zap.Logger                         { return zap.NewNop() }

// RecordingLogger 记录所有日志调用
type RecordingLogger struct {
	mu   sync.Mutex
	logs []string
}

// NewRecordingLogger 创建记录型日志
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (r *RecordingLogger) record(level, msg string) {
	r.mu.Lock()
	r.logs = append(r.logs, level+": "+msg)
	r.mu.Unlock()
}

// Logs 返回已记录的日志副本
func (r *RecordingLogger) Logs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.logs...)
}

func (r *RecordingLogger) Debug(msg string) { r.record("DEBUG", msg) }
func (r *RecordingLogger) Debugf(format string, args ...interface{}) {
	r.record("DEBUG", fmt.Sprintf(format, args...))
}
func (r *RecordingLogger) Info(msg string) { r.record("INFO", msg) }
func (r *RecordingLogger) Infof(format string, args ...interface{}) {
	r.record("INFO", fmt.Sprintf(format, args...))
}
func (r *RecordingLogger) Warn(msg string) { r.record("WARN", msg) }
func (r *RecordingLogger) Warnf(format string, args ...interface{}) {
	r.record("WARN", fmt.Sprintf(format, args...))
}
func (r *RecordingLogger) Error(msg string) { r.record("ERROR", msg) }
func (r *RecordingLogger) Errorf(format string, args ...interface{}) {
	r.record("ERROR", fmt.Sprintf(format, args...))
}
func (r *RecordingLogger) Fatal(msg string) { r.record("FATAL", msg) }
func (r *RecordingLogger) Fatalf(format string, args ...interface{}) {
	r.record("FATAL", fmt.Sprintf(format, args...))
}
func (r *RecordingLogger) With(args ...interface{}) logInterface.Logger { return r }
func (r *RecordingLogger) Sync() error                                  { return nil }
func (r *RecordingLogger) GetZapLogger() *zap.Logger                    { return zap.NewNop() }
