package logger

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerTrace(t *testing.T) {
	ctx := context.Background()

	t.Run("logs errors", func(t *testing.T) {
		var buf bytes.Buffer
		gl := NewGormLogger(observedLogger(&buf), gormlogger.Error, 200*time.Millisecond)

		gl.Trace(ctx, time.Now(), func() (string, int64) {
			return "SELECT * FROM invoices", 0
		}, assert.AnError)

		assert.Contains(t, buf.String(), "SQL Error")
	})

	t.Run("skips record not found", func(t *testing.T) {
		var buf bytes.Buffer
		gl := NewGormLogger(observedLogger(&buf), gormlogger.Error, 200*time.Millisecond)

		gl.Trace(ctx, time.Now(), func() (string, int64) {
			return "SELECT * FROM payments WHERE id = ?", 0
		}, gormlogger.ErrRecordNotFound)

		assert.Empty(t, buf.String())
	})

	t.Run("warns on slow queries", func(t *testing.T) {
		var buf bytes.Buffer
		gl := NewGormLogger(observedLogger(&buf), gormlogger.Warn, time.Nanosecond)

		gl.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) {
			return "SELECT * FROM stock_lines", 10
		}, nil)

		assert.Contains(t, buf.String(), "SLOW SQL")
	})

	t.Run("silent level drops everything", func(t *testing.T) {
		var buf bytes.Buffer
		gl := NewGormLogger(observedLogger(&buf), gormlogger.Silent, 0)

		gl.Trace(ctx, time.Now(), func() (string, int64) {
			return "SELECT 1", 1
		}, assert.AnError)

		assert.Empty(t, buf.String())
	})
}

func TestGormLoggerLogMode(t *testing.T) {
	gl := NewGormLogger(observedLogger(&bytes.Buffer{}), gormlogger.Warn, 0)
	escalated := gl.LogMode(gormlogger.Info)

	// LogMode returns a copy, the original keeps its level
	assert.NotSame(t, gl, escalated)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
