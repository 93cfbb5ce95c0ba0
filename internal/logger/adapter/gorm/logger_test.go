package gorm

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func newBufferLogger(buf *bytes.Buffer, slow time.Duration) *Logger {
	return &Logger{
		zl:            zerolog.New(buf).Level(zerolog.TraceLevel),
		level:         gormlogger.Warn,
		slowThreshold: slow,
	}
}

func TestTrace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	tests := []struct {
		name     string
		begin    time.Time
		err      error
		slow     time.Duration
		contains string
	}{
		{name: "error is logged", begin: time.Now(), err: errors.New("boom"), contains: "query failed"},
		{name: "not found is silent", begin: time.Now(), err: gormlogger.ErrRecordNotFound},
		{name: "slow query warns", begin: time.Now().Add(-time.Second), slow: time.Millisecond, contains: "slow query"},
		{name: "fast query silent at warn", begin: time.Now(), slow: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			l := newBufferLogger(&buf, tt.slow)
			l.Trace(context.Background(), tt.begin, sql, tt.err)

			if tt.contains == "" {
				assert.Empty(t, buf.String())
				return
			}

			assert.Contains(t, buf.String(), tt.contains)
			assert.Contains(t, buf.String(), "SELECT 1")
		})
	}
}

func TestLogMode(t *testing.T) {
	var buf bytes.Buffer

	l := newBufferLogger(&buf, 0)

	silent := l.LogMode(gormlogger.Silent)
	silent.Error(context.Background(), "hidden %d", 1)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 2", 0 }, errors.New("x"))
	assert.Empty(t, buf.String())

	// the original keeps its level
	l.Warn(context.Background(), "visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")
}
