package logger_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"hrhelper/recruiter-service/internal/logger"
)

func TestNew_Levels(t *testing.T) {
	cases := []struct {
		json, debug bool
		want        zapcore.Level
	}{
		{false, false, zapcore.InfoLevel},
		{true, false, zapcore.InfoLevel},
		{false, true, zapcore.DebugLevel},
		{true, true, zapcore.DebugLevel},
	}
	for _, c := range cases {
		l, err := logger.New(logger.Options{JSON: c.json, Debug: c.debug, Version: "test"})
		if err != nil {
			t.Fatalf("New(%v, %v): %v", c.json, c.debug, err)
		}
		if !l.Core().Enabled(c.want) {
			t.Errorf("New(%v, %v): level %s disabled", c.json, c.debug, c.want)
		}
		if !c.debug && l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("New(%v, false) enables debug", c.json)
		}
	}
}

