package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogging(t *testing.T) {
	l := NewZapLogger("smartwallet-test")
	l.SetLogLevel("debug")
	// info demo
	l.Info("this is a info log test")
	// warn demo
	l.Warn("this is a warn log test")
	// error demo
	l.Error("this is a error log test", WithField("age", 100), WithField("err", errors.New("boom")))
	// debug demo
	l.Debug("this is a debug log test")
}

func TestSweetenFields(t *testing.T) {
	errFirst := errors.New("first")
	fields := sweetenFields([]interface{}{
		"caller", "terra1abc",
		errFirst,
		WithField("height", 10),
		errors.New("second"),
		"dangling",
	})

	assert.Equal(t, []Field{
		{Key: "caller", Val: "terra1abc"},
		{Key: "error", Val: errFirst},
		{Key: "height", Val: 10},
	}, fields)
	assert.Empty(t, sweetenFields(nil))
}

func TestMockLogger(t *testing.T) {
	l := NewMockLogger()
	l.Info("dispatch", WithField("role", "owner"))
	l.Warnf("denied %s", "cooldown")

	entries := l.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "denied cooldown", entries[1].Msg)
}
