package logger

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestGetLogger_SharedInstance(t *testing.T) {
	assert.Same(t, GetLogger(), GetLogger())
}

func TestSetLogLevel(t *testing.T) {
	l := GetLogger()

	l.SetLogLevel("debug")
	assert.Equal(t, log.DebugLevel, l.GetLevel())

	l.SetLogLevel("warn")
	assert.Equal(t, log.WarnLevel, l.GetLevel())

	l.SetLogLevel("info")
	assert.Equal(t, log.InfoLevel, l.GetLevel())
}

func TestSetLogLevel_UnknownFallsBackToInfo(t *testing.T) {
	l := GetLogger()
	l.SetLogLevel("debug")

	l.SetLogLevel("chatty")

	assert.Equal(t, log.InfoLevel, l.GetLevel())
}
