package logger

import "go.uber.org/zap"

// Log is a no-op until Init runs, so library code and tests can log freely.
var Log = zap.NewNop()

func Init() {
	Log = zap.Must(zap.NewProduction())
}

// InitDev swaps in a development logger for local runs and tests.
func InitDev() {
	Log = zap.Must(zap.NewDevelopment())
}

func Sugar() *zap.SugaredLogger {
	return Log.Sugar()
}
