package logging

import (
	"log/slog"
	"os"
)

// Newはアプリ共通のloggerを作る
// devはテキスト、prodはJSONで出す
func New(goEnv string) *slog.Logger {
	var handler slog.Handler

	if goEnv == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
