package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Версия CLI, устанавливается через ldflags.
//
//nolint:gochecknoglobals // Устанавливается через ldflags при сборке
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewRunner(RunnerOpts{Output: os.Stdout}).App()
	if err := app.Run(ctx, os.Args); err != nil {
		cliLog.Errorf("Ошибка: %v", err)
		stop()
		os.Exit(1)
	}
}
