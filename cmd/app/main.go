package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Conte777/mediaflow/internal/cli"
	"github.com/Conte777/mediaflow/internal/infrastructure/logger"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()

	mapper := pkgerrors.NewMapper(logger.New(os.Getenv("LOG_LEVEL")))
	code, msg := mapper.MapErrorToExitCode(err)
	if code != pkgerrors.ExitOK {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	}

	os.Exit(code)
}
