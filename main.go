package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/yapp/cli"
	"github.com/ardnew/yapp/cli/cmd"
	"github.com/ardnew/yapp/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		// check has already reported the result
		if !errors.Is(err, cmd.ErrInvalid) {
			log.Error("run failed", slog.Any("error", err))
		}

		os.Exit(1)
	}
}
