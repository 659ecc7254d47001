package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nergy-se/energybridge/pkg/app"
	"github.com/nergy-se/energybridge/pkg/config"
	"github.com/nergy-se/energybridge/pkg/version"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGQUIT, syscall.SIGTERM)
	defer stop()
	err := Run(ctx)
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	config, err := config.Load(os.Getenv("ENERGY_CONFIG"), os.Args[1:])
	if err != nil {
		return err
	}
	lvl, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return fmt.Errorf("error setting logrus loglevel: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.Infof("starting energybridge %s", version.Version)

	app := app.New(config)

	err = app.Start(ctx)
	if err != nil {
		return err
	}

	app.Wait()
	return nil
}
