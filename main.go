package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mynaparrot/speech-relay/helpers"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/factory"
	"github.com/mynaparrot/speech-relay/pkg/logging"
	"github.com/mynaparrot/speech-relay/pkg/routers"
	"github.com/mynaparrot/speech-relay/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	cli.VersionPrinter = func(c *cli.Command) {
		fmt.Printf("%s\n", c.Version)
	}

	app := &cli.Command{
		Name:        "speech-relay",
		Usage:       "Relay browser speech recognition to an OBS overlay",
		Description: "without option will start server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Configuration file",
				DefaultText: "config.yaml",
				Value:       "config.yaml",
			},
		},
		Action:  startServer,
		Version: version.Version,
	}
	err := app.Run(context.Background(), os.Args)
	if err != nil {
		logrus.Fatalln(err)
	}
}

func startServer(ctx context.Context, c *cli.Command) error {
	appCnf, err := helpers.ReadYamlConfigFile(c.String("config"))
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&appCnf.LogSettings)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to setup logger")
	}
	appCnf.Logger = logger

	appCnf, err = config.New(appCnf)
	if err != nil {
		logger.Fatalln(err)
	}

	err = factory.NewNatsConnection(appCnf)
	if err != nil {
		logger.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	appFactory, err := factory.NewAppFactory(ctx, appCnf)
	if err != nil {
		logger.Fatalln(err)
	}

	// boot up some services
	appFactory.Boot()

	// defer close connections
	defer helpers.HandleCloseConnections(appFactory)

	rt := routers.New(appFactory.AppConfig, appFactory.Controllers)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", appCnf.Client.Port)
		logger.Infof("listening on %s", addr)
		return rt.Listen(addr)
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Infoln("exit requested, shutting down")
		return rt.Shutdown()
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
