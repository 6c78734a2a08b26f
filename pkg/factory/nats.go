package factory

import (
	"strings"

	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// NewNatsConnection connects to NATS when transcript publishing is enabled.
func NewNatsConnection(appCnf *config.AppConfig) error {
	info := appCnf.Transcript.Nats
	if !appCnf.Transcript.Enabled || !info.Enabled {
		return nil
	}

	nc, err := nats.Connect(strings.Join(info.Urls, ","),
		nats.Name("speech-relay"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return err
	}
	appCnf.NatsConn = nc

	appCnf.Logger.WithFields(logrus.Fields{
		"version": nc.ConnectedServerVersion(),
		"address": nc.ConnectedAddr(),
	}).Info("successfully connected to NATS server")

	return nil
}
