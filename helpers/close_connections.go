package helpers

import (
	"github.com/mynaparrot/speech-relay/pkg/factory"
)

// HandleCloseConnections releases the shared services once the server stopped.
func HandleCloseConnections(app *factory.Application) {
	if app == nil {
		return
	}
	app.AppConfig.Logger.Infoln("closing connections")
	app.Shutdown()
}
