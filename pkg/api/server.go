package api

import (
	"github.com/jpuchoc/st-report/pkg/report"
	"github.com/rs/zerolog/log"
)

func SetupServer(listen string, service *report.Service) error {
	webApp := NewApp(service)

	log.Info().Str("listen", listen).Msg("Starting report API")

	return webApp.Listen(listen)
}
