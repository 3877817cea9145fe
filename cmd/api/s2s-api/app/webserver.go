package app

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"github.com/urfave/negroni"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fb-s2s/cmd/api/s2s-api/app/handlers/event"
	facebook_tracking "fb-s2s/pkg/facebook-tracking"
	"fb-s2s/pkg/logger"
	"fb-s2s/pkg/transhttp"
	"fb-s2s/pkg/utils"
)

const (
	ServiceName     = "s2s-api"
	DefaultBasePath = "/s2s"
)

type server struct {
	basePath string
	handler  *event.EventHandler
}

// NewSenderFromConfig builds the sender from the facebook.* and http_client.* keys.
func NewSenderFromConfig() (*facebook_tracking.Sender, error) {
	source, err := facebook_tracking.ParseCredentialSource(viper.GetString("facebook.credential_source"))
	if err != nil {
		return nil, errors.Wrap(err, "facebook.credential_source")
	}

	return facebook_tracking.NewSender(facebook_tracking.Options{
		BaseURL:                utils.ViperGetStringWithDefault("http_client.path", facebook_tracking.DefaultBaseURL),
		ApiVersion:             utils.ViperGetStringWithDefault("facebook.api_version", facebook_tracking.DefaultApiVersion),
		DisableVersionOverride: !utils.ViperGetBoolWithDefault("facebook.allow_version_override", true),
		CredentialSource:       source,
		UserAgent:              viper.GetString("facebook.user_agent"),
		Timeout:                utils.ViperGetSecondsWithDefault("http_client.timeout", facebook_tracking.DefaultTimeout),
	}), nil
}

// NewHandler wires the routes, global middlewares and health check into one handler.
func NewHandler(sender *facebook_tracking.Sender) http.Handler {
	s := &server{
		basePath: utils.ViperGetStringWithDefault("server.base_path", DefaultBasePath),
		handler:  &event.EventHandler{Sender: sender},
	}

	if pixels := facebook_tracking.GetPixelByCode("main_pixel"); len(pixels) > 0 {
		s.handler.DefaultPixel = pixels[0]
		logger.BkLog.Infof("Using configured pixel %v as default", pixels[0].Id)
	}

	router := transhttp.NewRouter(s.InitRoutes(), viper.GetInt64("api.timeout"))
	n := transhttp.InitGlobalAPIMiddlewares(router,
		viper.GetString("http.tracing.header"),
		viper.GetBool("api.disable_trace_log"))

	return transhttp.RegisterHealthCheck(otelhttp.NewHandler(n, ServiceName), ServiceName)
}

func (s *server) InitRoutes() transhttp.Routes {
	return transhttp.Routes{
		transhttp.Route{
			Name:     "send_event",
			Method:   http.MethodPost,
			BasePath: s.basePath,
			Pattern:  "/events",
			Handler:  s.handler,
			Middlewares: []negroni.Handler{
				transhttp.RequireJSON(),
			},
			// the sender enforces its own client timeout
			Timeout: -1,
		},
		transhttp.Route{
			Name:    "metrics",
			Method:  http.MethodGet,
			Pattern: transhttp.MetricsPath,
			Handler: promhttp.Handler(),
		},
	}
}
