package main

import (
	"context"
	"flag"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/weaveworks/common/logging"
	"github.com/weaveworks/common/server"

	"github.com/weaveworks/payment-notifier/common"
	"github.com/weaveworks/payment-notifier/common/airtable"
	"github.com/weaveworks/payment-notifier/common/stripe"
	"github.com/weaveworks/payment-notifier/diaglog"
	"github.com/weaveworks/payment-notifier/event"
	"github.com/weaveworks/payment-notifier/routes"
	"github.com/weaveworks/payment-notifier/sender"
	"github.com/weaveworks/payment-notifier/signature"
)

// Config holds the payment notifier settings.
type Config struct {
	webhookSecret  string
	serverConfig   server.Config
	stripeConfig   stripe.Config
	airtableConfig airtable.Config
	emailConfig    sender.EmailConfig
}

// RegisterFlags registers configuration variables. Defaults come from the
// environment so the service can be deployed with env vars alone.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.webhookSecret, "webhook.secret", os.Getenv("STRIPE_WEBHOOK_SECRET"), "Webhook signing secret; empty disables signature verification")
	c.serverConfig.RegisterFlags(f)
	c.stripeConfig.RegisterFlags(f)
	c.airtableConfig.RegisterFlags(f)
	c.emailConfig.RegisterFlags(f)
}

func main() {
	cfg := Config{}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	cfg.serverConfig.MetricsNamespace = common.PrometheusNamespace
	if port := os.Getenv("PORT"); port != "" && cfg.serverConfig.HTTPListenPort == 80 {
		p, err := strconv.Atoi(port)
		if err != nil {
			log.Fatalf("invalid PORT %q: %v", port, err)
		}
		cfg.serverConfig.HTTPListenPort = p
	}

	if err := logging.Setup(cfg.serverConfig.LogLevel.String()); err != nil {
		log.Fatalf("error initialising logging: %v", err)
	}
	cfg.serverConfig.Log = logging.Logrus(log.StandardLogger())

	diag := diaglog.New()
	diag.Append("payment notifier starting")

	verifier := signature.New(cfg.webhookSecret, diag)
	if verifier.Mode() == signature.ModeDisabled {
		log.Warn("no webhook signing secret configured; signature verification is DISABLED")
	}

	stripeClient := stripe.New(cfg.stripeConfig, nil)
	airtableClient := airtable.New(cfg.airtableConfig, nil)

	// Best effort: the Airtable API cannot create tables, so a missing table
	// can only be reported.
	if ok, err := airtableClient.TableExists(context.Background()); err != nil {
		diag.Appendf("record store probe failed at startup: %v", err)
	} else if !ok {
		diag.Appendf("record store table %q does not exist; create it by hand", cfg.airtableConfig.Table)
	} else {
		diag.Append("record store table found")
	}

	api := routes.New(
		verifier,
		&event.Normalizer{
			Charges:       stripeClient,
			Diag:          diag,
			LookupTimeout: cfg.stripeConfig.Timeout,
		},
		&sender.Fanout{
			Alerts: sender.NewEmailSender(cfg.emailConfig),
			Store:  &sender.RecordSink{Client: airtableClient},
			Diag:   diag,
		},
		airtableClient,
		diag,
	)

	srv, err := server.New(cfg.serverConfig)
	if err != nil {
		log.Fatalf("error initialising server: %v", err)
	}
	defer srv.Shutdown()

	api.RegisterRoutes(srv.HTTP)
	log.WithField("port", cfg.serverConfig.HTTPListenPort).Infof("payment-notifier now serving HTTP requests")
	srv.Run()
}
