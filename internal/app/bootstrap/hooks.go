package bootstrap

import (
	"time"

	appconfig "github.com/whrealtors/realty-web/internal/config"
	"github.com/whrealtors/realty-web/internal/events"
	"github.com/whrealtors/realty-web/internal/leads"
	"github.com/whrealtors/realty-web/internal/notify"
	"github.com/whrealtors/realty-web/pkg/logging"
)

// BuildEventPublisher returns a Kafka publisher when brokers are configured
// and a no-op publisher otherwise.
func BuildEventPublisher(cfg *appconfig.Config, logger *logging.Logger) events.Publisher {
	if cfg == nil || len(cfg.KafkaBrokers) == 0 {
		return events.NoopPublisher{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	writer := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaLeadTopic)
	logger.Info("lead events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaLeadTopic)
	return events.NewKafkaPublisher(writer, cfg.KafkaLeadTopic, logger)
}

// BuildEmailSender picks the notification transport named by EMAIL_PROVIDER.
// It returns nil when email is disabled or the provider is misconfigured.
func BuildEmailSender(cfg *appconfig.Config, ses notify.SESAPI, logger *logging.Logger) notify.EmailSender {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.EmailProvider {
	case "", "none":
		return nil
	case "stub":
		return notify.NewStubEmailSender(logger)
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; email disabled")
			return nil
		}
		return sender
	case "ses":
		sender := notify.NewSESSender(ses, notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			logger.Warn("ses selected but no client available; email disabled")
			return nil
		}
		return sender
	default:
		logger.Warn("unknown email provider; email disabled", "provider", cfg.EmailProvider)
		return nil
	}
}

// BuildLeadHooks assembles the post-create side effects for the customers API.
func BuildLeadHooks(cfg *appconfig.Config, publisher events.Publisher, sender notify.EmailSender, titles notify.ProjectTitleFunc, logger *logging.Logger) []leads.Hook {
	if logger == nil {
		logger = logging.Default()
	}
	var hooks []leads.Hook
	if publisher != nil {
		if _, noop := publisher.(events.NoopPublisher); !noop {
			hooks = append(hooks, events.NewLeadHook(publisher))
		}
	}
	if cfg != nil {
		notifier := notify.NewLeadNotifier(sender, splitList(cfg.LeadNotifyAddress), logger,
			notify.WithProjectTitles(titles),
			notify.WithLocation(indiaTime()),
		)
		if notifier != nil {
			hooks = append(hooks, notifier)
		}
	}
	return hooks
}

func indiaTime() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*60*60+30*60)
}
