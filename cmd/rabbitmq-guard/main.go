package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rabbitmq-guard/internal/alert"
	"rabbitmq-guard/internal/api"
	"rabbitmq-guard/internal/client"
	"rabbitmq-guard/internal/monitor"
	"rabbitmq-guard/internal/rules"
	"rabbitmq-guard/internal/storage"
	"rabbitmq-guard/internal/utils"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Configuration file path (YAML); defaults plus environment variables when empty")
		showVersion = flag.Bool("version", false, "Show version information")
		testSlack   = flag.Bool("test-slack", false, "Send a test message to the Slack webhook and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("rabbitmq-guard v1.0.0")
		return
	}

	config, err := utils.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(config.Logging.Level)

	if *testSlack {
		slack := alert.NewSlackNotifier(config.Alerting.SlackWebhookURL, config.Endpoint(), logger)
		if err := slack.SendTestMessage(); err != nil {
			fmt.Printf("Failed to send test message: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Test message sent successfully")
		return
	}

	logger.Infof("rabbitmq-guard starting, broker %s, interval %v", config.Endpoint(), config.Interval())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Infof("Received %v, stopping...", sig)
		cancel()
	}()

	metrics := client.NewMetrics()
	exporter, err := alert.NewPrometheusExporter(config.Monitoring.PrometheusPort, metrics, logger)
	if err != nil {
		logger.Errorf("Failed to create Prometheus exporter: %v", err)
		os.Exit(1)
	}
	go func() {
		if err := exporter.Start(ctx); err != nil {
			logger.Errorf("Prometheus exporter error: %v", err)
		}
	}()

	mgmtClient := client.NewManagementClient(
		config.RabbitMQ.Host,
		config.RabbitMQ.Port,
		config.RabbitMQ.Username,
		config.RabbitMQ.Password,
		config.FetchTimeout(),
		logger,
	)

	store := storage.NewStorage(logger)
	store.SetRules(ruleCatalog())

	engine := rules.NewEngine(rules.NewCooldownTracker(nil), logger)
	engine.SetMetrics(metrics)
	registerBuiltinRules(engine, config, logger)
	registerNotifiers(engine, store, config, logger)

	if config.API.Enabled {
		apiServer := api.NewServer(config.API.Port, store, logger)
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				logger.Errorf("Status API error: %v", err)
			}
		}()
	}

	evaluator := monitor.NewEvaluator(mgmtClient, engine, metrics, config.FetchTimeout(), logger)
	scheduler := monitor.NewScheduler(evaluator, engine, config.Interval(), config.Endpoint(), logger)

	if err := scheduler.Run(ctx); err != nil {
		logger.Errorf("Monitoring failed: %v", err)
		os.Exit(1)
	}
}

func registerNotifiers(engine *rules.Engine, store *storage.Storage, config *utils.Config, logger *logrus.Logger) {
	if config.Alerting.Channels.Log {
		engine.RegisterNotifier(alert.NewLogNotifier(logger))
	}
	if config.Alerting.Channels.Slack {
		slack := alert.NewSlackNotifier(config.Alerting.SlackWebhookURL, config.Endpoint(), logger)
		if !slack.IsEnabled() {
			logger.Warn("Slack channel enabled but no webhook URL configured; Slack alerts will be skipped")
		}
		engine.RegisterNotifier(slack)
	}
	engine.RegisterNotifier(store)
}
