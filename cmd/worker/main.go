package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alterfero/dig4el-sub001/internal/config"
	"github.com/alterfero/dig4el-sub001/internal/queue"
	"github.com/alterfero/dig4el-sub001/internal/storage"
	"github.com/alterfero/dig4el-sub001/internal/util"
	"github.com/alterfero/dig4el-sub001/pkg/leaselock"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/logger/console"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
		JSON:  util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	cfg, err := config.Load(util.GetEnvString("CONFIG_FILE", "dig4el.yaml"))
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}
	builder, err := cfg.Builder()
	if err != nil {
		logger.Fatal("Failed to create builder", "err", err)
	}

	// Backends
	var clients storage.Clients
	snapshotBackend := storage.SnapshotBackend()
	sourceBackend := storage.SourceBackend()
	if snapshotBackend == storage.BackendS3 || sourceBackend == storage.BackendS3 {
		client, err := storage.NewS3Client(ctx)
		if err != nil {
			logger.Fatal("Failed to create S3 client", "err", err)
		}
		clients.S3 = client
	}
	var locker queue.Locker
	if databaseURL := util.GetEnv("DATABASE_URL"); databaseURL != "" {
		pgConn, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			logger.Fatal("Unable to connect to database", "err", err)
		}
		defer pgConn.Close()
		clients.Pool = pgConn
		locker = leaselock.New(pgConn)
	}

	snapshots, err := storage.NewSnapshotStore(snapshotBackend, clients)
	if err != nil {
		logger.Fatal("Failed to open snapshot store", "backend", snapshotBackend, "err", err)
	}
	sources, err := storage.NewSourceLoader(sourceBackend, clients)
	if err != nil {
		logger.Fatal("Failed to open source loader", "backend", sourceBackend, "err", err)
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.BuildQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	processor := queue.NewProcessor(queue.NewProcessorParams{
		Builder: builder,
		Sources: sources,
		Store:   snapshots,
		Locker:  locker,
		Events:  ch,
	})

	// One message at a time. Builds of one language are serialized by the
	// lease lock when several workers run.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.BuildQueue,
		fmt.Sprintf("%s_consumer", queue.BuildQueue),
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.BuildQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.BuildQueue, "snapshots", snapshotBackend, "sources", sourceBackend)

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed", "queue", queue.BuildQueue)
					stop()
					return
				}
				startTime := time.Now()
				logger.Info("Received message", "queue", queue.BuildQueue)

				if err := processor.ProcessBuildMessage(ctx, msg.Body); err != nil {
					logger.Error("Error processing message", "queue", queue.BuildQueue, "err", err)
					queue.HandleProcessingError(consumerCh, msg, queue.BuildQueue, err)
				} else {
					if err := msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", queue.BuildQueue)
				}

				processingDuration := time.Since(startTime)
				hours := int(processingDuration.Hours())
				minutes := int(processingDuration.Minutes()) % 60
				seconds := int(processingDuration.Seconds()) % 60
				logger.Info(
					"Processing time",
					"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
				)
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}
