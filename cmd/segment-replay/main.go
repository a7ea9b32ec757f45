// Command segment-replay publishes recorded voice segments to the tracker's
// AMQP feed. The input file holds a JSON array of segments in the order they
// were produced by the speech recognizer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/log"
	"expensetracker/internal/voice"
)

func main() {
	file := flag.String("file", "", "path to a JSON array of voice segments")
	delay := flag.Duration("delay", 200*time.Millisecond, "pause between published segments")
	flag.Parse()

	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.SetupLogger("info").Error("Startup failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentAMQP)

	if *file == "" {
		logger.Error("Missing -file flag")
		os.Exit(2)
	}
	if !cfg.VoiceFeedEnabled() {
		logger.Error("AMQP_URL must be set to replay segments")
		os.Exit(1)
	}

	segments, err := readSegments(*file)
	if err != nil {
		logger.Error("Failed to read segments", "file", *file, log.FieldError, err.Error())
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	published, err := replay(ctx, client, segments, *delay)
	if err != nil {
		logger.Error("Replay stopped",
			log.FieldOperation, log.OpPublish,
			"published", published,
			log.FieldError, err.Error())
		client.Close()
		os.Exit(1)
	}
	logger.Info("Replay complete", log.FieldOperation, log.OpPublish, "published", published)
}

type publisher interface {
	PublishSegment(ctx context.Context, seg voice.Segment) error
}

func replay(ctx context.Context, pub publisher, segments []voice.Segment, delay time.Duration) (int, error) {
	for i, seg := range segments {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return i, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := pub.PublishSegment(ctx, seg); err != nil {
			return i, fmt.Errorf("publish segment %d: %w", seg.ID, err)
		}
	}
	return len(segments), nil
}

func readSegments(path string) ([]voice.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	segments := make([]voice.Segment, 0, len(raw))
	for i, r := range raw {
		seg, err := voice.DecodeSegment(r)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}
