package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("SWEEP_SCHEDULE", "")
	t.Setenv("REAPER_SCHEDULE", "")
	t.Setenv("SWEEP_GRACE_AGE", "")
	t.Setenv("REAPER_GRACE_AGE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SweepSchedule != "@every 10m" {
		t.Fatalf("expected sweep every 10m, got %q", cfg.SweepSchedule)
	}
	if cfg.ReaperSchedule != "@every 10m" {
		t.Fatalf("expected reaper every 10m, got %q", cfg.ReaperSchedule)
	}
	if cfg.SweepGraceAge != 10*time.Minute {
		t.Fatalf("expected sweep grace age 10m, got %s", cfg.SweepGraceAge)
	}
	if cfg.ReaperGraceAge != 30*time.Minute {
		t.Fatalf("expected reaper grace age 30m, got %s", cfg.ReaperGraceAge)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected no brokers without KAFKA_BROKERS, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadParsesBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "kafka-1:9092" || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}
