package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	require.Equal(t, DefaultWindowSize, cfg.WindowSize())
	require.Equal(t, DefaultSequenceSpace, cfg.SequenceSpace())
	require.Equal(t, DefaultRetransmitTimeout, cfg.RetransmitTimeout())
	require.Equal(t, 0.0, cfg.LossProbability())
	require.Equal(t, 0.0, cfg.CorruptionProbability())
	require.NotNil(t, cfg.Logger())
	require.NotNil(t, cfg.Tracer())
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithWindowSize(4),
		WithSequenceSpace(8),
		WithRetransmitTimeout(20.0),
		WithLossProbability(0.25),
		WithCorruptionProbability(0.1),
		WithMeanDelay(3.0),
		WithMessageInterval(10.0),
		WithMessageCount(50),
		WithSeed(7),
		WithTickDuration(25*time.Millisecond),
	)
	require.Equal(t, 4, cfg.WindowSize())
	require.Equal(t, 8, cfg.SequenceSpace())
	require.Equal(t, 20.0, cfg.RetransmitTimeout())
	require.Equal(t, 0.25, cfg.LossProbability())
	require.Equal(t, 0.1, cfg.CorruptionProbability())
	require.Equal(t, 3.0, cfg.MeanDelay())
	require.Equal(t, 10.0, cfg.MessageInterval())
	require.Equal(t, 50, cfg.MessageCount())
	require.Equal(t, int64(7), cfg.Seed())
	require.Equal(t, 25*time.Millisecond, cfg.TickDuration())
}

func TestValidateRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"zero window", []Option{WithWindowSize(0)}},
		{"sequence space below twice the window", []Option{WithWindowSize(6), WithSequenceSpace(11)}},
		{"negative timeout", []Option{WithRetransmitTimeout(-1)}},
		{"loss probability of one", []Option{WithLossProbability(1.0)}},
		{"negative corruption probability", []Option{WithCorruptionProbability(-0.1)}},
		{"zero mean delay", []Option{WithMeanDelay(0)}},
		{"zero message interval", []Option{WithMessageInterval(0)}},
		{"negative message count", []Option{WithMessageCount(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				windowSize:        DefaultWindowSize,
				sequenceSpace:     DefaultSequenceSpace,
				retransmitTimeout: DefaultRetransmitTimeout,
				meanDelay:         5.0,
				messageInterval:   20.0,
				messageCount:      20,
			}
			for _, opt := range tt.opts {
				opt(cfg)
			}
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrBadConfig))
		})
	}
}

func TestNewConfigPanicsOnInvalidOptions(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on an invalid configuration")
		}
	}()
	NewConfig(WithWindowSize(-1))
}
