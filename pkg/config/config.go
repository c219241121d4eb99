// Package config implements the configuration shared by the protocol
// engines and by the channel simulator.
package config

import (
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/netemlab/minisr/internal/model"
	"github.com/netemlab/minisr/internal/runtimex"
)

// ErrBadConfig is returned when the configuration is not usable.
var ErrBadConfig = errors.New("invalid configuration")

const (
	// DefaultWindowSize is the number of slots in the send and receive windows.
	DefaultWindowSize = 6

	// DefaultSequenceSpace is the modulus over which sequence numbers wrap.
	// Selective repeat requires the sequence space to be at least twice the
	// window size, otherwise an old retransmission and a new packet occupying
	// the same modular slot would be ambiguous to the receiver.
	DefaultSequenceSpace = 12

	// DefaultRetransmitTimeout is the retransmission alarm interval, in
	// virtual time units, roughly one round trip.
	DefaultRetransmitTimeout = 16.0
)

// Config contains options for the selective-repeat engines and for the
// channel/environment simulator that drives them.
type Config struct {
	// logger will be used to log events.
	logger model.Logger

	// if a tracer is provided, it will be used to collect run events.
	tracer model.Tracer

	// windowSize is the number of slots in each window.
	windowSize int

	// sequenceSpace is the modulus for sequence numbers.
	sequenceSpace int

	// retransmitTimeout is the alarm interval in virtual time units.
	retransmitTimeout float64

	// lossProbability is the probability that the channel drops a packet.
	lossProbability float64

	// corruptionProbability is the probability that the channel tampers
	// with a packet it did not drop.
	corruptionProbability float64

	// meanDelay is the mean one-way channel delay in virtual time units.
	meanDelay float64

	// messageInterval is the mean virtual time between application messages.
	messageInterval float64

	// messageCount is how many messages the application source generates.
	messageCount int

	// seed seeds the simulator's random number generator.
	seed int64

	// tickDuration maps one virtual time unit to wall-clock time for the
	// concurrent service packaging of the engines.
	tickDuration time.Duration
}

// NewConfig returns a Config ready to drive a protocol run. It panics when
// the resulting configuration does not validate.
func NewConfig(options ...Option) *Config {
	cfg := &Config{
		logger:                log.Log,
		tracer:                model.DummyTracer{},
		windowSize:            DefaultWindowSize,
		sequenceSpace:         DefaultSequenceSpace,
		retransmitTimeout:     DefaultRetransmitTimeout,
		lossProbability:       0.0,
		corruptionProbability: 0.0,
		meanDelay:             5.0,
		messageInterval:       20.0,
		messageCount:          20,
		seed:                  1,
		tickDuration:          10 * time.Millisecond,
	}
	for _, opt := range options {
		opt(cfg)
	}
	runtimex.PanicOnError(cfg.Validate(), "config")
	return cfg
}

// Validate returns an error when the options do not describe a correct
// selective-repeat instance.
func (c *Config) Validate() error {
	if c.windowSize <= 0 {
		return errors.Wrap(ErrBadConfig, "window size must be positive")
	}
	if c.sequenceSpace < 2*c.windowSize {
		return errors.Wrapf(ErrBadConfig,
			"sequence space %d is smaller than twice the window size %d",
			c.sequenceSpace, c.windowSize)
	}
	if c.retransmitTimeout <= 0 {
		return errors.Wrap(ErrBadConfig, "retransmit timeout must be positive")
	}
	if c.lossProbability < 0 || c.lossProbability >= 1 {
		return errors.Wrap(ErrBadConfig, "loss probability must be in [0, 1)")
	}
	if c.corruptionProbability < 0 || c.corruptionProbability >= 1 {
		return errors.Wrap(ErrBadConfig, "corruption probability must be in [0, 1)")
	}
	if c.meanDelay <= 0 {
		return errors.Wrap(ErrBadConfig, "mean delay must be positive")
	}
	if c.messageInterval <= 0 {
		return errors.Wrap(ErrBadConfig, "message interval must be positive")
	}
	if c.messageCount < 0 {
		return errors.Wrap(ErrBadConfig, "message count must not be negative")
	}
	return nil
}

// Option is an option you can pass to [NewConfig].
type Option func(config *Config)

// WithLogger configures the passed [model.Logger].
func WithLogger(logger model.Logger) Option {
	return func(config *Config) {
		config.logger = logger
	}
}

// Logger returns the configured logger.
func (c *Config) Logger() model.Logger {
	return c.logger
}

// WithTracer configures the passed [model.Tracer].
func WithTracer(tracer model.Tracer) Option {
	return func(config *Config) {
		config.tracer = tracer
	}
}

// Tracer returns the configured tracer.
func (c *Config) Tracer() model.Tracer {
	return c.tracer
}

// WithWindowSize configures the window size for both engines.
func WithWindowSize(size int) Option {
	return func(config *Config) {
		config.windowSize = size
	}
}

// WindowSize returns the configured window size.
func (c *Config) WindowSize() int {
	return c.windowSize
}

// WithSequenceSpace configures the sequence-number modulus.
func WithSequenceSpace(space int) Option {
	return func(config *Config) {
		config.sequenceSpace = space
	}
}

// SequenceSpace returns the configured sequence-number modulus.
func (c *Config) SequenceSpace() int {
	return c.sequenceSpace
}

// WithRetransmitTimeout configures the retransmission alarm interval.
func WithRetransmitTimeout(ticks float64) Option {
	return func(config *Config) {
		config.retransmitTimeout = ticks
	}
}

// RetransmitTimeout returns the configured alarm interval.
func (c *Config) RetransmitTimeout() float64 {
	return c.retransmitTimeout
}

// WithLossProbability configures the channel loss probability.
func WithLossProbability(p float64) Option {
	return func(config *Config) {
		config.lossProbability = p
	}
}

// LossProbability returns the configured loss probability.
func (c *Config) LossProbability() float64 {
	return c.lossProbability
}

// WithCorruptionProbability configures the channel corruption probability.
func WithCorruptionProbability(p float64) Option {
	return func(config *Config) {
		config.corruptionProbability = p
	}
}

// CorruptionProbability returns the configured corruption probability.
func (c *Config) CorruptionProbability() float64 {
	return c.corruptionProbability
}

// WithMeanDelay configures the mean one-way channel delay.
func WithMeanDelay(ticks float64) Option {
	return func(config *Config) {
		config.meanDelay = ticks
	}
}

// MeanDelay returns the configured mean one-way delay.
func (c *Config) MeanDelay() float64 {
	return c.meanDelay
}

// WithMessageInterval configures the mean time between application messages.
func WithMessageInterval(ticks float64) Option {
	return func(config *Config) {
		config.messageInterval = ticks
	}
}

// MessageInterval returns the configured mean inter-message time.
func (c *Config) MessageInterval() float64 {
	return c.messageInterval
}

// WithMessageCount configures how many messages the application generates.
func WithMessageCount(count int) Option {
	return func(config *Config) {
		config.messageCount = count
	}
}

// MessageCount returns the configured message count.
func (c *Config) MessageCount() int {
	return c.messageCount
}

// WithSeed seeds the simulator's random number generator, making runs
// reproducible.
func WithSeed(seed int64) Option {
	return func(config *Config) {
		config.seed = seed
	}
}

// Seed returns the configured random seed.
func (c *Config) Seed() int64 {
	return c.seed
}

// WithTickDuration maps one virtual time unit to wall-clock time. Only the
// concurrent service packaging uses this; the simulator runs on virtual time.
func WithTickDuration(d time.Duration) Option {
	return func(config *Config) {
		config.tickDuration = d
	}
}

// TickDuration returns the configured virtual tick duration.
func (c *Config) TickDuration() time.Duration {
	return c.tickDuration
}
