package netsim

import (
	"testing"

	"github.com/apex/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/netemlab/minisr/pkg/config"
)

func newTestConfig(opts ...config.Option) *config.Config {
	level := log.ErrorLevel
	if testing.Verbose() {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	all := append([]config.Option{config.WithLogger(log.Log)}, opts...)
	return config.NewConfig(all...)
}

// Every message the sender accepted must reach the application exactly
// once, in submission order, no matter what the channel does to the
// packets. This is the end-to-end contract of selective repeat.
func requireReliableDelivery(t *testing.T, sim *Simulation) {
	t.Helper()
	if diff := cmp.Diff(sim.SubmittedLetters(), sim.DeliveredLetters()); diff != "" {
		t.Fatalf("delivered letters differ from submitted (-want +got):\n%s", diff)
	}
}

func TestSimulationPerfectChannel(t *testing.T) {
	sim := New(newTestConfig(
		config.WithMessageCount(20),
		config.WithSeed(42),
	))
	report := sim.Run()

	requireReliableDelivery(t, sim)
	require.Equal(t, 20, report.Submitted)
	require.Equal(t, 20, report.Delivered)
	require.Equal(t, 0, report.Channel.Lost)
	require.Equal(t, 0, report.Channel.Corrupted)
	require.Equal(t, 0, report.Sender.CorruptedDropped)
	require.Equal(t, 0, report.Receiver.CorruptedDropped)
}

func TestSimulationWithLoss(t *testing.T) {
	tests := []struct {
		name string
		loss float64
		seed int64
	}{
		{"light loss", 0.1, 1},
		{"moderate loss", 0.3, 2},
		{"heavy loss", 0.5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := New(newTestConfig(
				config.WithMessageCount(30),
				config.WithLossProbability(tt.loss),
				config.WithSeed(tt.seed),
			))
			report := sim.Run()

			requireReliableDelivery(t, sim)
			require.Equal(t, report.Submitted, report.Delivered)
			require.Greater(t, report.Sender.Retransmissions, 0,
				"a lossy channel must force the alarm to fire")
		})
	}
}

func TestSimulationWithCorruption(t *testing.T) {
	sim := New(newTestConfig(
		config.WithMessageCount(30),
		config.WithCorruptionProbability(0.3),
		config.WithSeed(7),
	))
	report := sim.Run()

	requireReliableDelivery(t, sim)
	require.Greater(t, report.Channel.Corrupted, 0)
	require.Equal(t, report.Channel.Corrupted,
		report.Sender.CorruptedDropped+report.Receiver.CorruptedDropped,
		"every tampered packet must be caught by the detector at one end")
}

func TestSimulationWithLossAndCorruption(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		sim := New(newTestConfig(
			config.WithMessageCount(25),
			config.WithLossProbability(0.15),
			config.WithCorruptionProbability(0.15),
			config.WithSeed(seed),
		))
		report := sim.Run()

		requireReliableDelivery(t, sim)
		require.Equal(t, report.Submitted, report.Delivered)
	}
}

func TestSimulationBackpressure(t *testing.T) {
	// messages arrive much faster than the channel can retire them, so
	// the send window must reject part of the load synchronously
	sim := New(newTestConfig(
		config.WithMessageCount(60),
		config.WithMessageInterval(1),
		config.WithLossProbability(0.2),
		config.WithSeed(11),
	))
	report := sim.Run()

	requireReliableDelivery(t, sim)
	require.Greater(t, report.Channel.MessagesDropped, 0)
	require.Equal(t, 60, report.Submitted+report.Channel.MessagesDropped)
	require.Equal(t, report.Channel.MessagesDropped, report.Sender.WindowFullRejections)
}

func TestSimulationIsDeterministic(t *testing.T) {
	run := func() (*Report, []byte) {
		sim := New(newTestConfig(
			config.WithMessageCount(25),
			config.WithLossProbability(0.2),
			config.WithCorruptionProbability(0.1),
			config.WithSeed(99),
		))
		report := sim.Run()
		return report, sim.DeliveredLetters()
	}

	firstReport, firstLetters := run()
	secondReport, secondLetters := run()

	if diff := cmp.Diff(firstReport, secondReport); diff != "" {
		t.Fatalf("same seed, different report (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstLetters, secondLetters); diff != "" {
		t.Fatalf("same seed, different deliveries (-first +second):\n%s", diff)
	}
}

func TestSimulationAlarmDiscipline(t *testing.T) {
	// after any run the alarm must be disarmed: everything submitted was
	// eventually acknowledged and nothing is left in flight
	sim := New(newTestConfig(
		config.WithMessageCount(15),
		config.WithLossProbability(0.25),
		config.WithSeed(5),
	))
	sim.Run()

	require.Equal(t, 0, sim.sender.Outstanding())
	require.False(t, sim.sender.AlarmArmed())
	require.Empty(t, sim.alarmEvents)
}
