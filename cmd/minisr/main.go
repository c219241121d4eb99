// Command minisr runs a selective-repeat transfer over the simulated
// unreliable channel and reports what happened.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/pborman/getopt/v2"

	"github.com/netemlab/minisr/internal/netsim"
	"github.com/netemlab/minisr/internal/runtimex"
	"github.com/netemlab/minisr/pkg/config"
	"github.com/netemlab/minisr/pkg/tracex"
)

var (
	startTime = time.Now()
)

func main() {
	optMessages := getopt.IntLong("messages", 'n', 20, "Number of messages to generate")
	optLoss := getopt.StringLong("loss", 'l', "0.0", "Packet loss probability in [0, 1)")
	optCorrupt := getopt.StringLong("corrupt", 'c', "0.0", "Packet corruption probability in [0, 1)")
	optWindow := getopt.IntLong("window", 'w', config.DefaultWindowSize, "Window size for both entities")
	optSeqSpace := getopt.IntLong("seqspace", 'q', config.DefaultSequenceSpace, "Sequence-number space (at least twice the window)")
	optTimeout := getopt.StringLong("timeout", 'r', "16.0", "Retransmission timeout in virtual ticks")
	optDelay := getopt.StringLong("delay", 'd', "5.0", "Mean one-way channel delay in virtual ticks")
	optInterval := getopt.StringLong("interval", 'i', "20.0", "Mean time between generated messages in virtual ticks")
	optSeed := getopt.Int64Long("seed", 's', 1, "Random seed for the channel")
	optTrace := getopt.BoolLong("trace", 'T', "Write a JSON trace of the run and exit")
	optVerbose := getopt.BoolLong("verbose", 'v', "Emit debug logs")
	helpFlag := getopt.BoolLong("help", 'h', "Display help")

	getopt.Parse()

	if *helpFlag {
		getopt.Usage()
		os.Exit(0)
	}

	log.SetHandler(&logHandler{Writer: os.Stderr})
	if *optVerbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	opts := []config.Option{
		config.WithLogger(log.Log),
		config.WithMessageCount(*optMessages),
		config.WithLossProbability(parseProbability("loss", *optLoss)),
		config.WithCorruptionProbability(parseProbability("corrupt", *optCorrupt)),
		config.WithWindowSize(*optWindow),
		config.WithSequenceSpace(*optSeqSpace),
		config.WithRetransmitTimeout(parseTicks("timeout", *optTimeout)),
		config.WithMeanDelay(parseTicks("delay", *optDelay)),
		config.WithMessageInterval(parseTicks("interval", *optInterval)),
		config.WithSeed(*optSeed),
	}

	var tracer *tracex.Tracer
	if *optTrace {
		tracer = tracex.NewTracer()
		opts = append(opts, config.WithTracer(tracer))
	}

	sim := netsim.New(config.NewConfig(opts...))
	report := sim.Run()

	if tracer != nil {
		jsonData, err := json.MarshalIndent(tracer.Trace(), "", "  ")
		runtimex.PanicOnError(err, "cannot serialize trace")
		fileName := fmt.Sprintf("run-trace-%s.json", tracer.RunID())
		err = os.WriteFile(fileName, jsonData, 0644)
		runtimex.PanicOnError(err, "cannot write trace file")
		fmt.Println("trace written to", fileName)
	}

	fmt.Printf("elapsed virtual time:     %.2f ticks\n", report.ElapsedTicks)
	fmt.Printf("messages generated:       %d\n", report.Submitted+report.Channel.MessagesDropped)
	fmt.Printf("rejected (window full):   %d\n", report.Channel.MessagesDropped)
	fmt.Printf("original transmissions:   %d\n", report.Sender.PacketsSent)
	fmt.Printf("retransmissions:          %d\n", report.Sender.Retransmissions)
	fmt.Printf("lost by the channel:      %d\n", report.Channel.Lost)
	fmt.Printf("corrupted by the channel: %d\n", report.Channel.Corrupted)
	fmt.Printf("ACKs received:            %d (%d new, %d duplicate)\n",
		report.Sender.ACKsReceived, report.Sender.NewACKs, report.Sender.DuplicateACKs)
	fmt.Printf("delivered to application: %d\n", report.Delivered)

	if report.Delivered != report.Submitted {
		fmt.Println("warning: not every accepted message was delivered")
		os.Exit(1)
	}
}

func parseProbability(name, value string) float64 {
	var p float64
	_, err := fmt.Sscanf(value, "%f", &p)
	runtimex.PanicOnError(err, "cannot parse --"+name)
	return p
}

func parseTicks(name, value string) float64 {
	var ticks float64
	_, err := fmt.Sscanf(value, "%f", &ticks)
	runtimex.PanicOnError(err, "cannot parse --"+name)
	return ticks
}

type logHandler struct {
	io.Writer
}

func (h *logHandler) HandleLog(e *log.Entry) (err error) {
	var s string
	if e.Level == log.DebugLevel {
		s = fmt.Sprintf("%s", e.Message)
	} else if e.Level == log.ErrorLevel {
		s = fmt.Sprintf("[%14.6f] <!err> %s", time.Since(startTime).Seconds(), e.Message)
	} else {
		s = fmt.Sprintf("[%14.6f] <%s> %s", time.Since(startTime).Seconds(), e.Level, e.Message)
	}
	if len(e.Fields) > 0 {
		s += fmt.Sprintf(": %+v", e.Fields)
	}
	s += "\n"
	_, err = h.Writer.Write([]byte(s))
	return
}
