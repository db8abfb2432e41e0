package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/sensorboard/internal/devbackend"
	"github.com/okian/sensorboard/pkg/logger"
)

func main() {
	def := devbackend.DefaultConfig()
	var (
		addr      = flag.String("addr", def.Addr, "Listen address")
		sensors   = flag.Int("sensors", def.Sensors, "Number of generated sensors")
		drift     = flag.Duration("drift", def.DriftInterval, "Interval between status changes, 0 disables drift")
		driftRate = flag.Float64("drift-rate", def.DriftRate, "Share of sensors that may change status per drift")
		failRate  = flag.Float64("fail-rate", 0, "Share of status summary requests answered with 500")
		latency   = flag.Duration("latency", 0, "Delay added to every response")
		verbose   = flag.Bool("verbose", false, "Log every request")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		devbackend.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := devbackend.New(devbackend.Config{
		Addr:          *addr,
		Sensors:       *sensors,
		DriftInterval: *drift,
		DriftRate:     *driftRate,
		FailRate:      *failRate,
		Latency:       *latency,
		Verbose:       *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("invalid flags: " + err.Error() + "\n")
		os.Exit(2)
	}

	if err := b.Run(ctx); err != nil {
		logger.Get().Error(ctx, "dev backend stopped", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
