// Command accelscope loads accelerometer CSV captures, computes their
// spectra and writes time and frequency plots.
//
// Usage:
//
//	accelscope [global flags] command [flags] [args]
//
// Examples:
//
//	accelscope run experiments/exp1-iis2dh-vs-iis3dwb.yaml
//	accelscope compare --layout iis2dh,iis3dwb --sample-rate 1330,26900 --duration 0.95 --xmin 400 --xmax 600 a.csv b.csv
//	accelscope spectrum --layout logger --axis z --resample-rate 2000 -o fft.png capture.csv
//	accelscope inspect --layout logger capture.csv
//	accelscope synth --tone z:120:40 -o synthetic.csv
//	accelscope windows hann hamming
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/cwbudde/accelscope/internal/logging"
	"github.com/urfave/cli/v2"
)

type app struct {
	logger *slog.Logger
}

func newApp(stdout, stderr io.Writer) *cli.App {
	a := &app{logger: logging.Discard()}

	return &cli.App{
		Name:      "accelscope",
		Usage:     "analyse accelerometer captures: time plots, FFT spectra, sensor comparisons",
		Version:   "0.1.0",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "text or json",
				Value: "text",
			},
		},
		Before: func(c *cli.Context) error {
			logger, err := logging.New(stderr, c.String("log-level"), c.String("log-format"))
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			a.runCommand(),
			a.timeCommand(),
			a.magnitudeCommand(),
			a.spectrumCommand(),
			a.compareCommand(),
			a.inspectCommand(),
			a.synthCommand(),
			layoutsCommand(),
			windowsCommand(),
		},
	}
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("accelscope", "err", err)
		os.Exit(1)
	}
}
