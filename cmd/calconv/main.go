package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"calconv/internal/config"
	"calconv/internal/convert"
	"calconv/internal/tui"
)

// parseLogLevel maps a level name to a logrus level, defaulting to warn.
func parseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.WarnLevel
	}
}

func main() {
	app := &cli.App{
		Name:  "calconv",
		Usage: "bi-directional conversion from/to JSCalendar/iCalendar and JSContact/vCard",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "roundtrip",
				Usage: "print the round-trip conversion instead of the primary output",
			},
			&cli.BoolFlag{
				Name:  "occurrences",
				Usage: "print the expanded occurrence table instead of the primary output",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Discard output until the surface is known: in interactive mode stdout
	// belongs to the TUI, in pipe mode it belongs to the conversion result.
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(parseLogLevel(cfg.LogLevel))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	opts := convert.Options{
		MaxOccurrences: cfg.MaxOccurrences,
		DefaultZone:    cfg.Timezone,
		Logger:         logger,
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		logger.SetOutput(os.Stderr)
		return runPipe(c, opts)
	}

	if f, ferr := openLogFile(cfg.LogFile); ferr == nil {
		logger.SetOutput(f)
		defer f.Close()
	}

	_, err = tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen()).Run()
	return err
}

// runPipe converts stdin once and prints the requested panel, so the
// converter composes in shell pipelines.
func runPipe(c *cli.Context, opts convert.Options) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	result, cerr := convert.Convert(string(data), opts)
	if result == nil {
		if cerr != nil {
			return cli.Exit(cerr.Error(), 1)
		}
		return nil // empty input is a no-op
	}

	switch {
	case c.Bool("roundtrip"):
		if cerr != nil {
			// The primary conversion succeeded but the round-trip did not;
			// there is nothing to print on this path.
			return cli.Exit(cerr.Error(), 1)
		}
		fmt.Println(result.RoundTrip)
	case c.Bool("occurrences"):
		for _, occ := range result.Occurrences {
			fmt.Printf("%s\t%s\n", occ.From, occ.To)
		}
		if cerr != nil {
			fmt.Fprintln(os.Stderr, cerr.Error())
		}
	default:
		fmt.Println(result.Output)
		if cerr != nil {
			fmt.Fprintln(os.Stderr, cerr.Error())
		}
	}
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
