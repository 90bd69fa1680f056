package cli

import (
	"context"
	stderrors "errors"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/rileyhilliard/obddash/internal/animation"
	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/dashboard"
	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/gauge"
	"github.com/rileyhilliard/obddash/internal/ingest"
	"github.com/rileyhilliard/obddash/internal/logger"
	"github.com/rileyhilliard/obddash/internal/metrics"
	"github.com/rileyhilliard/obddash/internal/telemetry"
	"github.com/rileyhilliard/obddash/internal/tui"
	"github.com/rileyhilliard/obddash/internal/ui"
)

// dashOptions are the flags of the dash command.
type dashOptions struct {
	Device      DeviceFlags
	Plain       bool
	MetricsAddr string
}

var dashOpts dashOptions

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Show the instrument cluster",
	Long: `Open the serial adapter and draw the instrument cluster.

Without --port (and no device.port in the config), a picker lists the serial
ports found on this machine. The choice is saved to the config file when one
exists. Inside the cluster, press ? for key bindings.

When stdout isn't a terminal, or with --plain, one status line is printed per
render.plain_interval instead.

Examples:
  obddash dash
  obddash dash --port /dev/ttyUSB0 --baud 38400
  obddash dash --plain --port COM3 | tee drive.log
  obddash dash --metrics-addr 127.0.0.1:9464`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashCommand(cmd.Context(), dashOpts)
	},
}

func init() {
	AddDeviceFlags(dashCmd, &dashOpts.Device)
	dashCmd.Flags().BoolVar(&dashOpts.Plain, "plain", false, "print status lines instead of drawing the cluster")
	dashCmd.Flags().StringVar(&dashOpts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on host:port (overrides metrics.listen)")
	rootCmd.AddCommand(dashCmd)
}

// session is everything one dash run wires together.
type session struct {
	cfg     *config.Config
	mgr     *conn.Manager
	state   *telemetry.State
	metrics *metrics.Metrics
	link    *ingest.Link
	comp    *dashboard.Compositor
}

// newSession builds the connection, ingestion and rendering pipeline from cfg.
func newSession(cfg *config.Config, now time.Time) (*session, error) {
	mgr := conn.NewManager(conn.SerialOpener,
		conn.WithReadTimeout(cfg.Device.ReadTimeout),
		conn.WithLogger(logger.NewEnvLogger("[conn]")))
	state := telemetry.NewState()

	m := metrics.New()
	mgr.OnStateChange(m.SetState)

	link := ingest.NewLink(mgr, state,
		ingest.WithRecorder(m),
		ingest.WithLogger(logger.NewEnvLogger("[ingest]")))

	comp, err := newCompositor(cfg, state, now)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, mgr: mgr, state: state, metrics: m, link: link, comp: comp}, nil
}

// newCompositor builds the cluster from the gauges, digital and animation
// sections. The animation clock starts at now.
func newCompositor(cfg *config.Config, src dashboard.Source, now time.Time) (*dashboard.Compositor, error) {
	specs, err := dashboard.SpecsFromConfig(cfg.Gauges)
	if err != nil {
		return nil, err
	}
	return dashboard.New(src, specs,
		dashboard.WithClock(animation.NewClock(now, cfg.Animation.MaxRPM)),
		dashboard.WithThresholds(gauge.Thresholds{
			Warning: cfg.Digital.Warning,
			Danger:  cfg.Digital.Danger,
		}),
	), nil
}

func dashCommand(ctx context.Context, opts dashOptions) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logger.NewEnvLogger("[dash]")

	port, baud, err := opts.Device.Resolve(cfg.Device)
	if err != nil {
		return err
	}

	interactive := !opts.Plain && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive && port == "" {
		port, baud, err = pickDevice(opts.Device, baud)
		if err != nil {
			return err
		}
		if port != "" && cfgPath != "" {
			if err := config.SetDevice(cfgPath, port, baud); err != nil {
				log.Warn("couldn't save device to %s: %v", cfgPath, err)
			} else {
				log.Info("saved device %s @ %d to %s", port, baud, cfgPath)
			}
		}
	}

	s, err := newSession(cfg, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	addr := opts.MetricsAddr
	if addr == "" {
		addr = cfg.Metrics.Listen
	}
	if addr != "" {
		g.Go(func() error {
			return s.metrics.Serve(ctx, addr, logger.NewEnvLogger("[metrics]"))
		})
	}

	g.Go(func() error {
		// The cluster ending ends the run, metrics server included.
		defer cancel()
		defer s.link.Disconnect()
		if interactive {
			return s.runTUI(ctx, port, baud)
		}
		return s.runPlain(ctx, port, baud)
	})

	log.Info("dash started: port=%q baud=%d interactive=%t", port, baud, interactive)
	return g.Wait()
}

// pickDevice asks for a port and, unless --baud was given, a baud rate.
// A cancelled port picker leaves the port empty so it can be chosen from
// inside the cluster.
func pickDevice(flags DeviceFlags, baud int) (string, int, error) {
	ports, err := conn.ListPorts()
	if err != nil {
		return "", baud, err
	}
	if len(ports) == 0 {
		return "", baud, nil
	}
	picked, err := ui.PickPort(ports)
	if err != nil || picked == nil {
		return "", baud, err
	}
	if !flags.BaudSet() {
		if baud, err = ui.PickBaud(config.SupportedBauds, baud); err != nil {
			return "", baud, err
		}
	}
	return picked.Name, baud, nil
}

func listPortNames() ([]string, error) {
	ports, err := conn.ListPorts()
	if err != nil {
		return nil, err
	}
	return conn.PortNames(ports), nil
}

func (s *session) runTUI(ctx context.Context, port string, baud int) error {
	names, err := listPortNames()
	if err != nil {
		logger.NewEnvLogger("[dash]").Warn("port scan failed: %v", err)
	}

	model := tui.NewModel(tui.Options{
		Compositor:      s.comp,
		Link:            s.link,
		Conn:            s.mgr,
		ListPorts:       listPortNames,
		Ports:           names,
		Port:            port,
		Baud:            baud,
		RenderInterval:  s.cfg.Render.Interval,
		StartupInterval: s.cfg.Animation.StartupInterval,
		BootStep:        s.cfg.Animation.StartupStep,
		AutoConnect:     port != "",
		Log:             logger.NewEnvLogger("[tui]"),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrRender,
			"The cluster display stopped unexpectedly",
			"Try --plain, or check the log file for details.")
	}
	return nil
}

func (s *session) runPlain(ctx context.Context, port string, baud int) error {
	if port == "" {
		return errors.New(errors.ErrConfig,
			"No serial port configured",
			"Pass --port, set device.port in .obddash.yaml, or run 'obddash ports' to list devices.")
	}

	var sp *ui.Spinner
	if term.IsTerminal(int(os.Stderr.Fd())) {
		sp = ui.NewSpinner(os.Stderr, "Opening "+port)
		sp.Start()
	}
	err := s.link.Connect(port, baud)
	if sp != nil {
		if err != nil {
			sp.Fail()
		} else {
			sp.Success()
		}
	}
	if err != nil {
		return err
	}

	printer := tui.NewPlainPrinter(os.Stdout, s.comp, s.mgr, s.cfg.Render.PlainInterval)
	return printer.Run(ctx)
}
