// Package settingsim drives the notification settings engine from a line-oriented
// command stream, standing in for the app's settings screen.
package settingsim

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"enatega_storefront/internal/client"
	"enatega_storefront/internal/device"
	"enatega_storefront/internal/lifecycle"
	"enatega_storefront/internal/model"
	"enatega_storefront/internal/preference"
)

var (
	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

const helpText = `commands:
  resume | background            move the app to the foreground / background
  toggle offer|order             flip a notification switch
  permission granted|denied      change the OS notification permission
  language [code]                show or select the UI language
  reviews <restaurant>           show a restaurant's rating breakdown
  state                          print the current switches
  quit`

// Config wires a Session.
type Config struct {
	Client   *client.Client
	Device   *device.Simulator
	Storage  *device.Storage
	Rollback bool
	Prompt   bool
	Out      io.Writer
	Logger   *slog.Logger
}

// Session is one settings screen attached to a simulated device.
type Session struct {
	client  *client.Client
	device  *device.Simulator
	storage *device.Storage
	hub     *lifecycle.Hub
	engine  *preference.Engine
	prompt  bool
	logger  *slog.Logger

	outMu sync.Mutex
	out   io.Writer
}

func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		client:  cfg.Client,
		device:  cfg.Device,
		storage: cfg.Storage,
		hub:     lifecycle.NewHub(logger),
		prompt:  cfg.Prompt,
		out:     cfg.Out,
		logger:  logger.With("component", "settingsim"),
	}

	s.engine = preference.NewEngine(preference.Dependencies{
		Permissions: cfg.Device,
		Tokens:      client.NewTokenRegistrar(cfg.Device, cfg.Client),
		Mutator:     cfg.Client,
		Lifecycle:   s.hub,
		Settings:    cfg.Device,
		Device:      cfg.Device,
		Notifier:    preference.NotifierFunc(s.printNotice),
	}, model.NotificationProfile{}, preference.Options{
		RollbackOnFailure: cfg.Rollback,
		Logger:            logger,
	})
	return s
}

// Run loads the profile, mounts the screen and executes commands from in until
// quit, EOF or ctx is done.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	profile, err := s.client.GetNotificationProfile(ctx)
	if err != nil {
		s.logger.Warn("profile fetch failed, starting with an empty profile", "err", err)
	} else {
		s.engine.SetProfile(profile)
	}

	s.engine.Mount(ctx)
	s.engine.OnChange(s.printState)
	s.printState(s.engine.State())
	if err := s.engine.Start(ctx); err != nil {
		return err
	}
	defer s.engine.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		s.printPrompt()
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := s.Execute(ctx, line); quit {
				return nil
			}
		}
	}
}

// Execute runs one command line and reports whether the session should end.
func (s *Session) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "quit", "exit":
		return true
	case "help":
		s.println(helpStyle.Render(helpText))
	case "resume":
		if s.hub.Current() == model.LifecycleActive {
			s.println(helpStyle.Render("already in the foreground, use background first"))
			return false
		}
		s.hub.Transition(model.LifecycleActive)
	case "background":
		s.hub.Transition(model.LifecycleBackground)
	case "toggle":
		if len(args) != 1 {
			s.println(errorStyle.Render("usage: toggle offer|order"))
			return false
		}
		s.toggle(ctx, model.ToggleKind(args[0]))
	case "permission":
		if len(args) != 1 {
			s.println(errorStyle.Render("usage: permission granted|denied"))
			return false
		}
		s.setPermission(model.PermissionState(args[0]))
	case "language":
		s.language(args)
	case "reviews":
		id, err := parseRestaurantID(args)
		if err != nil {
			s.println(errorStyle.Render("usage: reviews <restaurant id>"))
			return false
		}
		s.reviews(ctx, id)
	case "state":
		s.printState(s.engine.State())
	default:
		s.println(errorStyle.Render(fmt.Sprintf("unknown command %q, try help", cmd)))
	}
	return false
}

func (s *Session) toggle(ctx context.Context, kind model.ToggleKind) {
	before := s.device.SettingsOpened()
	err := s.engine.Toggle(ctx, kind)

	var remoteErr *model.RemoteUpdateError
	switch {
	case err == nil:
		if s.device.SettingsOpened() > before {
			s.println(helpStyle.Render("opened system settings: grant notification permission, then resume"))
		}
	case errors.As(err, &remoteErr), errors.Is(err, model.ErrDeviceUnsupported):
		// Already reported through the notifier.
	default:
		s.println(errorStyle.Render(err.Error()))
	}
}

func (s *Session) setPermission(p model.PermissionState) {
	switch p {
	case model.PermissionGranted, model.PermissionDenied, model.PermissionUndetermined:
		s.device.SetPermission(p)
		s.println(helpStyle.Render("permission is now " + string(p) + "; resume to apply"))
	default:
		s.println(errorStyle.Render("usage: permission granted|denied"))
	}
}

func (s *Session) language(args []string) {
	if s.storage == nil {
		s.println(errorStyle.Render("no device storage"))
		return
	}

	var (
		lang model.Language
		err  error
	)
	if len(args) == 0 {
		lang, err = device.SelectedLanguage(s.storage)
	} else {
		lang, err = device.SelectLanguage(s.storage, args[0])
	}
	if err != nil {
		s.println(errorStyle.Render(err.Error()))
		return
	}
	s.println(stateStyle.Render(fmt.Sprintf("language %s (%s)", lang.Code, lang.Name)))
}

func (s *Session) reviews(ctx context.Context, restaurantID int64) {
	summary, err := s.client.ReviewSummary(ctx, restaurantID)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			s.println(errorStyle.Render(apiErr.Message))
			return
		}
		s.println(errorStyle.Render(err.Error()))
		return
	}

	s.println(stateStyle.Render(fmt.Sprintf("restaurant %d: %d reviews, average %.1f",
		summary.RestaurantID, summary.Total, summary.Average)))
	for _, b := range summary.Buckets {
		s.println(fmt.Sprintf("  %d★ %5d  %5.1f%%", b.Rating, b.Count, b.PercentOfTotal))
	}
}

func parseRestaurantID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("want one restaurant id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid restaurant id %q", args[0])
	}
	return id, nil
}

func (s *Session) printState(state model.ToggleState) {
	s.println(stateStyle.Render(fmt.Sprintf("offer=%s order=%s",
		onOff(state.OfferNotification), onOff(state.OrderNotification))))
}

func (s *Session) printNotice(n model.Notice) {
	if n.Kind == model.NoticeError {
		s.println(errorStyle.Render("[error] " + n.Message))
		return
	}
	s.println(infoStyle.Render("[info] " + n.Message))
}

func (s *Session) printPrompt() {
	if !s.prompt {
		return
	}
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprint(s.out, "> ")
}

func (s *Session) println(line string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintln(s.out, line)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
