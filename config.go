/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind         string
	chatLimit    int
	color        string
	inviteURL    string
	mode         string
	name         string
	port         int
	profile      bool
	qrFile       string
	resultsDelay time.Duration
	room         string
	server       string
	verbose      bool
	version      bool
}

var roomCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{4,12}$`)

func (c *Config) validate() error {
	if c.room == "" {
		return errors.New("a room code is required (--room)")
	}
	if !roomCodePattern.MatchString(c.room) {
		return fmt.Errorf("invalid room code (must be 4-12 alphanumeric characters): %s", c.room)
	}
	if _, err := url.Parse(c.server); err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}
	if c.profile && (c.port < 1 || c.port > 65535) {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.mode != string(ModeSimple) && c.mode != string(ModeChallenge) {
		return fmt.Errorf("invalid mode (must be %q or %q): %s", ModeSimple, ModeChallenge, c.mode)
	}
	if c.resultsDelay < 0 {
		return fmt.Errorf("invalid results delay: %s", c.resultsDelay)
	}
	if c.chatLimit < 1 {
		return fmt.Errorf("invalid chat limit: %d", c.chatLimit)
	}
	return nil
}

// roomCode returns the normalized room identifier; the server stores
// room codes uppercased.
func (c *Config) roomCode() string {
	return strings.ToUpper(strings.TrimSpace(c.room))
}

// invite returns the shareable HTTP link for the room, deriving one from
// the websocket URL when --invite-url is not set.
func (c *Config) invite() string {
	if c.inviteURL != "" {
		return strings.TrimSuffix(c.inviteURL, "/") + "/room/" + c.roomCode()
	}

	u, err := url.Parse(c.server)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	u.Path = "/room/" + c.roomCode()
	return u.String()
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PLAYSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "playsync",
		Short:         "A terminal client for PlaySync two-player party-game rooms.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return Run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.server, "server", "s", "ws://localhost:5000/ws", "websocket url of the room server (env: PLAYSYNC_SERVER)")
	fs.StringVarP(&cfg.room, "room", "r", "", "room code to join (env: PLAYSYNC_ROOM)")
	fs.StringVarP(&cfg.name, "name", "n", "", "display name, randomly generated if empty (env: PLAYSYNC_NAME)")
	fs.StringVar(&cfg.color, "color", "", "avatar color as #rrggbb, randomly chosen if empty (env: PLAYSYNC_COLOR)")
	fs.StringVarP(&cfg.mode, "mode", "m", "simple", "default game mode, simple or challenge (env: PLAYSYNC_MODE)")
	fs.StringVar(&cfg.qrFile, "qr", "", "write an invite QR code PNG to this path (env: PLAYSYNC_QR)")
	fs.StringVar(&cfg.inviteURL, "invite-url", "", "base http url used for the invite link (env: PLAYSYNC_INVITE_URL)")
	fs.DurationVar(&cfg.resultsDelay, "results-delay", 2*time.Second, "time the results screen is shown before auto-rematch (env: PLAYSYNC_RESULTS_DELAY)")
	fs.IntVar(&cfg.chatLimit, "chat-limit", 50, "maximum retained chat messages (env: PLAYSYNC_CHAT_LIMIT)")
	fs.StringVarP(&cfg.bind, "bind", "b", "127.0.0.1", "address the diagnostics listener binds to (env: PLAYSYNC_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8081, "port the diagnostics listener uses (env: PLAYSYNC_PORT)")
	fs.BoolVar(&cfg.profile, "profile", false, "serve net/http/pprof handlers on the diagnostics listener (env: PLAYSYNC_PROFILE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: PLAYSYNC_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: PLAYSYNC_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("playsync v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// ---- Identity defaults ----

var displayAdjectives = []string{
	"Swift", "Clever", "Bold", "Brave", "Quick", "Sharp",
	"Smart", "Keen", "Alert", "Nimble", "Slick", "Deft",
}

var displayNouns = []string{
	"Phoenix", "Tiger", "Falcon", "Eagle", "Wolf", "Lion",
	"Raven", "Fox", "Cheetah", "Hawk", "Osprey", "Lynx",
}

var avatarColors = []string{
	"#0D9488", "#14B8A6", "#2DD4BF", "#06B6D4", "#0891B2", "#155E75", "#1F2937",
}

func generateDisplayName() string {
	adj := displayAdjectives[rand.Intn(len(displayAdjectives))]
	noun := displayNouns[rand.Intn(len(displayNouns))]
	return adj + " " + noun
}

func randomAvatarColor() string {
	return avatarColors[rand.Intn(len(avatarColors))]
}
