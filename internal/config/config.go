package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/boris-k201/capsule-to-epub/pkg/httpclient"
)

// Defaults for the run options.
const (
	DefaultOutput   = "output.epub"
	DefaultLanguage = "en"
	DefaultTimeout  = 15 * time.Second
	DefaultMaxPages = 1
)

// Config holds all options for one conversion run. The feed URL comes from
// the positional argument; everything else from flags and defaults. No
// config files and no environment variables are consulted.
type Config struct {
	FeedURL   string
	Output    string
	Title     string
	Author    string
	Language  string
	Timeout   time.Duration
	MaxPages  int
	UserAgent string
	Verbose   bool
	Help      bool
}

// NewFlagSet declares the command line flags.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("output", "o", DefaultOutput, "destination path for the EPUB file")
	fs.String("title", "", "book title (default: the feed's own title)")
	fs.String("author", "", "book author")
	fs.String("language", DefaultLanguage, "book language code")
	fs.Duration("timeout", DefaultTimeout, "network timeout per request")
	fs.Int("max-pages", DefaultMaxPages, "feed pages to follow via next-page links, 0 for all")
	fs.String("user-agent", httpclient.DefaultUserAgent, "User-Agent header for HTTP requests")
	fs.BoolP("verbose", "v", false, "enable debug logging")
	fs.BoolP("help", "h", false, "print usage and exit")
	return fs
}

// Load materializes a Config from parsed flags and the positional feed URL.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	cfg := Config{
		Output:    v.GetString("output"),
		Title:     v.GetString("title"),
		Author:    v.GetString("author"),
		Language:  v.GetString("language"),
		Timeout:   v.GetDuration("timeout"),
		MaxPages:  v.GetInt("max-pages"),
		UserAgent: v.GetString("user-agent"),
		Verbose:   v.GetBool("verbose"),
		Help:      v.GetBool("help"),
	}

	if fs.NArg() > 0 {
		cfg.FeedURL = strings.TrimSpace(fs.Arg(0))
	}

	return cfg, nil
}

// Validate checks the config for a runnable combination.
func (c Config) Validate() error {
	if c.FeedURL == "" {
		return fmt.Errorf("feed URL argument is required")
	}

	u, err := url.Parse(c.FeedURL)
	if err != nil {
		return fmt.Errorf("invalid feed URL %q: %w", c.FeedURL, err)
	}
	switch u.Scheme {
	case "http", "https", "gemini":
	default:
		return fmt.Errorf("feed URL %q must use http, https or gemini", c.FeedURL)
	}
	if u.Host == "" {
		return fmt.Errorf("feed URL %q has no host", c.FeedURL)
	}

	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output path is empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max-pages must be zero or positive")
	}

	return nil
}
