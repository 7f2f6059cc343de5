package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/signup/internal/api"
	"github.com/zjrosen/signup/internal/app"
	"github.com/zjrosen/signup/internal/config"
	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/tracing"
)

func init() {
	// Query the terminal background before Bubble Tea owns stdin, otherwise
	// the OSC 11 reply can land in a text field.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const defaultConfigPath = ".signup/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	cfg        config.Config
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "signup",
	Short: "A terminal registration form backed by a mockapi.io resource",
	Long: `A terminal user interface with a registration form and a table of the
registrations stored in a tenant-scoped mockapi.io resource.

Submitting the form creates a registration; the table re-fetches after every
create or delete.

Examples:
  signup --tenant 5e8c6579e61fbd00164aebec
  signup mock-server &
  signup --base-url 'http://127.0.0.1:8080/{tenant}' --devtools`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .signup/config.yaml, then ~/.config/signup/config.yaml)")
	flags.StringP("tenant", "t", "", "mockapi.io tenant identifier")
	flags.String("base-url", "", "resource URL template, {tenant} is substituted")
	flags.Bool("debug", false, "write debug logs")
	flags.String("log-file", "debug.log", "debug log path")
	rootCmd.Flags().Bool("devtools", false, "mount the cache inspector (ctrl+x)")

	_ = viper.BindPFlag("tenant", flags.Lookup("tenant"))
	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("log_file", flags.Lookup("log-file"))
	_ = viper.BindPFlag("devtools", rootCmd.Flags().Lookup("devtools"))
}

func initConfig() {
	setDefaults(viper.GetViper(), config.Defaults())

	viper.SetEnvPrefix("SIGNUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .signup/config.yaml (current directory)
		// 2. ~/.config/signup/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "signup"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config anywhere: write the defaults so there is something to edit.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
		}
	}
}

// setDefaults registers every config key with viper so env overrides and
// Unmarshal see keys that no file sets.
func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("tenant", d.Tenant)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("devtools", d.Devtools)
	v.SetDefault("ui.create_notice", d.UI.CreateNotice)
	v.SetDefault("ui.delete_notice", d.UI.DeleteNotice)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("mock.addr", d.Mock.Addr)
	v.SetDefault("mock.fail_deletes", d.Mock.FailDeletes)
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "debug.log")
}

// loadConfig decodes and validates the layered configuration in v.
func loadConfig(v *viper.Viper) (config.Config, error) {
	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := config.Validate(c); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func setup(_ *cobra.Command, _ []string) error {
	if viper.GetBool("debug") {
		logPath := viper.GetString("log_file")
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "signup starting", "version", version, "logPath", logPath,
			"config", viper.ConfigFileUsed())
	}

	loaded, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

// newAPIClient builds the resource client with tracing from cfg. The
// returned function flushes pending spans.
func newAPIClient(c config.Config) (*api.Client, func(), error) {
	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      c.Tracing.Enabled,
		Exporter:     c.Tracing.Exporter,
		FilePath:     c.Tracing.FilePath,
		OTLPEndpoint: c.Tracing.OTLPEndpoint,
		SampleRate:   c.Tracing.SampleRate,
		ServiceName:  c.Tracing.ServiceName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "flushing spans", err)
		}
	}
	return api.New(c.BaseURL, api.WithTracer(provider.Tracer())), shutdown, nil
}

func runApp(_ *cobra.Command, _ []string) error {
	client, shutdown, err := newAPIClient(cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	log.Info(log.CatConfig, "starting TUI", "tenant", cfg.Tenant, "endpoint", client.Endpoint(cfg.Tenant),
		"devtools", cfg.Devtools)

	model := app.New(cfg, client)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
