package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/sysdash/internal/api"
	"github.com/rileyhilliard/sysdash/internal/config"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/ui"
)

// probeTimeout bounds the backend check done before saving.
const probeTimeout = 5 * time.Second

// InitOptions holds options for the init command.
type InitOptions struct {
	APIURL         string // Pre-specified API base URL
	Dir            string // Directory to write into; empty means the working directory
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
	Out            io.Writer
}

// Init creates a new .sysdash.yaml configuration file.
func Init(ctx context.Context, opts InitOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)
	apiURL := strings.TrimRight(strings.TrimSpace(opts.APIURL), "/")

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			if apiURL == "" {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("Config file already exists: %s", configPath),
					"Use --force to overwrite, or pass --api-url to update just the URL")
			}
			return updateAPIURL(opts.Out, configPath, apiURL)
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}

		if !overwrite {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.APIURL = apiURL

	if opts.NonInteractive {
		if cfg.APIURL == "" {
			return errors.New(errors.ErrConfig,
				"API URL is required in non-interactive mode",
				"Provide --api-url or run interactively")
		}
		if err := config.ValidateAPIURL(cfg.APIURL); err != nil {
			return err
		}
	} else if err := promptConfig(cfg); err != nil {
		return err
	}

	// Check the backend answers before saving
	fmt.Fprintln(opts.Out)
	spinner := ui.NewSpinner(opts.Out, "Checking "+cfg.APIURL+api.MetricsPath)
	spinner.Start()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	_, err := api.NewClient(cfg.APIURL).Metrics(probeCtx)
	cancel()

	if err != nil {
		spinner.Fail()

		if opts.NonInteractive {
			return errors.WrapWithCode(err, errors.ErrHTTP,
				fmt.Sprintf("The API at '%s' didn't answer", cfg.APIURL),
				"Check the backend is running: curl "+cfg.APIURL+api.MetricsPath)
		}

		// Still offer to save config
		fmt.Fprintf(opts.Out, "\n%s %s\n\n", ui.SymbolFail, errors.OneLine(err))
		var saveAnyway bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Save config anyway? (You can start the backend later)").
					Value(&saveAnyway),
			),
		)
		if formErr := form.Run(); formErr != nil || !saveAnyway {
			return errors.WrapWithCode(err, errors.ErrHTTP,
				fmt.Sprintf("The API at '%s' didn't answer", cfg.APIURL),
				"Check the backend is running: curl "+cfg.APIURL+api.MetricsPath)
		}
	} else {
		spinner.Success()
		fmt.Fprintln(opts.Out)
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# sysdash configuration
# Run 'sysdash' to open the dashboard, 'sysdash snapshot' for a one-shot summary

`
	if err := os.WriteFile(configPath, []byte(header+string(data)), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(opts.Out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(opts.Out, "Next steps:")
	fmt.Fprintln(opts.Out, "  sysdash           - Open the dashboard")
	fmt.Fprintln(opts.Out, "  sysdash snapshot  - Print current metrics once")
	return nil
}

// promptConfig fills cfg from interactive prompts.
func promptConfig(cfg *config.Config) error {
	metrics := cfg.MetricsInterval.String()
	processes := cfg.ProcessInterval.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("The backend serving /api/metrics and /api/processes").
				Placeholder("http://localhost:5000").
				Value(&cfg.APIURL).
				Validate(func(s string) error {
					if err := config.ValidateAPIURL(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("%s", errors.OneLine(err))
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Metrics interval").
				Description("How often CPU, memory and disk are refreshed").
				Value(&metrics).
				Validate(validateIntervalInput),
			huh.NewInput().
				Title("Process interval").
				Description("How often the process list is refreshed").
				Value(&processes).
				Validate(validateIntervalInput),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.MetricsInterval, _ = time.ParseDuration(metrics)
	cfg.ProcessInterval, _ = time.ParseDuration(processes)
	return nil
}

func validateIntervalInput(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("use a duration like 2s or 1m")
	}
	if d < config.MinInterval {
		return fmt.Errorf("must be at least %s", config.MinInterval)
	}
	return nil
}

// updateAPIURL rewrites api_url in an existing config, keeping everything else.
func updateAPIURL(out io.Writer, configPath, apiURL string) error {
	if err := config.ValidateAPIURL(apiURL); err != nil {
		return err
	}
	if err := config.SetAPIURL(configPath, apiURL); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to update %s", configPath),
			"Check the file is valid YAML, or use --force to replace it")
	}
	fmt.Fprintf(out, "%s Updated api_url in %s\n", ui.SymbolSuccess, configPath)
	return nil
}
