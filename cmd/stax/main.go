package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/auth"
	"github.com/avikr/stax/internal/config"
	"github.com/avikr/stax/internal/store"
	"github.com/avikr/stax/internal/tui"
)

var (
	// CLI flags
	apiFlag       string
	componentFlag string
	pageSizeFlag  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stax",
		Short: "Terminal client for the component marketplace",
		Long: `stax is a terminal client for the component marketplace.

Browse published components, inspect versions and readmes, and (as an
owner) link GitHub repositories, deploy commits, and follow builds.

Authentication:
  1. Run 'stax login' for the browser-based GitHub sign-in
  2. Or set the STAX_TOKEN environment variable

Configuration lives in the user config dir (stax/config.yaml); the
backend address can also be set via STAX_API_BASE or --api.`,
		RunE: run,
	}

	// Define CLI flags
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "Backend base URL. Overrides config and STAX_API_BASE.")
	rootCmd.Flags().StringVar(&componentFlag, "component", "", "Component slug to open directly. Skips the browse screen.")
	rootCmd.Flags().IntVar(&pageSizeFlag, "page-size", 0, "Components per page in the browse view.")

	rootCmd.AddCommand(loginCmd(), logoutCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	client, session, cfg, err := setup()
	if err != nil {
		return err
	}

	pageSize := cfg.PageSize
	if pageSizeFlag > 0 {
		pageSize = pageSizeFlag
	}

	ctx := context.Background()

	app := tui.NewAppModel(client, session, ctx, componentFlag, pageSize)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}

// loginCmd runs the browser sign-in outside the TUI and persists the
// resulting session.
func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with GitHub via your browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, session, _, err := setup()
			if err != nil {
				return err
			}

			fmt.Println("Opening your browser to sign in...")
			result, err := auth.Login(context.Background(), client)
			if err != nil {
				return fmt.Errorf("sign-in failed: %w", err)
			}

			if err := session.SetAuth(result.Token, result.User); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}

			fmt.Printf("Signed in as @%s\n", result.User.Username)
			return nil
		},
	}
}

// logoutCmd clears the persisted session.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.DefaultPath()
			if err != nil {
				return fmt.Errorf("locating session file: %w", err)
			}

			session := store.Open(path)
			if !session.Authenticated() {
				fmt.Println("Not signed in.")
				return nil
			}

			if err := session.Clear(); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

// setup loads config and the saved session and builds the API client.
// STAX_TOKEN, when set, takes precedence over the saved session token.
func setup() (*api.Client, *store.Session, *config.Config, error) {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("locating config: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	base := cfg.APIBase
	if apiFlag != "" {
		base = apiFlag
	}

	sessionPath, err := store.DefaultPath()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("locating session file: %w", err)
	}
	session := store.Open(sessionPath)

	client := api.NewClient(base)
	if token, ok := auth.TokenFromEnv(); ok {
		client = client.WithToken(token)
	} else if session.Token() != "" {
		client = client.WithToken(session.Token())
	}

	return client, session, cfg, nil
}
