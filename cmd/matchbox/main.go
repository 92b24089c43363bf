package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/app"
	"github.com/nhle/matchbox/internal/credential"
	"github.com/nhle/matchbox/internal/logging"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "matchbox: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, logFile, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer logFile.Close()

	dataPath := model.DefaultDataPath()
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	st, err := store.NewSQLiteStore(dataPath)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer st.Close()

	device, err := st.Device(context.Background())
	if err != nil {
		return fmt.Errorf("reading device id: %w", err)
	}

	vault := credential.NewVault(filepath.Dir(cfgPath))
	token := cfg.Token
	if token == "" {
		token, err = vault.LoadToken()
		if err != nil && !errors.Is(err, credential.ErrNotFound) {
			log.WithError(err).Warn("reading saved token failed")
		}
	}

	client := api.NewClient(cfg.API.BaseURL, token,
		api.WithTimeout(cfg.API.Timeout()),
		api.WithLogger(log),
	)

	log.WithFields(logrus.Fields{
		"api":       cfg.API.BaseURL,
		"device_id": device.ID,
	}).Info("starting matchbox")

	root := app.New(app.Deps{
		Client:     client,
		Vault:      vault,
		Store:      st,
		Config:     cfg,
		ConfigPath: cfgPath,
		Device:     device.Label,
		Log:        log,
	})

	if _, err := tea.NewProgram(root, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
