// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ava-labs/linkdrop/config"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
	"github.com/ava-labs/linkdrop/linkdrop"
	"github.com/ava-labs/linkdrop/pebble"
	"github.com/ava-labs/linkdrop/state"

	ltrace "github.com/ava-labs/linkdrop/trace"
)

const (
	simulatorFolder = ".linkdrop-simulator"
	envPrefix       = "linkdrop"

	configFlag          = "config"
	logLevelFlag        = "log-level"
	logDirFlag          = "log-dir"
	displayLogsFlag     = "display-logs"
	databaseBackendFlag = "database-backend"
	databasePathFlag    = "database-path"
	cleanupFlag         = "cleanup"
)

type simulator struct {
	v *viper.Viper

	log        logging.Logger
	logFactory *logFactory
	config     *config.Config

	tracer   trace.Tracer
	registry *prometheus.Registry
	gatherer prometheus.Gatherers
	db       state.Database
	runtime  *host.Runtime

	cleanup   func()
	closeOnce sync.Once
	closeErr  error
}

func NewRootCmd() *cobra.Command {
	s := &simulator{v: viper.New()}
	cmd := &cobra.Command{
		Use:   "linkdrop-simulator",
		Short: "Linkdrop contract simulator",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.Init(); err != nil {
				return errors.Join(err, s.Close())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.closing(cmd.Help)
		},
	}

	cobra.EnablePrefixMatching = true
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.DisableAutoGenTag = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := cmd.PersistentFlags()
	flags.String(configFlag, "", "JSON or YAML config file")
	flags.String(logLevelFlag, "info", "log level")
	flags.String(logDirFlag, "", "log directory (default ~/"+simulatorFolder+"/logs)")
	flags.Bool(displayLogsFlag, false, "write logs to stderr as well as the log file")
	flags.String(databaseBackendFlag, config.MemoryBackend, "state backend (memdb or pebble)")
	flags.String(databasePathFlag, "", "pebble directory")
	flags.Bool(cleanupFlag, false, "remove the pebble directory and logs on exit")

	// Config keys follow the JSON field names of [config.Config].
	for key, flag := range map[string]string{
		configFlag:        configFlag,
		"logLevel":        logLevelFlag,
		"logDirectory":    logDirFlag,
		displayLogsFlag:   displayLogsFlag,
		"databaseBackend": databaseBackendFlag,
		"databasePath":    databasePathFlag,
		cleanupFlag:       cleanupFlag,
	} {
		if err := s.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
	s.v.SetEnvPrefix(envPrefix)
	s.v.AutomaticEnv()

	cmd.AddCommand(
		newKeyCmd(s),
		newRunCmd(s),
		newServeCmd(s),
	)
	return cmd
}

// loadConfig merges the config file, environment and flags.
func (s *simulator) loadConfig() (*config.Config, error) {
	if path := s.v.GetString(configFlag); len(path) > 0 {
		s.v.SetConfigFile(path)
		if err := s.v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	b, err := json.Marshal(s.v.AllSettings())
	if err != nil {
		return nil, err
	}
	return config.New(b)
}

func (s *simulator) Init() error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	s.config = cfg

	logDir := cfg.LogDirectory
	if len(logDir) == 0 {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		logDir = filepath.Join(homeDir, simulatorFolder, "logs")
	}
	s.logFactory = newLogFactory(logging.Config{
		RotatingWriterConfig: logging.RotatingWriterConfig{
			Directory: logDir,
			MaxSize:   8,
			MaxFiles:  4,
			MaxAge:    7,
		},
		DisableWriterDisplaying: !s.v.GetBool(displayLogsFlag),
		LogFormat:               logging.JSON,
		LogLevel:                cfg.GetLogLevel(),
		DisplayLevel:            cfg.GetLogLevel(),
	})
	s.log, err = s.logFactory.Make("simulator")
	if err != nil {
		s.logFactory.Close()
		return err
	}

	s.tracer, err = ltrace.New(cfg.GetTraceConfig())
	if err != nil {
		return err
	}

	s.registry = prometheus.NewRegistry()
	s.gatherer = prometheus.Gatherers{s.registry}
	switch cfg.DatabaseBackend {
	case config.PebbleBackend:
		db, registry, err := pebble.New(cfg.DatabasePath, cfg.Pebble)
		if err != nil {
			return err
		}
		s.db = db
		s.gatherer = append(s.gatherer, registry)
	default:
		s.db = memdb.New()
	}

	s.cleanup = func() {
		if cfg.DatabaseBackend == config.PebbleBackend {
			if err := os.RemoveAll(cfg.DatabasePath); err != nil {
				fmt.Fprintf(os.Stderr, "failed to remove simulator database: %s\n", err)
			}
		}
		if err := os.RemoveAll(logDir); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove simulator logs: %s\n", err)
		}
	}

	s.runtime, err = host.New(s.log, s.tracer, s.registry, s.db, cfg.Host)
	if err != nil {
		return err
	}
	contract, err := linkdrop.New(cfg.Linkdrop)
	if err != nil {
		return err
	}
	s.runtime.Register(linkdrop.Code, contract)

	s.log.Info("simulator initialized",
		zap.String("logLevel", cfg.LogLevel),
		zap.String("databaseBackend", cfg.DatabaseBackend),
		zap.Stringer("contract", cfg.ContractAccount),
		zap.Stringer("registrar", cfg.Host.Registrar),
	)
	return nil
}

// publicKey resolves [name] as a named key or as the text form of a
// public key.
func (s *simulator) publicKey(ctx context.Context, name string) (ed25519.PublicKey, error) {
	if strings.HasPrefix(name, ed25519.CurvePrefix) {
		return ed25519.ParsePublicKey(name)
	}
	pk, ok, err := GetPublicKey(ctx, state.NewSimpleMutable(s.db), name)
	if err != nil {
		return ed25519.EmptyPublicKey, err
	}
	if !ok {
		return ed25519.EmptyPublicKey, fmt.Errorf("%w: %s", ErrNamedKeyNotFound, name)
	}
	return pk, nil
}

// Close releases everything Init opened. It is safe to call more than
// once and after a failed Init.
func (s *simulator) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.tracer != nil {
			errs = append(errs, s.tracer.Close())
		}
		if s.db != nil {
			errs = append(errs, s.db.Close())
		}
		if s.logFactory != nil {
			s.logFactory.Close()
		}
		if s.cleanup != nil && s.v.GetBool(cleanupFlag) {
			s.cleanup()
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// closing runs [f] and then closes the simulator. Cobra skips post-run
// hooks when a command fails.
func (s *simulator) closing(f func() error) error {
	err := f()
	return errors.Join(err, s.Close())
}
