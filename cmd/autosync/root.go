package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gitops-tools/autosync"
)

// fileConfig holds the optional config file knobs. Environment variables and
// flags take precedence; the file only fills fields they left unset.
// Durations are strings in time.ParseDuration syntax ("10s", "30m").
type fileConfig struct {
	Remote         string `yaml:"remote"`
	Branch         string `yaml:"branch"`
	FallbackBranch string `yaml:"fallbackBranch"`
	LockTimeout    string `yaml:"lockTimeout"`
	StaleLockAge   string `yaml:"staleLockAge"`
	Timezone       string `yaml:"timezone"`
	MessageFormat  string `yaml:"messageFormat"`
}

func newRootCmd() *cobra.Command {
	var (
		repoDir string
		remote  string
		branch  string
	)

	cmd := &cobra.Command{
		Use:          "autosync",
		Short:        "Commit, rebase, and push a working copy unattended",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := clog.FromContext(ctx)

			cfg, err := autosync.FromEnv(ctx)
			if err != nil {
				return err
			}

			applyFileConfig(ctx, &cfg, configFilePath())

			if repoDir != "" {
				cfg.RepoDir = repoDir
			}
			if cfg.RepoDir == "" {
				cfg.RepoDir, err = os.Getwd()
				if err != nil {
					return err
				}
			}
			if remote != "" {
				cfg.Remote = remote
			}
			if branch != "" {
				cfg.Branch = branch
			}

			runner, err := autosync.NewRunner(cfg)
			if err != nil {
				return err
			}

			res, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			if res.Outcome == autosync.OutcomeSkipped {
				log.Infof("nothing done: %s", res.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", "", "working copy to synchronize (default: current directory)")
	cmd.Flags().StringVar(&remote, "remote", "", "remote to fetch from and push to")
	cmd.Flags().StringVar(&branch, "branch", "", "branch to synchronize (default: current branch)")

	return cmd
}

// configFilePath locates the optional config file under the XDG config home.
func configFilePath() string {
	return filepath.Join(xdg.ConfigHome, "autosync", "config.yaml")
}

// applyFileConfig overlays file values onto cfg where the environment left
// fields unset. A missing file is not an error.
func applyFileConfig(ctx context.Context, cfg *autosync.Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			clog.FromContext(ctx).Warnf("ignoring unreadable config file %s: %v", path, err)
		}
		return
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		clog.FromContext(ctx).Warnf("ignoring malformed config file %s: %v", path, err)
		return
	}

	if cfg.Remote == "" || cfg.Remote == autosync.DefaultRemoteName {
		if fc.Remote != "" {
			cfg.Remote = fc.Remote
		}
	}
	if cfg.Branch == "" {
		cfg.Branch = fc.Branch
	}
	if fc.FallbackBranch != "" && (cfg.FallbackBranch == "" || cfg.FallbackBranch == autosync.DefaultFallbackBranch) {
		cfg.FallbackBranch = fc.FallbackBranch
	}
	if d := parseFileDuration(ctx, path, "lockTimeout", fc.LockTimeout); d != 0 && cfg.LockTimeout == autosync.DefaultLockTimeout {
		cfg.LockTimeout = d
	}
	if d := parseFileDuration(ctx, path, "staleLockAge", fc.StaleLockAge); d != 0 && cfg.StaleLockAge == autosync.DefaultStaleLockAge {
		cfg.StaleLockAge = d
	}
	if fc.Timezone != "" && (cfg.Timezone == "" || cfg.Timezone == autosync.DefaultTimezone) {
		cfg.Timezone = fc.Timezone
	}
	if fc.MessageFormat != "" && cfg.MessageFormat == "" {
		cfg.MessageFormat = fc.MessageFormat
	}
}

// parseFileDuration parses a duration string from the config file, returning
// zero for empty or malformed values.
func parseFileDuration(ctx context.Context, path, key, value string) time.Duration {
	if value == "" {
		return 0
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		clog.FromContext(ctx).Warnf("ignoring malformed %s in %s: %v", key, path, err)
		return 0
	}
	return d
}
