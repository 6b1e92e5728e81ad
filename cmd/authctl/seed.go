// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/sec"
	"github.com/taibuivan/sentinel/internal/users/account"
)

// SeedFile is the YAML document accepted by "authctl seed".
type SeedFile struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// SeedAccount is one account to provision.
type SeedAccount struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// SeedReport counts what a seed run did.
type SeedReport struct {
	Created int
	Skipped int
}

// Provisioner creates accounts. [*account.Service] satisfies it.
type Provisioner interface {
	Provision(context context.Context, input account.ProvisionInput) (*account.Account, error)
}

// ParseSeed decodes a seed file, rejecting unknown keys.
func ParseSeed(reader io.Reader) (*SeedFile, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var seed SeedFile
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(seed.Accounts) == 0 {
		return nil, errors.New("parse seed file: no accounts")
	}
	return &seed, nil
}

// Provision creates every seeded account, skipping emails that already exist.
// Any other failure stops the run.
func Provision(ctx context.Context, provisioner Provisioner, seed *SeedFile) (SeedReport, error) {
	var report SeedReport
	logger := ctxutil.GetLogger(ctx)

	for i, entry := range seed.Accounts {
		created, err := provisioner.Provision(ctx, account.ProvisionInput{
			Name:     entry.Name,
			Email:    entry.Email,
			Password: entry.Password,
			Role:     sec.UserRole(entry.Role),
		})
		if errors.Is(err, account.ErrEmailTaken) {
			report.Skipped++
			logger.InfoContext(ctx, "seed_account_exists", slog.String("email", entry.Email))
			continue
		}
		if err != nil {
			return report, fmt.Errorf("seed account #%d (%s): %w", i+1, entry.Email, err)
		}

		report.Created++
		logger.InfoContext(ctx, "seed_account_created",
			slog.String("account_id", created.ID),
			slog.String("role", string(created.Role)),
		)
	}

	return report, nil
}
