package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/polkiloo/ticketmart/internal/config"
	"github.com/polkiloo/ticketmart/internal/pkg/auth"
)

// issueTokens prints one bearer token per subject, signed with the configured secret.
func issueTokens(w io.Writer, cfg *config.Config, subjects []string) error {
	if len(subjects) == 0 {
		return errors.New("usage: ticketmart token <subject> [subject...]")
	}
	strategy := auth.NewHMACStrategy(cfg.TokenSecret, auth.Options{TTL: cfg.TokenTTL})
	for _, subject := range subjects {
		token, err := strategy.IssueToken(subject)
		if err != nil {
			return fmt.Errorf("%s: %w", subject, err)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", subject, token); err != nil {
			return err
		}
	}
	return nil
}
