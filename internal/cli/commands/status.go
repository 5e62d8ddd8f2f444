package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"KipVault/internal/cli/api"
	"KipVault/internal/config"
)

// vaultStatusDTO повторяет JSON ответа /api/vault/status.
type vaultStatusDTO struct {
	Address        string  `json:"address"`
	Owner          string  `json:"owner"`
	Recipient      string  `json:"recipient"`
	Name           string  `json:"name"`
	ContentCID     string  `json:"contentCid"`
	IsReleased     bool    `json:"isReleased"`
	IsExpired      bool    `json:"isExpired"`
	TimeRemaining  uint64  `json:"timeRemaining"`
	HealthPercent  float64 `json:"healthPercent"`
	Health         string  `json:"health"`
	NextCheckInDue string  `json:"nextCheckInDue"`
	Bounty         uint64  `json:"bounty"`
	LockedAmount   uint64  `json:"lockedAmount"`
}

func fetchVaultStatus(cfg *config.Config, vaultAddress string) (*vaultStatusDTO, error) {
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/status?vault=" + url.QueryEscape(vaultAddress)
	resp, body, err := api.GetJSON(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var st vaultStatusDTO
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &st, nil
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Показать состояние vault: здоровье, срок, release" }
func (statusCmd) Usage() string       { return "status <vault-address>" }

func (statusCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	st, err := fetchVaultStatus(cfg, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "vault:      %s\n", st.Address)
	if st.Name != "" {
		fmt.Fprintf(Out, "name:       %s\n", st.Name)
	}
	fmt.Fprintf(Out, "owner:      %s\n", st.Owner)
	fmt.Fprintf(Out, "recipient:  %s\n", st.Recipient)
	fmt.Fprintf(Out, "health:     %s (%.0f%%)\n", st.Health, st.HealthPercent)
	fmt.Fprintf(Out, "released:   %t\n", st.IsReleased)
	fmt.Fprintf(Out, "expired:    %t\n", st.IsExpired)
	fmt.Fprintf(Out, "remaining:  %s\n", time.Duration(st.TimeRemaining)*time.Second)
	fmt.Fprintf(Out, "due:        %s\n", st.NextCheckInDue)
	if st.Bounty > 0 {
		fmt.Fprintf(Out, "bounty:     %d\n", st.Bounty)
	}
	if st.LockedAmount > 0 {
		fmt.Fprintf(Out, "locked:     %d\n", st.LockedAmount)
	}
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
