package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"KipVault/internal/cli/api"
	"KipVault/internal/config"
)

type streakResponse struct {
	Streak        int64   `json:"streak"`
	LongestStreak int64   `json:"longestStreak"`
	LastPingAt    *string `json:"lastPingAt"`
}

type streakCmd struct{}

func (streakCmd) Name() string        { return "streak" }
func (streakCmd) Description() string { return "Показать серию чек-инов vault" }
func (streakCmd) Usage() string       { return "streak <vault-address>" }

func (streakCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/streak?vault=" + url.QueryEscape(args[0])
	resp, body, err := api.GetJSON(endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var sr streakResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintf(Out, "streak:   %d\n", sr.Streak)
	fmt.Fprintf(Out, "longest:  %d\n", sr.LongestStreak)
	if sr.LastPingAt != nil {
		fmt.Fprintf(Out, "last:     %s\n", *sr.LastPingAt)
	} else {
		fmt.Fprintln(Out, "last:     never")
	}
	return nil
}

func init() { RegisterCmd(streakCmd{}) }
