package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"KipVault/internal/cli/api"
	"KipVault/internal/config"
)

type checkInResponse struct {
	Success       bool  `json:"success"`
	Streak        int64 `json:"streak"`
	LongestStreak int64 `json:"longestStreak"`
}

type checkinCmd struct{}

func (checkinCmd) Name() string        { return "checkin" }
func (checkinCmd) Description() string { return "Отметиться живым и продлить серию" }
func (checkinCmd) Usage() string       { return "checkin <vault-address>" }

func (checkinCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/streak"
	resp, body, err := api.PostJSON(endpoint, map[string]string{"vaultAddress": args[0]})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("concurrent check-in, try again")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var cr checkInResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintf(Out, "checked in, streak %d (best %d)\n", cr.Streak, cr.LongestStreak)
	return nil
}

func init() { RegisterCmd(checkinCmd{}) }
