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

type claimedVaultDTO struct {
	VaultAddress string `json:"vaultAddress"`
	Name         string `json:"name"`
	ClaimedAt    string `json:"claimedAt"`
}

type claimedCmd struct{}

func (claimedCmd) Name() string        { return "claimed" }
func (claimedCmd) Description() string { return "Показать архив забранных vault'ов получателя" }
func (claimedCmd) Usage() string       { return "claimed <recipient-address>" }

func (claimedCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/claimed?claimer=" + url.QueryEscape(args[0])
	resp, body, err := api.GetJSON(endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var list []claimedVaultDTO
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "nothing claimed yet")
		return nil
	}
	for _, c := range list {
		name := c.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(Out, "%s  %-24s %s\n", c.ClaimedAt, name, c.VaultAddress)
	}
	return nil
}

func init() { RegisterCmd(claimedCmd{}) }
