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

type magicLinkResponse struct {
	URL string `json:"url"`
}

type magiclinkCmd struct{}

func (magiclinkCmd) Name() string { return "magiclink" }
func (magiclinkCmd) Description() string {
	return "Выпустить magic-ссылку для чек-ина без кошелька"
}
func (magiclinkCmd) Usage() string { return "magiclink <vault-address>" }

func (magiclinkCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/magic-link"
	resp, body, err := api.PostJSON(endpoint, map[string]string{"vaultAddress": args[0]})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var mr magicLinkResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintln(Out, mr.URL)
	return nil
}

func init() { RegisterCmd(magiclinkCmd{}) }
