package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/ipfs/go-cid"

	"KipVault/internal/cli/api"
	"KipVault/internal/cli/wallet"
	"KipVault/internal/config"
	"KipVault/internal/custody"
)

// claimCmd забирает содержимое release-нутого vault: статус с сервера,
// envelope со шлюза, расшифровка паролем или подписью кошелька,
// затем запись факта claim'а в архив.
type claimCmd struct{}

func (claimCmd) Name() string { return "claim" }
func (claimCmd) Description() string {
	return "Забрать содержимое vault (пароль или --wallet-key)"
}
func (claimCmd) Usage() string { return "claim <vault-address> [password]" }

func (c claimCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	vaultAddress := args[0]

	st, err := fetchVaultStatus(cfg, vaultAddress)
	if err != nil {
		return err
	}
	if !st.IsReleased && !st.IsExpired {
		return fmt.Errorf("vault is still guarded by its owner, nothing to claim yet")
	}

	env, err := c.fetchEnvelope(cfg, st.ContentCID)
	if err != nil {
		return err
	}

	var plain []byte
	if len(args) == 2 {
		plain, err = env.OpenWithPassword(args[1])
	} else {
		if cfg.WalletKeyFile == "" {
			return fmt.Errorf("wallet envelope: pass password or set --wallet-key")
		}
		var signer *custody.WalletSigner
		signer, err = wallet.Load(cfg.WalletKeyFile)
		if err != nil {
			return err
		}
		plain, err = env.OpenWithWallet(signer)
	}
	if err != nil {
		return err
	}

	outName := env.OriginalFileName
	if outName == "" {
		outName = vaultAddress + ".bin"
	}
	if err := os.WriteFile(outName, plain, 0o600); err != nil {
		return fmt.Errorf("write content: %w", err)
	}

	c.recordClaim(cfg, vaultAddress, st)

	fmt.Fprintf(Out, "claimed %s -> %s (%d bytes)\n", vaultAddress, outName, len(plain))
	return nil
}

// fetchEnvelope скачивает off-chain пакет по CID: сперва публичный
// content-шлюз, при его недоступности — payload-хранилище сервера.
func (c claimCmd) fetchEnvelope(cfg *config.Config, contentCID string) (*custody.Envelope, error) {
	parsed, err := cid.Decode(contentCID)
	if err != nil {
		return nil, fmt.Errorf("invalid content cid: %w", err)
	}

	gatewayURL := fmt.Sprintf("%s/ipfs/%s", strings.TrimRight(cfg.ContentGateway, "/"), parsed.String())
	env, gwErr := c.downloadEnvelope(gatewayURL)
	if gwErr == nil {
		return env, nil
	}

	fallbackURL := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/payload/" + parsed.String()
	env, err = c.downloadEnvelope(fallbackURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: %v; server payload: %w", gwErr, err)
	}
	return env, nil
}

func (claimCmd) downloadEnvelope(u string) (*custody.Envelope, error) {
	resp, body, err := api.GetJSON(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var env custody.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// recordClaim пишет факт claim'а в архив. Ошибка здесь не срывает claim:
// содержимое уже у получателя.
func (claimCmd) recordClaim(cfg *config.Config, vaultAddress string, st *vaultStatusDTO) {
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/claimed"
	resp, _, err := api.PostJSON(endpoint, map[string]string{
		"vaultAddress": vaultAddress,
		"claimedBy":    st.Recipient,
		"name":         st.Name,
	})
	if err != nil {
		fmt.Fprintf(Out, "warning: claim archived locally only: %v\n", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		fmt.Fprintf(Out, "warning: claim archive returned status %d\n", resp.StatusCode)
	}
}

func init() { RegisterCmd(claimCmd{}) }
