package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"KipVault/internal/config"
	"KipVault/internal/ledger"
	"KipVault/internal/magiclink"
	"KipVault/internal/repo"
	"KipVault/internal/service"
)

// VaultHandler обслуживает состояние vault, magic-ссылки и историю claim'ов.
type VaultHandler struct {
	VaultService  *service.VaultService
	StreakService *service.StreakService
	ClaimRepo     repo.ClaimRepository
	Issuer        *magiclink.Issuer
	Logger        *zap.SugaredLogger
	Config        *config.Config
}

// NewVaultHandler создаёт хендлер vault
func NewVaultHandler(
	vs *service.VaultService,
	ss *service.StreakService,
	cr repo.ClaimRepository,
	issuer *magiclink.Issuer,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *VaultHandler {
	return &VaultHandler{
		VaultService:  vs,
		StreakService: ss,
		ClaimRepo:     cr,
		Issuer:        issuer,
		Logger:        logger,
		Config:        cfg,
	}
}

// StatusResponse — DTO состояния vault для дашборда и claim-страницы.
type StatusResponse struct {
	Address        string  `json:"address"`
	Owner          string  `json:"owner"`
	Recipient      string  `json:"recipient"`
	Name           string  `json:"name,omitempty"`
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

// Status читает аккаунт с леджера и отдаёт его жизненный цикл.
func (h *VaultHandler) Status(w http.ResponseWriter, r *http.Request) {
	vaultAddress := r.URL.Query().Get("vault")
	if vaultAddress == "" {
		http.Error(w, "missing vault address", http.StatusBadRequest)
		return
	}

	st, err := h.VaultService.Status(r.Context(), vaultAddress)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		http.Error(w, "vault not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Errorw("Status: fetch/decode error", "vault", vaultAddress, "error", err)
		http.Error(w, "failed to read vault", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(StatusResponse{
		Address:        st.Address,
		Owner:          st.Owner,
		Recipient:      st.Recipient,
		Name:           st.Name,
		ContentCID:     st.ContentCID,
		IsReleased:     st.IsReleased,
		IsExpired:      st.IsExpired,
		TimeRemaining:  st.TimeRemaining,
		HealthPercent:  st.HealthPercent,
		Health:         string(st.Health),
		NextCheckInDue: st.NextCheckInDue.Format(time.RFC3339),
		Bounty:         st.Bounty,
		LockedAmount:   st.LockedAmount,
	})
}

// MagicPing — удалённый чек-ин по подписанной ссылке, без кошелька.
// Причины отказа разводятся по ответам: истёкшая ссылка и битая подпись —
// разные сообщения, чтобы UI мог предложить точное действие.
func (h *VaultHandler) MagicPing(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}

	vaultAddress, err := h.Issuer.Verify(token)
	switch {
	case errors.Is(err, magiclink.ErrTokenExpired):
		http.Error(w, "magic link has expired, request a new one", http.StatusUnauthorized)
		return
	case errors.Is(err, magiclink.ErrBadSignature):
		http.Error(w, "invalid magic link", http.StatusUnauthorized)
		return
	case err != nil:
		http.Error(w, "malformed magic link", http.StatusBadRequest)
		return
	}

	// адрес в query — только для красоты ссылки; авторитетен токен
	if q := r.URL.Query().Get("vault"); q != "" && q != vaultAddress {
		http.Error(w, "vault mismatch", http.StatusBadRequest)
		return
	}

	rec, err := h.VaultService.CheckIn(r.Context(), vaultAddress)
	if errors.Is(err, service.ErrVaultReleased) {
		http.Error(w, "vault already released", http.StatusGone)
		return
	}
	if errors.Is(err, repo.ErrConflict) {
		http.Error(w, "concurrent check-in, retry", http.StatusConflict)
		return
	}
	if err != nil {
		h.Logger.Errorw("MagicPing: check-in failed", "vault", vaultAddress, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(CheckInResponse{
		Success:       true,
		Streak:        rec.StreakCount,
		LongestStreak: rec.LongestStreak,
	})
}

// MagicLinkRequest тело запроса новой magic-ссылки.
type MagicLinkRequest struct {
	VaultAddress string `json:"vaultAddress"`
}

// MagicLinkResponse — готовая ссылка для письма владельцу.
type MagicLinkResponse struct {
	URL string `json:"url"`
}

// IssueMagicLink выпускает новую magic-ссылку для vault.
// Доставку письма делает внешний сервис нотификаций.
func (h *VaultHandler) IssueMagicLink(w http.ResponseWriter, r *http.Request) {
	var req MagicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VaultAddress == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.Issuer.URL(h.Config.ServerURL, req.VaultAddress)
	if err != nil {
		h.Logger.Errorw("IssueMagicLink: sign failed", "vault", req.VaultAddress, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(MagicLinkResponse{URL: u})
}

// ClaimRequest тело записи о claim'е.
type ClaimRequest struct {
	VaultAddress string `json:"vaultAddress"`
	ClaimedBy    string `json:"claimedBy"`
	Name         string `json:"name,omitempty"`
}

// RecordClaim архивирует факт claim'а. Повторный claim того же vault — no-op.
func (h *VaultHandler) RecordClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VaultAddress == "" || req.ClaimedBy == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	created, err := h.ClaimRepo.CreateIfAbsent(r.Context(), req.VaultAddress, req.ClaimedBy, req.Name)
	if err != nil {
		h.Logger.Errorw("RecordClaim: store error", "vault", req.VaultAddress, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if created {
		w.WriteHeader(http.StatusCreated)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"vaultAddress": req.VaultAddress, "created": created})
}

// ClaimedVaultDTO — элемент архива получателя.
type ClaimedVaultDTO struct {
	VaultAddress string `json:"vaultAddress"`
	Name         string `json:"name,omitempty"`
	ClaimedAt    string `json:"claimedAt"`
}

// ListClaimed отдаёт архив забранных vault'ов получателя.
func (h *VaultHandler) ListClaimed(w http.ResponseWriter, r *http.Request) {
	claimer := r.URL.Query().Get("claimer")
	if claimer == "" {
		http.Error(w, "missing claimer", http.StatusBadRequest)
		return
	}

	list, err := h.ClaimRepo.ListByClaimer(r.Context(), claimer)
	if err != nil {
		h.Logger.Errorw("ListClaimed: store error", "claimer", claimer, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]ClaimedVaultDTO, 0, len(list))
	for _, c := range list {
		out = append(out, ClaimedVaultDTO{
			VaultAddress: c.VaultAddress,
			Name:         c.Name,
			ClaimedAt:    c.ClaimedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}
