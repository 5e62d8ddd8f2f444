package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"KipVault/internal/config"
	"KipVault/internal/repo"
	"KipVault/internal/service"
)

// StreakHandler обслуживает счётчики чек-инов.
type StreakHandler struct {
	StreakService *service.StreakService
	Logger        *zap.SugaredLogger
	Config        *config.Config
}

// NewStreakHandler создаёт хендлер streak
func NewStreakHandler(s *service.StreakService, logger *zap.SugaredLogger, cfg *config.Config) *StreakHandler {
	return &StreakHandler{StreakService: s, Logger: logger, Config: cfg}
}

// StreakResponse — состояние серии. LastPingAt null, пока чек-инов не было.
type StreakResponse struct {
	Streak        int64   `json:"streak"`
	LongestStreak int64   `json:"longestStreak"`
	LastPingAt    *string `json:"lastPingAt"`
}

// CheckInRequest тело POST-чек-ина.
type CheckInRequest struct {
	VaultAddress string `json:"vaultAddress"`
}

// CheckInResponse результат чек-ина.
type CheckInResponse struct {
	Success       bool  `json:"success"`
	Streak        int64 `json:"streak"`
	LongestStreak int64 `json:"longestStreak"`
}

// GetStreak отдаёт серию vault. Неизвестный vault — нули, не ошибка.
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	vaultAddress := r.URL.Query().Get("vault")
	if vaultAddress == "" {
		http.Error(w, "missing vault address", http.StatusBadRequest)
		return
	}

	rec, err := h.StreakService.GetStreak(r.Context(), vaultAddress)
	if err != nil {
		h.Logger.Errorw("GetStreak: store error", "vault", vaultAddress, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := StreakResponse{Streak: rec.StreakCount, LongestStreak: rec.LongestStreak}
	if !rec.LastPingAt.IsZero() {
		s := rec.LastPingAt.UTC().Format(time.RFC3339)
		resp.LastPingAt = &s
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// RecordCheckIn фиксирует чек-ин и возвращает обновлённую серию.
// Конкурентный конфликт — 409, вызывающий повторяет запрос.
func (h *StreakHandler) RecordCheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("RecordCheckIn: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.VaultAddress == "" {
		http.Error(w, "missing vault address", http.StatusBadRequest)
		return
	}

	rec, err := h.StreakService.RecordCheckIn(r.Context(), req.VaultAddress)
	if errors.Is(err, repo.ErrConflict) {
		h.Logger.Warnw("RecordCheckIn: conflict", "vault", req.VaultAddress)
		http.Error(w, "concurrent check-in, retry", http.StatusConflict)
		return
	}
	if err != nil {
		h.Logger.Errorw("RecordCheckIn: service error", "vault", req.VaultAddress, "error", err)
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

// ClearStreak сбрасывает серию по явному действию владельца.
func (h *StreakHandler) ClearStreak(w http.ResponseWriter, r *http.Request) {
	vaultAddress := r.URL.Query().Get("vault")
	if vaultAddress == "" {
		http.Error(w, "missing vault address", http.StatusBadRequest)
		return
	}
	if err := h.StreakService.Clear(r.Context(), vaultAddress); err != nil {
		h.Logger.Errorw("ClearStreak: store error", "vault", vaultAddress, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
