package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"KipVault/internal/custody"
	"KipVault/internal/repo"
)

// PayloadHandler обслуживает off-chain хранилище envelope'ов.
// Владелец кладёт пакет при создании vault, получатель читает его
// при claim'е, если публичный шлюз недоступен.
type PayloadHandler struct {
	Store  repo.PayloadStore
	Logger *zap.SugaredLogger
}

// NewPayloadHandler создаёт хендлер payload
func NewPayloadHandler(store repo.PayloadStore, logger *zap.SugaredLogger) *PayloadHandler {
	return &PayloadHandler{Store: store, Logger: logger}
}

// Upload сохраняет envelope под его content-locator'ом.
func (h *PayloadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "cid")
	if _, err := cid.Decode(key); err != nil {
		http.Error(w, "invalid content cid", http.StatusBadRequest)
		return
	}

	var env custody.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid envelope", http.StatusBadRequest)
		return
	}
	if err := env.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.Put(r.Context(), key, &env); err != nil {
		h.Logger.Errorw("Upload: store error", "cid", key, "error", err)
		http.Error(w, "failed to store payload", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// Fetch отдаёт envelope по content-locator'у.
func (h *PayloadHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "cid")
	if _, err := cid.Decode(key); err != nil {
		http.Error(w, "invalid content cid", http.StatusBadRequest)
		return
	}

	env, err := h.Store.Get(r.Context(), key)
	if err != nil {
		h.Logger.Errorw("Fetch: store error", "cid", key, "error", err)
		http.Error(w, "failed to read payload", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(env)
}
