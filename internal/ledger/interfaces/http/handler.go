package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"profitdesk/internal/audit"
	"profitdesk/internal/auth"
	ledger "profitdesk/internal/ledger/domain"
)

// Handler provides ledger administration endpoints.
type Handler struct {
	inventory ledger.InventoryRepository
	fixed     ledger.FixedCostRepository
	payroll   ledger.PayrollRepository
	auditor   audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(inventory ledger.InventoryRepository, fixed ledger.FixedCostRepository, payroll ledger.PayrollRepository, auditor audit.Logger) (*Handler, error) {
	if inventory == nil || fixed == nil || payroll == nil {
		return nil, errors.New("ledger handler: nil repository")
	}
	return &Handler{inventory: inventory, fixed: fixed, payroll: payroll, auditor: auditor}, nil
}

// ServeHTTP routes ledger admin requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/inventory-costs":
		h.handleInventoryCollection(w, r)
	case strings.HasPrefix(path, "/api/v1/inventory-costs/"):
		h.handleInventoryItem(w, r, strings.TrimPrefix(path, "/api/v1/inventory-costs/"))
	case path == "/api/v1/fixed-costs":
		h.handleFixedCollection(w, r)
	case strings.HasPrefix(path, "/api/v1/fixed-costs/"):
		h.handleFixedItem(w, r, strings.TrimPrefix(path, "/api/v1/fixed-costs/"))
	case path == "/api/v1/payroll":
		h.handlePayrollCollection(w, r)
	case strings.HasPrefix(path, "/api/v1/payroll/"):
		h.handlePayrollItem(w, r, strings.TrimPrefix(path, "/api/v1/payroll/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleInventoryCollection(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.TenantIDFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		costs, err := h.inventory.List(r.Context(), tenantID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, costs)
	case http.MethodPost, http.MethodPut:
		var cost ledger.InventoryCost
		if err := json.NewDecoder(r.Body).Decode(&cost); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := h.inventory.Upsert(r.Context(), tenantID, cost); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logWrite(r, "inventory_cost.upsert", "inventory_cost", cost.SKU)
		writeJSON(w, cost)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleInventoryItem(w http.ResponseWriter, r *http.Request, sku string) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if err := h.inventory.Delete(r.Context(), tenantID, sku); err != nil {
		respondLedgerError(w, err)
		return
	}
	h.logWrite(r, "inventory_cost.delete", "inventory_cost", sku)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFixedCollection(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.TenantIDFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		activeOnly := r.URL.Query().Get("active") == "true"
		costs, err := h.fixed.List(r.Context(), tenantID, activeOnly)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, costs)
	case http.MethodPost, http.MethodPut:
		var cost ledger.FixedCost
		if err := json.NewDecoder(r.Body).Decode(&cost); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if cost.ID == "" {
			cost.ID = ledger.NewID("fc")
		}
		if err := h.fixed.Upsert(r.Context(), tenantID, cost); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logWrite(r, "fixed_cost.upsert", "fixed_cost", cost.ID)
		writeJSON(w, cost)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleFixedItem(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if err := h.fixed.Delete(r.Context(), tenantID, id); err != nil {
		respondLedgerError(w, err)
		return
	}
	h.logWrite(r, "fixed_cost.delete", "fixed_cost", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePayrollCollection(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.TenantIDFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		category := r.URL.Query().Get("category")
		costs, err := h.payroll.List(r.Context(), tenantID, category)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, costs)
	case http.MethodPost, http.MethodPut:
		var cost ledger.PayrollCost
		if err := json.NewDecoder(r.Body).Decode(&cost); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if cost.ID == "" {
			cost.ID = ledger.NewID("pc")
		}
		if err := h.payroll.Upsert(r.Context(), tenantID, cost); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logWrite(r, "payroll_cost.upsert", "payroll_cost", cost.ID)
		writeJSON(w, cost)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePayrollItem(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if err := h.payroll.Delete(r.Context(), tenantID, id); err != nil {
		respondLedgerError(w, err)
		return
	}
	h.logWrite(r, "payroll_cost.delete", "payroll_cost", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logWrite(r *http.Request, action, resourceType, resourceID string) {
	if h.auditor == nil {
		return
	}
	_ = h.auditor.Log(r.Context(), audit.Entry{
		TenantID:     auth.TenantIDFromContext(r.Context()),
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	})
}

func respondLedgerError(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
