package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/httputil"
	"github.com/platinummonkey/samonya/pkg/pricing"
)

// CatalogHandlers serves the public catalog and content pages
type CatalogHandlers struct {
	catalog     catalog.Provider
	resolver    *pricing.Resolver
	inspiration InspirationSource
	now         func() time.Time
}

// NewCatalogHandlers creates a new CatalogHandlers
func NewCatalogHandlers(provider catalog.Provider, resolver *pricing.Resolver, inspiration InspirationSource, now func() time.Time) *CatalogHandlers {
	return &CatalogHandlers{
		catalog:     provider,
		resolver:    resolver,
		inspiration: inspiration,
		now:         now,
	}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/catalog/plans", h.ListPlans).Methods("GET")
	router.HandleFunc("/catalog/tools", h.ListTools).Methods("GET")
	router.HandleFunc("/catalog/tools/{tool}", h.GetTool).Methods("GET")

	router.HandleFunc("/content/legal/{doc}", h.GetLegal).Methods("GET")
	router.HandleFunc("/content/inspiration", h.GetInspiration).Methods("GET")
	router.HandleFunc("/content/company", h.GetCompany).Methods("GET")
}

// ListPlans handles GET /catalog/plans
func (h *CatalogHandlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, h.catalog.Current().Plans)
}

// ListTools handles GET /catalog/tools
func (h *CatalogHandlers) ListTools(w http.ResponseWriter, r *http.Request) {
	tools := h.catalog.Current().Tools
	out := make([]ToolSummary, 0, len(tools))
	for _, t := range tools {
		out = append(out, h.summary(t))
	}
	httputil.WriteSuccess(w, out)
}

// GetTool handles GET /catalog/tools/{tool}
func (h *CatalogHandlers) GetTool(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "tool")
	if !ok {
		return
	}
	tool, err := h.catalog.Current().Tool(catalog.ToolID(id))
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, h.summary(tool))
}

func (h *CatalogHandlers) summary(t catalog.Tool) ToolSummary {
	return ToolSummary{
		Tool:       t,
		Cost:       h.resolver.Cost(t.ID, false),
		VisualCost: h.resolver.Cost(t.ID, true),
	}
}

// GetLegal handles GET /content/legal/{doc}
func (h *CatalogHandlers) GetLegal(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "doc")
	if !ok {
		return
	}
	doc := catalog.LegalDocument(strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
	content, err := catalog.Legal(doc, h.catalog.Current().Company, h.now())
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, LegalResponse{Document: doc, Content: content})
}

// GetInspiration handles GET /content/inspiration
func (h *CatalogHandlers) GetInspiration(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, h.inspiration.Today())
}

// GetCompany handles GET /content/company
func (h *CatalogHandlers) GetCompany(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, h.catalog.Current().Company)
}
