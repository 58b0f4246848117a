// Package searchapi serves a small fixed catalog over the remote search
// contract: GET ?query=&type= answering with a JSON array of items.
package searchapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"cmdpalette/internal/domain"
)

// Catalog maps a search type to its items
type Catalog map[string][]domain.Item

// DefaultCatalog is the demo data set
func DefaultCatalog() Catalog {
	user := func(id, name, mail string) domain.Item {
		return domain.Item{Icon: "👤", Name: name, Subtitle: mail, Action: domain.Navigate("/user/" + id)}
	}
	project := func(id, name, status string) domain.Item {
		return domain.Item{Icon: "📁", Name: name, Subtitle: "Status: " + status, Action: domain.Navigate("/project/" + id)}
	}
	doc := func(id, name, meta string) domain.Item {
		return domain.Item{Icon: "📄", Name: name, Subtitle: meta, Action: domain.Navigate("/doc/" + id)}
	}

	return Catalog{
		"users": {
			user("1", "John Doe", "john@example.com"),
			user("2", "Jane Smith", "jane@example.com"),
			user("3", "Bob Johnson", "bob@example.com"),
			user("4", "Alice Williams", "alice@example.com"),
			user("5", "Charlie Brown", "charlie@example.com"),
		},
		"projects": {
			project("1", "Website Redesign", "In Progress"),
			project("2", "Mobile App", "Planning"),
			project("3", "API Development", "Completed"),
			project("4", "Database Migration", "In Progress"),
			project("5", "Security Audit", "Pending"),
		},
		"documents": {
			doc("1", "User Manual", "PDF • 2.5 MB"),
			doc("2", "Technical Specification", "PDF • 1.8 MB"),
			doc("3", "Meeting Notes", "DOCX • 0.5 MB"),
			doc("4", "Project Proposal", "PDF • 3.2 MB"),
			doc("5", "Budget Report", "XLSX • 0.8 MB"),
		},
	}
}

// Types returns the catalog's search types in sorted order
func (c Catalog) Types() []string {
	types := make([]string, 0, len(c))
	for t := range c {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Search returns the items of typ whose name or subtitle contains query,
// case-insensitively. An unknown type has no items.
func (c Catalog) Search(query, typ string) []domain.Item {
	items := c[typ]
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if q == "" ||
			strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(strings.ToLower(item.Subtitle), q) {
			out = append(out, item)
		}
	}
	return out
}

// Handler answers search requests from a Catalog
type Handler struct {
	catalog Catalog
	delay   time.Duration
	logger  *log.Logger
}

// NewHandler creates a handler. delay simulates a slow backend.
func NewHandler(catalog Catalog, delay time.Duration, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{catalog: catalog, delay: delay, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("query")
	typ := r.URL.Query().Get("type")

	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-r.Context().Done():
			h.logger.Debug("Search request cancelled", "query", query, "type", typ)
			return
		}
	}

	results := h.catalog.Search(query, typ)
	h.logger.Debug("Search", "query", query, "type", typ, "results", len(results))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(results); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
