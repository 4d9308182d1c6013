// Mock identity platform API for local development and e2e testing.
// It serves a fixed organization directory with cursor pagination and
// recognizes "magic" domains that let tests control availability verdicts.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
)

const defaultPort = "9443"

type organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type organizationPage struct {
	Organizations []organization `json:"organizations"`
	Links         []link         `json:"links,omitempty"`
}

type discoveryEntry struct {
	OrganizationID   string   `json:"organizationId"`
	OrganizationName string   `json:"organizationName"`
	Domains          []string `json:"domains,omitempty"`
}

var directory = []organization{
	{ID: "org-001", Name: "Acme Corporation"},
	{ID: "org-002", Name: "Acme Labs"},
	{ID: "org-003", Name: "Nova Industries"},
	{ID: "org-004", Name: "Nova Research"},
	{ID: "org-005", Name: "Globex"},
	{ID: "org-006", Name: "Initech"},
	{ID: "org-007", Name: "Umbrella Holdings"},
	{ID: "org-008", Name: "Wayne Enterprises"},
	{ID: "org-009", Name: "Stark Industries"},
	{ID: "org-010", Name: "Wonka Factory"},
	{ID: "org-011", Name: "Tyrell Corporation"},
	{ID: "org-012", Name: "Cyberdyne Systems"},
}

var (
	mu           sync.Mutex
	discoverable = map[string]discoveryEntry{
		"org-005": {OrganizationID: "org-005", OrganizationName: "Globex", Domains: []string{"globex.com"}},
	}
	tenantSeq = 0
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/api/server/validation-settings", handleValidationSettings)
	http.HandleFunc("/api/tenants/domain-availability", handleAvailability)
	http.HandleFunc("/api/email-domains/availability", handleAvailability)
	http.HandleFunc("/api/tenants", handleCreateTenant)
	http.HandleFunc("/api/organizations", handleListOrganizations)
	http.HandleFunc("/api/organizations/discoverable", handleListDiscoverable)
	http.HandleFunc("/api/organizations/", handleAddEmailDomains)

	log.Printf("mock identity API starting on port %s", port)
	log.Printf("magic domains: taken.* is unavailable, flaky.* returns 500")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "identity-api"})
}

func handleValidationSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tenantDomainPattern":     "^[a-z0-9.-]+$",
		"illegalCharsPattern":     "[^a-z0-9.-]",
		"mandatoryDotExtension":   true,
		"emailDomainsEnabled":     true,
		"orgNameExclusionPattern": "[^a-zA-Z0-9 .-]",
		"passwordPolicy": map[string]int{
			"minLength":      12,
			"minLowercase":   1,
			"minUppercase":   1,
			"minDigits":      1,
			"minSpecial":     1,
			"minUniqueChars": 6,
		},
	})
}

// handleAvailability serves both the tenant-domain and email-domain checks.
// Domains starting with "taken" are reported as unavailable; domains
// starting with "flaky" simulate an upstream failure.
func handleAvailability(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "domain query parameter is required")
		return
	}
	if strings.HasPrefix(domain, "flaky") {
		writeError(w, http.StatusInternalServerError, "internal_error", "simulated registry failure")
		return
	}

	mu.Lock()
	_, claimed := claimedDomains[domain]
	mu.Unlock()

	available := !claimed && !strings.HasPrefix(domain, "taken")
	writeJSON(w, http.StatusOK, map[string]any{"domain": domain, "available": available})
}

var claimedDomains = map[string]bool{}

func handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "POST required")
		return
	}

	var req struct {
		Domain           string `json:"domain"`
		OrganizationName string `json:"organizationName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if claimedDomains[req.Domain] || strings.HasPrefix(req.Domain, "taken") {
		writeError(w, http.StatusConflict, "conflict", "tenant domain already exists")
		return
	}
	claimedDomains[req.Domain] = true
	tenantSeq++

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     fmt.Sprintf("tenant-%03d", tenantSeq),
		"domain": req.Domain,
		"name":   req.OrganizationName,
		"status": "active",
	})
}

// handleListOrganizations pages through the directory. The cursor is simply
// the index of the next row, carried in a "next" link relation the way the
// real API does it.
func handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	filter := strings.ToLower(r.URL.Query().Get("filter"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 5
	}
	start, _ := strconv.Atoi(r.URL.Query().Get("after"))

	var matched []organization
	for _, org := range directory {
		if filter == "" || strings.Contains(strings.ToLower(org.Name), filter) {
			matched = append(matched, org)
		}
	}
	if start > len(matched) {
		start = len(matched)
	}

	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := organizationPage{Organizations: matched[start:end]}
	if end < len(matched) {
		page.Links = []link{{
			Rel:  "next",
			Href: fmt.Sprintf("/api/organizations?after=%d&limit=%d", end, limit),
		}}
	}
	writeJSON(w, http.StatusOK, page)
}

func handleListDiscoverable(w http.ResponseWriter, _ *http.Request) {
	mu.Lock()
	entries := make([]discoveryEntry, 0, len(discoverable))
	for _, e := range discoverable {
		entries = append(entries, e)
	}
	mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"organizations": entries})
}

// handleAddEmailDomains matches POST /api/organizations/{id}/email-domains.
func handleAddEmailDomains(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/organizations/")
	orgID, tail, found := strings.Cut(rest, "/")
	if !found || tail != "email-domains" || r.Method != http.MethodPost {
		writeError(w, http.StatusNotFound, "not_found", "unknown endpoint")
		return
	}

	var req struct {
		Domains []string `json:"domains"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Domains) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "domains are required")
		return
	}

	var name string
	for _, org := range directory {
		if org.ID == orgID {
			name = org.Name
			break
		}
	}
	if name == "" {
		writeError(w, http.StatusNotFound, "not_found", "organization not found")
		return
	}

	mu.Lock()
	entry := discoverable[orgID]
	entry.OrganizationID = orgID
	entry.OrganizationName = name
	entry.Domains = append(entry.Domains, req.Domains...)
	discoverable[orgID] = entry
	for _, d := range req.Domains {
		claimedDomains[d] = true
	}
	mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
