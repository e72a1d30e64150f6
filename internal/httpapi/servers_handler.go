package httpapi

import (
	"net/http"
	"net/url"
	"strings"
)

// selectionFromQuery maps each query parameter to its first value.
// Blank values are dropped so "?ram=" means "no RAM selected".
func selectionFromQuery(values url.Values) map[string]string {
	selection := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			continue
		}
		selection[key] = vals[0]
	}
	return selection
}

// handleConfigure processes GET /api/v1/servers/configure?<category>=<option>...
func (a *API) handleConfigure(w http.ResponseWriter, r *http.Request) {
	result, err := a.servers.GetServerConfiguration(selectionFromQuery(r.URL.Query()))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, "Server configuration validated successfully.", result)
}

// handleOptions processes GET /api/v1/servers/options[?<category>=<option>...].
// With a selection the availability rules decide each option's flag.
func (a *API) handleOptions(w http.ResponseWriter, r *http.Request) {
	options, err := a.servers.GetServerOptions(selectionFromQuery(r.URL.Query()))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, "Server options retrieved successfully.", options)
}

// handleCategories processes GET /api/v1/servers/categories.
func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, http.StatusOK, "Server categories retrieved successfully.", a.servers.Categories())
}
