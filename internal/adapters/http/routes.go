package web

import "net/http"

// registerRoutes maps every route of the member list view.
// HTML and JSON clients share the same paths; see isHTMLRequest and isJSONRequest.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /members", handleOpenView)
	mux.HandleFunc("POST /views", handleOpenView)

	mux.HandleFunc("GET /views/{id}", handleGetView)
	mux.HandleFunc("POST /views/{id}/search", handleSearch)
	mux.HandleFunc("POST /views/{id}/page", handleSetPage)
	mux.HandleFunc("POST /views/{id}/per-page", handleSetPerPage)

	mux.HandleFunc("POST /views/{id}/members/{memberID}/edit", handleBeginEdit)
	mux.HandleFunc("POST /views/{id}/scratch", handleUpdateScratch)
	mux.HandleFunc("POST /views/{id}/save", handleRequestSave)
	mux.HandleFunc("POST /views/{id}/cancel", handleCancelEdit)
	mux.HandleFunc("POST /views/{id}/members/{memberID}/delete", handleRequestDelete)
	mux.HandleFunc("POST /views/{id}/confirmations/{cid}", handleResolveConfirmation)

	mux.HandleFunc("GET /views/{id}/export.csv", handleExportCSV)
	mux.HandleFunc("GET /views/{id}/export", handleExport)

	mux.HandleFunc("GET /api/perf", handlePerf)
}
