package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"roster/internal/adapters/http/perf"
	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
	"roster/internal/application/listutil"
	"roster/internal/application/orchestrators"
	"roster/internal/application/projections"
	"roster/internal/domain/export"
	"roster/internal/domain/listview"
	domainMember "roster/internal/domain/member"
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeError maps domain errors to HTTP statuses. Anything unknown is an internal error.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, viewStore.ErrViewNotFound),
		errors.Is(err, memberStore.ErrMemberNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, listview.ErrInvalidPage),
		errors.Is(err, listview.ErrInvalidPerPage),
		errors.Is(err, errBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, listview.ErrNotReady),
		errors.Is(err, listview.ErrNotEditing),
		errors.Is(err, listview.ErrRowBeingEdited),
		errors.Is(err, listview.ErrNoPendingConfirmation),
		errors.Is(err, listview.ErrConfirmationMismatch):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		internalError(w, err)
	}
}

var errBadRequest = errors.New("invalid request")

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// wantsJSON reports whether the client asked for a JSON response. Plain form posts get redirects.
func wantsJSON(r *http.Request) bool {
	if isHTMLRequest(r) {
		return false
	}
	return isJSONRequest(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

// decodeInput fills v from a JSON body, or calls fromForm with the posted form values.
// An empty JSON body leaves v untouched.
func decodeInput(r *http.Request, v any, fromForm func(url.Values)) error {
	if isJSONRequest(r) {
		if r.ContentLength == 0 {
			return nil
		}
		if err := strictDecode(r, v); err != nil {
			return errBadRequest
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errBadRequest
	}
	fromForm(r.PostForm)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err.Error())
	}
}

func viewURL(id string) string {
	return "/views/" + url.PathEscape(id)
}

// respondView finishes a mutating request: browsers are redirected back to the view,
// API clients receive the refreshed projection.
func respondView(w http.ResponseWriter, r *http.Request, viewID string) {
	if !wantsJSON(r) {
		http.Redirect(w, r, viewURL(viewID), http.StatusSeeOther)
		return
	}
	result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{ViewID: viewID}, memberListDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func memberListDeps() projections.GetMemberListDeps {
	return projections.GetMemberListDeps{Views: stores.ViewStore, Members: stores.MemberStore}
}

func cursorDeps() orchestrators.CursorDeps {
	return orchestrators.CursorDeps{Views: stores.ViewStore, Members: stores.MemberStore}
}

func editDeps() orchestrators.EditDeps {
	return orchestrators.EditDeps{Views: stores.ViewStore, Members: stores.MemberStore, GenerateID: generateID}
}

// handleIndex handles GET /
func handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/members", http.StatusSeeOther)
}

// handleOpenView handles GET /members and POST /views: every call opens a fresh view
// and starts its one fetch.
func handleOpenView(w http.ResponseWriter, r *http.Request) {
	res, err := orchestrators.ExecuteOpenView(r.Context(), orchestrators.OpenViewDeps{
		Views:        stores.ViewStore,
		Members:      stores.MemberStore,
		Source:       memberSource,
		GenerateID:   generateID,
		FetchTimeout: FetchTimeout,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	if r.Method == http.MethodGet || !wantsJSON(r) {
		http.Redirect(w, r, viewURL(res.ViewID), http.StatusSeeOther)
		return
	}
	w.Header().Set("Location", viewURL(res.ViewID))
	writeJSON(w, http.StatusCreated, map[string]string{"id": res.ViewID, "url": viewURL(res.ViewID)})
}

// handleGetView handles GET /views/{id}
func handleGetView(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetMemberList(r.Context(),
		projections.GetMemberListQuery{ViewID: r.PathValue("id")}, memberListDeps())
	if err != nil {
		writeError(w, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "member_list.html", newMemberListPage(result))
}

type searchRequest struct {
	Q string `json:"q"`
}

// handleSearch handles POST /views/{id}/search
func handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeInput(r, &req, func(f url.Values) {
		req.Q = listutil.ParseFilterParams(f).Search
	}); err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if _, err := orchestrators.ExecuteSearch(r.Context(), orchestrators.SearchInput{ViewID: id, Term: req.Q}, cursorDeps()); err != nil {
		writeError(w, err)
		return
	}
	respondView(w, r, id)
}

type pageRequest struct {
	Page int `json:"page"`
}

// handleSetPage handles POST /views/{id}/page
func handleSetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decodeInput(r, &req, func(f url.Values) {
		req.Page, _ = listutil.ParsePage(f)
	}); err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if _, err := orchestrators.ExecuteSetPage(r.Context(), orchestrators.SetPageInput{ViewID: id, Page: req.Page}, cursorDeps()); err != nil {
		writeError(w, err)
		return
	}
	respondView(w, r, id)
}

type perPageRequest struct {
	PerPage int `json:"per_page"`
}

// handleSetPerPage handles POST /views/{id}/per-page
func handleSetPerPage(w http.ResponseWriter, r *http.Request) {
	var req perPageRequest
	if err := decodeInput(r, &req, func(f url.Values) {
		req.PerPage, _ = listutil.ParsePerPage(f)
	}); err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if _, err := orchestrators.ExecuteSetPerPage(r.Context(), orchestrators.SetPerPageInput{ViewID: id, PerPage: req.PerPage}, cursorDeps()); err != nil {
		writeError(w, err)
		return
	}
	respondView(w, r, id)
}

// handleBeginEdit handles POST /views/{id}/members/{memberID}/edit
func handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	input := orchestrators.BeginEditInput{ViewID: id, MemberID: r.PathValue("memberID")}
	if _, err := orchestrators.ExecuteBeginEdit(r.Context(), input, editDeps()); err != nil {
		writeError(w, err)
		return
	}
	respondView(w, r, id)
}

// fieldsFromForm reads the edit inputs. ok is false when none were posted.
func fieldsFromForm(f url.Values) (domainMember.Fields, bool) {
	_, hasName := f["full_name"]
	_, hasEmail := f["full_email"]
	_, hasRole := f["role"]
	return domainMember.Fields{
		Name:  f.Get("full_name"),
		Email: f.Get("full_email"),
		Role:  f.Get("role"),
	}, hasName || hasEmail || hasRole
}

// handleUpdateScratch handles POST /views/{id}/scratch
func handleUpdateScratch(w http.ResponseWriter, r *http.Request) {
	var fields domainMember.Fields
	if err := decodeInput(r, &fields, func(f url.Values) {
		fields, _ = fieldsFromForm(f)
	}); err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if _, err := orchestrators.ExecuteUpdateScratch(r.Context(), orchestrators.UpdateScratchInput{ViewID: id, Fields: fields}, editDeps()); err != nil {
		writeError(w, err)
		return
	}
	respondView(w, r, id)
}

// handleRequestSave handles POST /views/{id}/save. Posted fields replace the scratch first.
func handleRequestSave(w http.ResponseWriter, r *http.Request) {
	var fields *domainMember.Fields
	if err := decodeInput(r, &fields, func(f url.Values) {
		if posted, ok := fieldsFromForm(f); ok {
			fields = &posted
		}
	}); err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	c, err := orchestrators.ExecuteRequestSave(r.Context(), orchestrators.RequestSaveInput{ViewID: id, Fields: fields}, editDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	respondConfirmation(w, r, id, c)
}

// handleCancelEdit handles POST /views/{id}/cancel
func handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := orchestrators.ExecuteCancelEdit(r.Context(), orchestrators.CancelEditInput{ViewID: id}, editDeps()); err != nil {
		writeError(w, err)
		return
	}
	respondView(w, r, id)
}

// handleRequestDelete handles POST /views/{id}/members/{memberID}/delete
func handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	input := orchestrators.RequestDeleteInput{ViewID: id, MemberID: r.PathValue("memberID")}
	c, err := orchestrators.ExecuteRequestDelete(r.Context(), input, editDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	respondConfirmation(w, r, id, c)
}

// respondConfirmation returns a pending confirmation. Browsers see it as a dialog on the view.
func respondConfirmation(w http.ResponseWriter, r *http.Request, viewID string, c listview.Confirmation) {
	if !wantsJSON(r) {
		http.Redirect(w, r, viewURL(viewID), http.StatusSeeOther)
		return
	}
	w.Header().Set("Location", viewURL(viewID)+"/confirmations/"+url.PathEscape(c.ID))
	writeJSON(w, http.StatusAccepted, c)
}

type resolveRequest struct {
	Accept *bool `json:"accept"`
}

type resolveResponse struct {
	Confirmation listview.Confirmation           `json:"confirmation"`
	Committed    bool                            `json:"committed"`
	View         projections.GetMemberListResult `json:"view"`
}

// handleResolveConfirmation handles POST /views/{id}/confirmations/{cid}
func handleResolveConfirmation(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeInput(r, &req, func(f url.Values) {
		switch f.Get("answer") {
		case "yes":
			accept := true
			req.Accept = &accept
		case "no":
			accept := false
			req.Accept = &accept
		}
	}); err != nil {
		writeError(w, err)
		return
	}
	if req.Accept == nil {
		http.Error(w, "answer must be yes or no", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	input := orchestrators.ResolveConfirmationInput{
		ViewID:         id,
		ConfirmationID: r.PathValue("cid"),
		Accept:         *req.Accept,
	}
	res, err := orchestrators.ExecuteResolveConfirmation(r.Context(), input, editDeps())
	if err != nil {
		writeError(w, err)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, viewURL(id), http.StatusSeeOther)
		return
	}
	view, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{ViewID: id}, memberListDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Confirmation: res.Confirmation, Committed: res.Committed, View: view})
}

func exportFile(r *http.Request) (export.File, error) {
	return orchestrators.ExecuteExportMembers(r.Context(),
		orchestrators.ExportMembersInput{ViewID: r.PathValue("id")},
		orchestrators.ExportMembersDeps{Views: stores.ViewStore, Members: stores.MemberStore})
}

// handleExportCSV handles GET /views/{id}/export.csv
func handleExportCSV(w http.ResponseWriter, r *http.Request) {
	file, err := exportFile(r)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Write(file.Data)
}

// handleExport handles GET /views/{id}/export
func handleExport(w http.ResponseWriter, r *http.Request) {
	file, err := exportFile(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// handlePerf handles GET /api/perf. The optional since parameter is a Go duration (default 1h).
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		http.Error(w, "performance collection disabled", http.StatusNotFound)
		return
	}
	window := time.Hour
	if v := r.URL.Query().Get("since"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "since must be a positive duration", http.StatusBadRequest)
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(time.Now().Add(-window), perf.DefaultTopN))
}
