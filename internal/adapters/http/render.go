package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"roster/internal/application/projections"
	"roster/internal/domain/export"
	"roster/internal/domain/listview"
)

//go:embed templates/*.html
var templateFS embed.FS

// memberListPage is the data handed to member_list.html.
type memberListPage struct {
	projections.GetMemberListResult
	Title      string
	Loading    bool
	ExportURL  string
	ExportName string
}

func newMemberListPage(result projections.GetMemberListResult) memberListPage {
	return memberListPage{
		GetMemberListResult: result,
		Title:               "Members List View",
		Loading:             result.Phase == listview.PhaseLoading,
		ExportURL:           viewURL(result.ViewID) + "/export.csv",
		ExportName:          export.FileName,
	}
}

// renderTemplate executes layout.html together with the named page template.
func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
		"csrfToken": func() string { return csrf.Token(r) },
		"viewURL":   viewURL,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		slog.Error("render_failed", "template", templateName, "error", err.Error())
	}
}
