//go:build browser

package browser_test

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	web "roster/internal/adapters/http"
	"roster/internal/adapters/http/perf"
	"roster/internal/adapters/source"
	"roster/internal/adapters/storage"
	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
)

// sampleMembers is what the stub remote endpoint serves.
var sampleMembers = []source.Record{
	{Name: "Ann Lee", Email: "ann@x.com", Role: "admin"},
	{Name: "Bo Chen", Email: "bo@x.com", Role: "user"},
	{Name: "Cy Park", Email: "cy@x.com", Role: "user"},
	{Name: "Di Ross", Email: "di@x.com", Role: "admin"},
	{Name: "Ed Wu", Email: "ed@x.com", Role: "user"},
	{Name: "Flo Hart", Email: "flo@x.com", Role: "user"},
	{Name: "Gus Moe", Email: "gus@x.com", Role: "user"},
}

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
}

// newTestApp wires the app against an in-memory database and a stub member endpoint.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sampleMembers)
	}))
	t.Cleanup(remote.Close)

	db, err := storage.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	collector := perf.NewCollector(perf.DefaultRingSize)
	stores := &web.Stores{
		ViewStore:   viewStore.NewMemoryStore(),
		MemberStore: memberStore.NewSQLiteStore(storage.NewTimedDB(db, collector)),
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Form posts carry an Origin header that must be trusted before the mux is built
	t.Setenv("ROSTER_TRUSTED_ORIGINS", fmt.Sprintf("127.0.0.1:%d,localhost:%d", port, port))

	web.RateLimitPerSecond = 1000
	mux := web.NewMux(stores, source.NewHTTPFetcher(remote.URL, 5*time.Second), collector)
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/api/perf")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return &testApp{BaseURL: baseURL, Server: srv, PW: pw, Browser: browser, Stores: stores}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage(playwright.BrowserNewPageOptions{AcceptDownloads: playwright.Bool(true)})
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// openMembers loads /members and waits for the table to appear.
func (a *testApp) openMembers(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/members"); err != nil {
		t.Fatalf("failed to navigate to members: %v", err)
	}
	if err := page.Locator("#member-table").WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("member table never rendered: %v", err)
	}
}

// rowNames returns the Name column of the visible rows.
func rowNames(t *testing.T, page playwright.Page) []string {
	t.Helper()
	names, err := page.Locator("#member-table tbody tr td:nth-child(2)").AllTextContents()
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	return names
}
