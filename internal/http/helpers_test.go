package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"invadmin/internal/config"
	"invadmin/internal/http/handlers"
	"invadmin/internal/repos"
	"invadmin/web"
)

func newEngine() *html.Engine { return html.NewFileSystem(web.Templates(), ".html") }

// newAPIApp mounts the inventory API over a fresh in-memory database.
func newAPIApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	deps := handlers.NewDeps(db, config.Config{APIBaseURL: "http://127.0.0.1:0", APITimeout: time.Second})
	app := fiber.New(fiber.Config{Views: newEngine(), ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	deps.InventoryHandler.Routes(app)
	return app
}

// newConsoleApp serves a fresh API over a real socket and points the
// console at it.
func newConsoleApp(t *testing.T) *fiber.App {
	t.Helper()
	api := httptest.NewServer(adaptor.FiberApp(newAPIApp(t)))
	t.Cleanup(api.Close)

	deps := handlers.NewDeps(nil, config.Config{APIBaseURL: api.URL, APITimeout: 5 * time.Second})
	app := fiber.New(fiber.Config{Views: newEngine(), ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	guard := handlers.CSRF()
	app.Get("/", guard, deps.ConsoleHandler.Page)
	app.Post("/", guard, deps.ConsoleHandler.Submit)
	return app
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// csrfToken loads the console once and returns the issued token.
func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("load console: %v", err)
	}
	tok := extractCookie(resp, handlers.CSRFCookie)
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

// submit posts the console form and returns status and page body.
func submit(t *testing.T, app *fiber.App, tok string, form url.Values) (int, string) {
	t.Helper()
	if tok != "" {
		form.Set("csrf", tok)
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if tok != "" {
		req.AddCookie(&http.Cookie{Name: handlers.CSRFCookie, Value: tok})
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

// callAPI sends a JSON request to the API app.
func callAPI(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	return callAPIRaw(t, app, method, target, "application/json", body)
}

func callAPIRaw(t *testing.T, app *fiber.App, method, target, contentType, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findEntry(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
