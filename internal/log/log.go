package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type entry struct {
	TS        string         `json:"ts"`
	Level     string         `json:"level"`
	ReqID     string         `json:"req_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	URL       string         `json:"url,omitempty"`
	Action    string         `json:"action,omitempty"`
	Status    int            `json:"status,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func emit(e entry) {
	e.TS = time.Now().UTC().Format(time.RFC3339)
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func write(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{Level: level, Action: action, Fields: fields}
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e.ReqID = rid
		}
	}
	if err != nil {
		e.Err = err.Error()
	}
	emit(e)
}

// Info records routine activity. c may be nil outside a request.
func Info(c *fiber.Ctx, action string, fields map[string]any) { write("info", c, action, nil, fields) }

// Audit records a state change made through the console or the API.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write("audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write("error", c, action, err, fields)
}

// Outbound records one call made by the inventory API client.
// status is 0 when no response was received.
func Outbound(method, url string, status int, took time.Duration, err error) {
	e := entry{
		Level:     "info",
		Action:    "client.request",
		Method:    method,
		URL:       url,
		Status:    status,
		LatencyMs: took.Milliseconds(),
	}
	if err != nil || status >= 400 {
		e.Level = "warn"
	}
	if err != nil {
		e.Err = err.Error()
	}
	emit(e)
}
