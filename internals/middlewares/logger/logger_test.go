package logger

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sudoneoox/Picton/internals/middlewares"
)

func TestAccessLogLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New()
	app.Use(middlewares.RequestID())
	app.Use(New(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusInternalServerError, "boom") })

	cases := []struct {
		path  string
		level zapcore.Level
		code  int64
	}{
		{"/ok", zapcore.InfoLevel, 200},
		{"/missing", zapcore.WarnLevel, 404},
		{"/boom", zapcore.ErrorLevel, 500},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(fiber.MethodGet, tc.path, nil)
		req.Header.Set(fiber.HeaderXRequestID, "rid-"+tc.path)
		if _, err := app.Test(req); err != nil {
			t.Fatalf("%s: %v", tc.path, err)
		}
		entries := logs.TakeAll()
		if len(entries) != 1 {
			t.Fatalf("%s: %d log entries, want 1", tc.path, len(entries))
		}
		got := entries[0]
		if got.Level != tc.level {
			t.Fatalf("%s: level %s, want %s", tc.path, got.Level, tc.level)
		}
		fields := got.ContextMap()
		if fields["status"] != tc.code || fields["request_id"] != "rid-"+tc.path || fields["path"] != tc.path {
			t.Fatalf("%s: fields %v", tc.path, fields)
		}
	}
}
