package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type fakeStore struct {
	err error
}

func (f fakeStore) Ping(ctx context.Context) error {
	return f.err
}

func newApp(store Pinger) *fiber.App {
	app := fiber.New()
	New(store, zap.NewNop()).Register(app)
	return app
}

func TestRoot(t *testing.T) {
	resp, err := newApp(fakeStore{}).Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || string(body) != "Bot is running" {
		t.Errorf("GET / = %d %q", resp.StatusCode, body)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "ok", want: fiber.StatusOK},
		{name: "store down", err: errors.New("database is locked"), want: fiber.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newApp(fakeStore{err: tt.err}).Test(httptest.NewRequest("GET", "/health", nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
