package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/encore/internal/server"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	tu "github.com/desertthunder/encore/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(io.Discard)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			counter := services.NewCounterService("http://localhost:9999", httpClient)
			api := services.NewAPIService("http://localhost:9999", httpClient)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Counter:    counter,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.counter != counter {
				t.Error("expected counter to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil counter builds one from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.counter == nil {
				t.Error("expected counter service to be constructed")
			}
			if runner.api == nil {
				t.Error("expected api service to be constructed")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})
}

// commandHarness runs CLI commands against a seeded dev counter service and
// a temp-file client database.
type commandHarness struct {
	runner *Runner
	output *bytes.Buffer
}

func newCommandHarness(t *testing.T) *commandHarness {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open server database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run server migrations: %v", err)
	}
	if err := seedCounterData(db); err != nil {
		t.Fatalf("failed to seed server data: %v", err)
	}

	handler := server.NewCounterHandler(db, shared.NewLogger(io.Discard))
	if err := handler.RegisterToken("demo-token", "demo"); err != nil {
		t.Fatalf("failed to register token: %v", err)
	}

	router := server.NewBasicRouter()
	router.Handler(handler)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	config := shared.DefaultConfig()
	config.Service.BaseURL = ts.URL
	config.Service.TimeoutSecs = 2
	config.Database.Path = filepath.Join(t.TempDir(), "encore.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})

	return &commandHarness{runner: runner, output: output}
}

// run executes one CLI invocation on a fresh command tree so flag state
// never leaks between invocations.
func (h *commandHarness) run(t *testing.T, args ...string) string {
	t.Helper()
	h.output.Reset()
	app := &cli.Command{
		Name:     "encore",
		Commands: h.runner.register(),
	}
	argv := append([]string{"encore"}, args...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Run(ctx, argv); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return h.output.String()
}

func TestCommands(t *testing.T) {
	t.Run("auth status reports guest before login", func(t *testing.T) {
		h := newCommandHarness(t)

		out := h.run(t, "auth", "status")
		if !strings.Contains(out, "guest") {
			t.Errorf("expected guest identity, got %q", out)
		}
	})

	t.Run("login then status reports identity", func(t *testing.T) {
		h := newCommandHarness(t)

		out := h.run(t, "auth", "login", "--token", "demo-token", "--user", "demo")
		if !strings.Contains(out, "Signed in as demo") {
			t.Errorf("expected login confirmation, got %q", out)
		}

		out = h.run(t, "auth", "status")
		if !strings.Contains(out, "demo") {
			t.Errorf("expected identity in status, got %q", out)
		}
	})

	t.Run("logout demotes to guest", func(t *testing.T) {
		h := newCommandHarness(t)

		h.run(t, "auth", "login", "--token", "demo-token", "--user", "demo")
		h.run(t, "auth", "logout")

		out := h.run(t, "auth", "status")
		if !strings.Contains(out, "guest") {
			t.Errorf("expected guest after logout, got %q", out)
		}
	})

	t.Run("like toggles and reports settled count", func(t *testing.T) {
		h := newCommandHarness(t)
		h.run(t, "auth", "login", "--token", "demo-token", "--user", "demo")

		out := h.run(t, "like", "item-sunrise")
		if !strings.Contains(out, "13 likes") {
			t.Errorf("expected incremented like count, got %q", out)
		}

		out = h.run(t, "like", "item-sunrise")
		if !strings.Contains(out, "12 likes") {
			t.Errorf("expected unlike to restore count, got %q", out)
		}
	})

	t.Run("play counts once when signed in", func(t *testing.T) {
		h := newCommandHarness(t)
		h.run(t, "auth", "login", "--token", "demo-token", "--user", "demo")

		out := h.run(t, "play", "track-opener")
		if !strings.Contains(out, "41 plays (1 yours)") {
			t.Errorf("expected counted play, got %q", out)
		}
	})

	t.Run("guest play is not counted", func(t *testing.T) {
		h := newCommandHarness(t)

		out := h.run(t, "play", "track-opener")
		if !strings.Contains(out, "play not counted") {
			t.Errorf("expected guest notice, got %q", out)
		}

		out = h.run(t, "tracks")
		if !strings.Contains(out, "  40  ") {
			t.Errorf("expected unchanged play count, got %q", out)
		}
	})

	t.Run("items and tracks listings", func(t *testing.T) {
		h := newCommandHarness(t)

		out := h.run(t, "items")
		if !strings.Contains(out, "Items (3)") || !strings.Contains(out, "Sunrise Set") {
			t.Errorf("unexpected items listing: %q", out)
		}

		out = h.run(t, "tracks")
		if !strings.Contains(out, "Tracks (2)") || !strings.Contains(out, "Opener") {
			t.Errorf("unexpected tracks listing: %q", out)
		}
	})

	t.Run("export writes a snapshot", func(t *testing.T) {
		h := newCommandHarness(t)
		dir := filepath.Join(t.TempDir(), "snapshot")

		out := h.run(t, "export", "--format", "json", "--output", dir)
		if !strings.Contains(out, "Exported json snapshot") {
			t.Errorf("unexpected export output: %q", out)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "library.json"))
	})

	t.Run("refresh reports entity totals", func(t *testing.T) {
		h := newCommandHarness(t)

		out := h.run(t, "refresh")
		if !strings.Contains(out, "Refreshed 5 of 5") {
			t.Errorf("unexpected refresh output: %q", out)
		}
	})
}
