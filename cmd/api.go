package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the counter service
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	useJSON := cmd.Bool("json")

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if useJSON {
		if resp.IsJSON {
			return r.writeJSON(resp.JSONData, false)
		}
		r.output.Write(resp.Body)
		r.output.Write([]byte("\n"))
		return nil
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIPost makes a direct POST request to the counter service
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	r.logger.Info("POST request", "path", path)

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	resp, err := r.api.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIDump fetches and displays the full counter service state.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")
	save := cmd.Bool("save")

	r.logger.Info("dumping counter service state")
	r.writePlain("Fetching counter service state...\n\n")

	type DumpData struct {
		Health any   `json:"health"`
		Items  any   `json:"items,omitempty"`
		Tracks any   `json:"tracks,omitempty"`
		Errors []any `json:"errors,omitempty"`
	}

	dump := DumpData{
		Errors: []any{},
	}

	for _, endpoint := range []struct {
		path string
		dest *any
	}{
		{"/health", &dump.Health},
		{"/items", &dump.Items},
		{"/tracks", &dump.Tracks},
	} {
		r.writePlain("Fetching %s...\n", endpoint.path)
		resp, err := r.api.Get(ctx, endpoint.path)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			*endpoint.dest = resp.JSONData
			continue
		}
		errMsg := "request failed"
		if err != nil {
			errMsg = err.Error()
		} else if resp != nil {
			errMsg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		dump.Errors = append(dump.Errors, map[string]string{"endpoint": endpoint.path, "error": errMsg})
		r.logger.Warn("failed to fetch endpoint", "path", endpoint.path, "error", errMsg)
	}

	output, err := shared.MarshalJSON(dump, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal dump: %w", err)
	}

	if save {
		if err := os.WriteFile("api_dump.json", output, 0644); err != nil {
			return fmt.Errorf("failed to save dump: %w", err)
		}
		return r.writePlain("\n✓ Dump saved to api_dump.json\n")
	}

	r.output.Write(output)
	r.output.Write([]byte("\n"))
	return nil
}
