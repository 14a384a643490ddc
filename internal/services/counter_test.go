package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/encore/internal/shared"
)

// counterServer stubs the dev service with a fixed status and body per path.
func counterServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}))
}

func TestCounterService(t *testing.T) {
	ctx := context.Background()
	userID := "user-1"

	t.Run("Like", func(t *testing.T) {
		t.Run("Decodes Authoritative Counts", func(t *testing.T) {
			server := counterServer(t, http.StatusOK, LikeResult{LikeCount: 4, IsLiked: true})
			defer server.Close()

			svc := NewCounterService(server.URL, nil)
			result, err := svc.Like(ctx, "item-1", &userID, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.LikeCount != 4 || !result.IsLiked {
				t.Errorf("expected count 4 liked, got %+v", result)
			}
		})

		t.Run("Conflict Keeps Optimistic State", func(t *testing.T) {
			server := counterServer(t, http.StatusConflict, map[string]string{"error": "already liked"})
			defer server.Close()

			svc := NewCounterService(server.URL, nil)
			result, err := svc.Like(ctx, "item-1", &userID, true)

			if !errors.Is(err, shared.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
			if result != nil {
				t.Errorf("expected nil result on conflict, got %+v", result)
			}
		})
	})

	t.Run("IncrementPlay", func(t *testing.T) {
		t.Run("Sends Bearer Credential", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
					t.Errorf("expected bearer credential, got %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(PlayResult{PlayCount: 8, UserPlays: 2})
			}))
			defer server.Close()

			svc := NewCounterService(server.URL, nil)
			result, err := svc.IncrementPlay(ctx, "track-1", userID, "sess-1", "tok-123")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.PlayCount != 8 || result.UserPlays != 2 {
				t.Errorf("expected counts 8/2, got %+v", result)
			}
		})

		t.Run("Conflict Keeps Optimistic State", func(t *testing.T) {
			server := counterServer(t, http.StatusConflict, map[string]string{"error": "play already recorded"})
			defer server.Close()

			svc := NewCounterService(server.URL, nil)
			result, err := svc.IncrementPlay(ctx, "track-1", userID, "sess-1", "tok-123")

			if !errors.Is(err, shared.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
			if result != nil {
				t.Errorf("expected nil result on conflict, got %+v", result)
			}
		})

		t.Run("Unauthorized Invalidates Credential", func(t *testing.T) {
			server := counterServer(t, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			defer server.Close()

			svc := NewCounterService(server.URL, nil)
			_, err := svc.IncrementPlay(ctx, "track-1", userID, "sess-1", "stale")

			if !errors.Is(err, shared.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	})
}
