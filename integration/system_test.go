//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

type cartSnapshot struct {
	Items []struct {
		Product struct {
			ID int64 `json:"id"`
		} `json:"product"`
		Quantity int `json:"quantity"`
	} `json:"items"`
	TotalItems int    `json:"total_items"`
	Subtotal   string `json:"subtotal"`
	Notice     *struct {
		Kind string `json:"kind"`
	} `json:"notice"`
}

func TestSystem_E2E_CartFlow(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var page struct {
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
		Total int `json:"total"`
	}
	doJSON(t, http.MethodGet, baseURL+"/products?category=laptops", nil, &page, 200)
	if len(page.Items) == 0 {
		t.Fatalf("expected laptops")
	}
	pid := page.Items[0].ID

	var sess struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, baseURL+"/session", nil, &sess, 201)
	if sess.Token == "" {
		t.Fatalf("empty token")
	}

	var snap cartSnapshot
	doJSONAuth(t, http.MethodPost, baseURL+"/cart/items", sess.Token, map[string]any{"product_id": pid}, &snap, 200)
	doJSONAuth(t, http.MethodPost, baseURL+"/cart/items", sess.Token, map[string]any{"product_id": pid}, &snap, 200)
	if len(snap.Items) != 1 || snap.TotalItems != 2 {
		t.Fatalf("lines=%d total_items=%d", len(snap.Items), snap.TotalItems)
	}

	if os.Getenv("E2E_RESTART_CART") == "1" {
		restartContainer(t, ctx, "cart")
		waitReady(t, ctx, baseURL+"/readyz")

		var after cartSnapshot
		doJSONAuth(t, http.MethodGet, baseURL+"/cart", sess.Token, nil, &after, 200)
		if after.TotalItems != 2 || after.Subtotal != snap.Subtotal {
			t.Fatalf("cart lost across restart: total_items=%d subtotal=%s", after.TotalItems, after.Subtotal)
		}
	}

	var cleared cartSnapshot
	doJSONAuth(t, http.MethodPut, baseURL+"/cart/items/"+strconv.FormatInt(pid, 10), sess.Token, map[string]any{"quantity": 0}, &cleared, 200)
	if cleared.TotalItems != 0 {
		t.Fatalf("total_items=%d after update to 0", cleared.TotalItems)
	}

	doJSONAuth(t, http.MethodDelete, baseURL+"/session", sess.Token, nil, nil, 204)
}

func TestSystem_E2E_CartRequiresSession(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")
	doJSON(t, http.MethodGet, baseURL+"/cart", nil, nil, 401)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()
	doJSONAuth(t, method, url, "", body, out, want)
}

func doJSONAuth(t *testing.T, method, url, token string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
