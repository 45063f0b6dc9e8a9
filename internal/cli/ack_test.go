package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/assys/brickguide/pkg/httputil"
)

func ackServer(t *testing.T, got *ackRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ackPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			return
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(ackResult{
			Status:    "ok",
			Session:   "s1",
			Blueprint: "house",
			Step:      2,
			Total:     2,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbeServer(t *testing.T) {
	srv := ackServer(t, &ackRequest{})
	if err := probeServer(context.Background(), httputil.NewClient(srv.URL)); err != nil {
		t.Errorf("probe: %v", err)
	}

	down := httputil.NewClient("http://127.0.0.1:1")
	down.Attempts = 1
	if err := probeServer(context.Background(), down); err == nil {
		t.Error("probe of a closed port should fail")
	}
}

func TestSendAck(t *testing.T) {
	var got ackRequest
	srv := ackServer(t, &got)

	res, err := sendAck(context.Background(), httputil.NewClient(srv.URL+"/"), ackRequest{Type: "voice", Direction: "back", Session: "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != "voice" || got.Direction != "back" || got.Session != "s1" {
		t.Errorf("server received %+v", got)
	}
	if res.Blueprint != "house" || res.Step != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestAckCommand(t *testing.T) {
	var got ackRequest
	srv := ackServer(t, &got)

	if _, err := runCLI(t, "ack", "--server", srv.URL, "--test"); err != nil {
		t.Fatalf("ack --test: %v", err)
	}
	if _, err := runCLI(t, "ack", "--server", srv.URL, "sideways"); err == nil {
		t.Error("ack with an invalid direction should fail")
	}
	if _, err := runCLI(t, "ack", "--server", srv.URL); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if got.Type != "gesture" || got.Direction != "next" {
		t.Errorf("default ack sent %+v", got)
	}
}
