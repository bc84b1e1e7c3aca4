package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/supportline/complaintdesk/internal/complaints"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	return client, server
}

func TestListComplaintsDecodesWireShape(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/customers" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"_id":"1","mobile":"9876543210","name":"Asha Verma","address":"12 Lake Road","product":"Water Purifier","issue":"broken","complaint_number":"CMP-00000001","priority":"high","status":"pending","timestamp":"2026-01-15T10:30:00Z"}]`)
	})

	records, err := client.ListComplaints(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != "1" || records[0].Issue != "broken" || records[0].Status != complaints.StatusPending {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestUpdateIssueSendsOnlyIssueField(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/customers/1" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		io.WriteString(w, `{"message":"Customer updated successfully","updatedCustomer":{"_id":"1"}}`)
	})

	if err := client.UpdateIssue(context.Background(), "1", "fixed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured["issue"] != "fixed" {
		t.Fatalf("unexpected issue field: %v", captured)
	}
	if _, present := captured["status"]; present {
		t.Fatalf("status must not be sent for an issue patch: %v", captured)
	}
}

func TestUpdateStatusSendsOnlyStatusField(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		io.WriteString(w, `{"message":"Customer updated successfully","updatedCustomer":{"_id":"1"}}`)
	})

	if err := client.UpdateStatus(context.Background(), "1", complaints.StatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured["status"] != "completed" {
		t.Fatalf("unexpected status field: %v", captured)
	}
	if _, present := captured["issue"]; present {
		t.Fatalf("issue must not be sent for a status patch: %v", captured)
	}
}

func TestValidationFailureCarriesServerMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"Invalid status. Status must be 'Pending' or 'Completed'."}`)
	})

	err := client.UpdateStatus(context.Background(), "1", complaints.Status("archived"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindValidation {
		t.Fatalf("expected validation kind, got %s", apiErr.Kind)
	}
	if apiErr.Message != "Invalid status. Status must be 'Pending' or 'Completed'." {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestNotFoundFailureMapsToNotFoundKind(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Customer not found"}`)
	})

	err := client.UpdateIssue(context.Background(), "missing", "anything")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindNotFound {
		t.Fatalf("expected not_found kind, got %s", apiErr.Kind)
	}
}

func TestServerFailureMapsToInternalKind(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"message":"Error updating customer data"}`)
	})

	err := client.UpdateIssue(context.Background(), "1", "anything")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindInternal {
		t.Fatalf("expected internal kind, got %s", apiErr.Kind)
	}
}

func TestResponseWithoutMessageMapsToTransportKind(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListComplaints(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindTransport {
		t.Fatalf("expected transport kind, got %s", apiErr.Kind)
	}
}

func TestNetworkFailureMapsToTransportKind(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := NewClient(ClientConfig{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	_, err = client.ListComplaints(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindTransport {
		t.Fatalf("expected transport kind, got %s", apiErr.Kind)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{BaseURL: "   "}); err == nil {
		t.Fatalf("expected error for missing base URL")
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		io.WriteString(w, `[]`)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	if _, err := client.ListComplaints(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/api/customers" {
		t.Fatalf("unexpected request path: %q", path)
	}
}
