// Copyright © 2024 The vjailbreak authors

package openstack

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
}

type fakeNova struct {
	mu       sync.Mutex
	requests []request
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeNova) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]interface{}
	_ = json.Unmarshal(data, &body)
	f.mu.Lock()
	f.requests = append(f.requests, request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
	f.mu.Unlock()
	f.handler(w, r)
}

func newBackend(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Backend, *fakeNova, chan nfvi.Response) {
	nova := &fakeNova{handler: handler}
	srv := httptest.NewServer(nova)
	t.Cleanup(srv.Close)

	client := &gophercloud.ServiceClient{
		ProviderClient: &gophercloud.ProviderClient{HTTPClient: NewHTTPClient(0, false)},
		Endpoint:       srv.URL + "/",
	}
	responses := make(chan nfvi.Response, 1)
	b := New(client, 5*time.Second, loop.PosterFunc(func(fn func()) { fn() }))
	return b, nova, responses
}

func wait(t *testing.T, responses chan nfvi.Response) nfvi.Response {
	select {
	case resp := <-responses:
		return resp
	case <-time.After(5 * time.Second):
		t.Fatal("no response from the backend")
	}
	return nfvi.Response{}
}

func TestStopInstancePostsServerAction(t *testing.T) {
	b, nova, responses := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Openstack-Request-Id", "req-5b1d")
		w.WriteHeader(http.StatusAccepted)
	})

	b.StopInstance("8f1c", "vm-0", func(resp nfvi.Response) { responses <- resp })
	resp := wait(t, responses)

	assert.True(t, resp.Completed, resp.Reason)
	assert.Equal(t, "req-5b1d", resp.ActionID)
	require.Len(t, nova.requests, 1)
	assert.Equal(t, http.MethodPost, nova.requests[0].Method)
	assert.Equal(t, "/servers/8f1c/action", nova.requests[0].Path)
	assert.Contains(t, nova.requests[0].Body, "os-stop")
}

func TestLiveMigrateNamesTheTargetHost(t *testing.T) {
	b, nova, responses := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	b.LiveMigrateInstance("8f1c", "vm-0", "compute-3", func(resp nfvi.Response) { responses <- resp })
	resp := wait(t, responses)

	require.True(t, resp.Completed, resp.Reason)
	migrate, ok := nova.requests[0].Body["os-migrateLive"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "compute-3", migrate["host"])
	assert.Equal(t, false, migrate["block_migration"])
}

func TestConflictFailsTheCall(t *testing.T) {
	b, _, responses := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"conflictingRequest": {"message": "Cannot 'os-start' instance while it is in vm_state active", "code": 409}}`))
	})

	b.StartInstance("8f1c", "vm-0", func(resp nfvi.Response) { responses <- resp })
	resp := wait(t, responses)

	assert.False(t, resp.Completed)
	assert.Equal(t, "start vm-0 failed with status 409", resp.Reason)
}

func TestDisableHostServicesUpdatesNovaCompute(t *testing.T) {
	b, nova, responses := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"services": [{"id": "4c5e", "binary": "nova-compute", "host": "compute-1", "status": "enabled", "state": "up", "zone": "nova"}]}`))
		case http.MethodPut:
			_, _ = w.Write([]byte(`{"service": {"id": "4c5e", "binary": "nova-compute", "host": "compute-1", "status": "disabled", "state": "up", "zone": "nova"}}`))
		}
	})

	b.DisableHostServices("u-compute-1", "compute-1", objects.HostServiceCompute, func(resp nfvi.Response) { responses <- resp })
	resp := wait(t, responses)

	require.True(t, resp.Completed, resp.Reason)
	require.Len(t, nova.requests, 2)
	assert.Equal(t, "/os-services", nova.requests[0].Path)
	assert.Contains(t, nova.requests[0].Query, "host=compute-1")
	assert.Equal(t, http.MethodPut, nova.requests[1].Method)
	assert.Equal(t, "/os-services/4c5e", nova.requests[1].Path)
	assert.Equal(t, "disabled", nova.requests[1].Body["status"])
}

func TestDisableHostServicesWithoutComputeService(t *testing.T) {
	b, _, responses := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"services": []}`))
	})

	b.DisableHostServices("u-compute-1", "compute-1", objects.HostServiceCompute, func(resp nfvi.Response) { responses <- resp })
	resp := wait(t, responses)

	assert.False(t, resp.Completed)
	assert.Contains(t, resp.Reason, "no nova-compute service on host compute-1")
}

func TestNetworkServicesAreNotSupported(t *testing.T) {
	b, nova, responses := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})

	b.EnableHostServices("u-compute-1", "compute-1", objects.HostServiceNetwork, func(resp nfvi.Response) { responses <- resp })
	resp := wait(t, responses)

	assert.False(t, resp.Completed)
	assert.Empty(t, nova.requests)
}
