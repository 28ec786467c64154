package toshiba

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/joshp123/acwatch/internal/core"
)

const (
	loginSuccessBody = `{"ResObj":{"access_token":"dave","token_type":"bearer","expires_in":3600,"consumerId":"steve","countryId":123,"consumerMasterId":"fred"},"IsSuccess":true,"Message":"Success","StatusCode":"Success"}`
	loginInvalidBody = `{"ResObj":{"error":"invalid_grant"},"IsSuccess":false,"Message":"Invalid UserName or Password","StatusCode":"InvalidUserNameorPassword"}`
	mappingBody      = `{"ResObj":[
		{"GroupId":"g1","GroupName":"Home","ConsumerId":"steve","TimeZone":"UTC","ACList":[
			{"Id":"ac-1","DeviceUniqueId":"d-1","Name":"Living room","ACModelId":"3","ACStateData":"31411841316400101610fe0b00001002000000","MeritFeature":"2c02","FirmwareVersion":"2.0.00"},
			{"Id":"ac-2","DeviceUniqueId":"d-2","Name":"Broken","ACStateData":"zz"}
		]},
		{"GroupId":"g2","GroupName":"Cabin","ConsumerId":"steve","TimeZone":"UTC","ACList":[
			{"Id":"ac-3","DeviceUniqueId":"d-3","Name":"Bedroom","ACStateData":"30421535316400101610fe0b00001002000000"}
		]}
	],"IsSuccess":true,"Message":"Success"}`
)

type fakeCloud struct {
	logins       atomic.Int32
	mappings     atomic.Int32
	loginBody    string
	unauthorized atomic.Bool
}

func (f *fakeCloud) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			f.logins.Add(1)
			if r.Method != http.MethodPost {
				t.Errorf("expected POST to login, got %s", r.Method)
			}
			var creds map[string]string
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &creds); err != nil || creds["Username"] != "me@example.com" || creds["Password"] != "hunter2" {
				t.Errorf("unexpected login body %s", body)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, f.loginBody)
		case mappingPath:
			f.mappings.Add(1)
			if f.unauthorized.Load() {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if got := r.Header.Get("Authorization"); got != "Bearer dave" {
				t.Errorf("unexpected Authorization header %q", got)
			}
			if got := r.URL.Query().Get("consumerId"); got != "steve" {
				t.Errorf("unexpected consumerId %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, mappingBody)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestClient(t *testing.T, cloud *fakeCloud) (*Client, *clockwork.FakeClock) {
	t.Helper()
	server := httptest.NewServer(cloud.handler(t))
	t.Cleanup(server.Close)

	clock := clockwork.NewFakeClock()
	client, err := NewClientWithHTTP(nil, Config{
		BaseURL:           server.URL,
		Username:          "me@example.com",
		Password:          "hunter2",
		RequestsPerMinute: 100,
	}, clock, server.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, clock
}

func TestClientSnapshotsFlattensGroups(t *testing.T) {
	cloud := &fakeCloud{loginBody: loginSuccessBody}
	client, _ := newTestClient(t, cloud)

	snaps, err := client.Snapshots(context.Background())
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 decodable units, got %d", len(snaps))
	}
	if snaps[0].Name != "Living room" || snaps[1].Name != "Bedroom" {
		t.Fatalf("unexpected unit order: %q %q", snaps[0].Name, snaps[1].Name)
	}
	first := snaps[0].Attributes.At(0)
	if first.Key != "power_status" || first.Value.String() != "OFF" {
		t.Fatalf("unexpected first attribute: %+v", first)
	}
	if v, _ := snaps[1].Attributes.Get("mode"); v.String() != "COOL" {
		t.Fatalf("unexpected bedroom mode: %s", v)
	}
}

func TestClientReusesSession(t *testing.T) {
	cloud := &fakeCloud{loginBody: loginSuccessBody}
	client, clock := newTestClient(t, cloud)

	for i := 0; i < 3; i++ {
		if _, err := client.Snapshots(context.Background()); err != nil {
			t.Fatalf("Snapshots: %v", err)
		}
	}
	if got := cloud.logins.Load(); got != 1 {
		t.Fatalf("expected 1 login, got %d", got)
	}

	clock.Advance(time.Hour)
	if _, err := client.Snapshots(context.Background()); err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if got := cloud.logins.Load(); got != 2 {
		t.Fatalf("expected re-login after expiry, got %d logins", got)
	}
}

func TestClientUnauthorizedInvalidatesSession(t *testing.T) {
	cloud := &fakeCloud{loginBody: loginSuccessBody}
	client, _ := newTestClient(t, cloud)

	if _, err := client.Snapshots(context.Background()); err != nil {
		t.Fatalf("Snapshots: %v", err)
	}

	cloud.unauthorized.Store(true)
	_, err := client.Snapshots(context.Background())
	var statusErr HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}

	cloud.unauthorized.Store(false)
	if _, err := client.Snapshots(context.Background()); err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if got := cloud.logins.Load(); got != 2 {
		t.Fatalf("expected re-login after 401, got %d logins", got)
	}
}

func TestClientInvalidCredentials(t *testing.T) {
	cloud := &fakeCloud{loginBody: loginInvalidBody}
	client, _ := newTestClient(t, cloud)

	_, err := client.Snapshots(context.Background())
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := cloud.mappings.Load(); got != 0 {
		t.Fatalf("mapping must not be called without a session, got %d calls", got)
	}

	plugin := NewPluginWithClient(client)
	if plugin.Health() != core.HealthError {
		t.Fatalf("expected ERROR health, got %s", plugin.Health())
	}
	if plugin.HealthMessage() == "" {
		t.Fatalf("expected health message")
	}
}

func TestPluginHealthTracksLastCall(t *testing.T) {
	cloud := &fakeCloud{loginBody: loginSuccessBody}
	client, _ := newTestClient(t, cloud)
	plugin := NewPluginWithClient(client)

	if _, err := plugin.Units(context.Background()); err != nil {
		t.Fatalf("Units: %v", err)
	}
	if plugin.Health() != core.HealthHealthy {
		t.Fatalf("expected HEALTHY, got %s", plugin.Health())
	}

	cloud.unauthorized.Store(true)
	if _, err := plugin.Units(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if plugin.Health() != core.HealthDegraded {
		t.Fatalf("expected DEGRADED, got %s", plugin.Health())
	}

	states, _ := client.LastStates()
	if len(states) != 2 {
		t.Fatalf("expected last good states to survive a failure, got %d", len(states))
	}
}

func TestParseLoginMessage(t *testing.T) {
	login, err := ParseLoginMessage([]byte(loginSuccessBody))
	if err != nil {
		t.Fatalf("ParseLoginMessage: %v", err)
	}
	if login.AccessToken != "dave" || login.ConsumerID != "steve" || login.CountryID != 123 {
		t.Fatalf("unexpected login: %+v", login)
	}

	if _, err := ParseLoginMessage([]byte(loginInvalidBody)); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := ParseLoginMessage([]byte(`{"StatusCode":"Maintenance","Message":"down"}`)); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if _, err := ParseLoginMessage([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
