package adapter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanmap/internal/domain"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

func TestRealtimeFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/devices", r.URL.Path)
		jsonHandler(`{"devices":[
			{"mac":"AA-BB-CC-DD-EE-01","ip":"10.0.0.1","hostname":"cam","port":"gi1/0/3","switch_id":"sw-a","vlan":20,"last_seen_seconds":12},
			{"mac":"aa:bb:cc:dd:ee:02","ip":"10.0.0.2"}
		]}`)(w, r)
	}))
	defer srv.Close()

	clock := clockwork.NewFakeClock()
	a := NewRealtime(srv.URL, time.Second, 0, clock, testLogger())

	records, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.MAC("aa:bb:cc:dd:ee:01"), records[0].MAC)
	assert.Equal(t, "10.0.0.1", records[0].IP)
	assert.Equal(t, "gi1/0/3", records[0].Port)
	assert.Equal(t, "sw-a", records[0].SwitchID)
	assert.Equal(t, 20, records[0].VLAN)
	require.NotNil(t, records[0].LastSeenSeconds)
	assert.Equal(t, 12, *records[0].LastSeenSeconds)
	assert.Equal(t, domain.SourceRealtime, records[0].Source)
	assert.Equal(t, clock.Now(), records[0].FetchedAt)

	assert.Nil(t, records[1].LastSeenSeconds, "absent age stays nil, never zero")
}

func TestRealtimeSkipsInvalidRecords(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(`{"devices":[
		{"mac":"not-a-mac","ip":"10.0.0.1"},
		{"mac":["wrong","shape"]},
		{"mac":"aa:bb:cc:dd:ee:03","ip":"10.0.0.3"}
	]}`))
	defer srv.Close()

	a := NewRealtime(srv.URL, time.Second, 0, clockwork.NewFakeClock(), testLogger())

	records, err := a.Fetch(context.Background())
	require.NoError(t, err, "record-level problems never fail the fetch")
	require.Len(t, records, 1)
	assert.Equal(t, domain.MAC("aa:bb:cc:dd:ee:03"), records[0].MAC)
}

func TestRealtimeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(`{"devices": not json`))
	defer srv.Close()

	a := NewRealtime(srv.URL, time.Second, 0, clockwork.NewFakeClock(), testLogger())

	_, err := a.Fetch(context.Background())
	require.Error(t, err)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, domain.SourceRealtime, ae.Source)
	assert.Equal(t, KindMalformed, ae.Kind)
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	a := NewRealtime(srv.URL, 50*time.Millisecond, 0, clockwork.NewFakeClock(), testLogger())

	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "timeouts must be classified, got %v", err)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		jsonHandler(`{"entries":[{"mac":"aa:bb:cc:dd:ee:01","ip":"10.0.0.1"}]}`)(w, r)
	}))
	defer srv.Close()

	a := NewARP(srv.URL, 5*time.Second, 3, clockwork.NewFakeClock(), testLogger())

	records, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewARP(srv.URL, 5*time.Second, 3, clockwork.NewFakeClock(), testLogger())

	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx is permanent")

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindUnavailable, ae.Kind)
}

func TestClientUnreachable(t *testing.T) {
	// Reserved but unroutable per RFC 5737.
	a := NewLease("http://192.0.2.1:9", 100*time.Millisecond, 0, clockwork.NewFakeClock(), testLogger())

	_, err := a.Fetch(context.Background())
	require.Error(t, err)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, domain.SourceLease, ae.Source)
}

func TestPortConfigFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/switches", r.URL.Path)
		jsonHandler(`{"switches":[{
			"id":"sw-a","name":"Closet A","uplinks":["gw-main"],
			"ports":[
				{"name":"gi1/0/1","link_status":"up","speed_mbps":1000,"vlan":10,"macs":["aa:bb:cc:dd:ee:01","aa:bb:cc:dd:ee:02"]},
				{"name":"gi1/0/2","link_status":"bogus","macs":[]}
			]
		}]}`)(w, r)
	}))
	defer srv.Close()

	a := NewPortConfig(srv.URL, time.Second, 0, clockwork.NewFakeClock(), testLogger())

	records, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2, "one record per (port, mac)")
	assert.Equal(t, "gi1/0/1", records[0].Port)
	assert.Equal(t, "sw-a", records[0].SwitchID)
	assert.Equal(t, 10, records[0].VLAN)

	switches := a.Switches()
	require.Len(t, switches, 1)
	assert.Equal(t, "sw-a", switches[0].ID)
	assert.Equal(t, []string{"gw-main"}, switches[0].Uplinks)
	require.Len(t, switches[0].Ports, 2)
	assert.Equal(t, domain.LinkStatusUp, switches[0].Ports[0].LinkStatus)
	assert.Equal(t, domain.LinkStatusDown, switches[0].Ports[1].LinkStatus, "unknown status defaults to down")
}

func TestPortConfigSkipsInvalidMACs(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(`{"switches":[{
		"id":"sw-a",
		"ports":[{"name":"gi1/0/1","link_status":"up","macs":["garbage","aa:bb:cc:dd:ee:01"]}]
	}]}`))
	defer srv.Close()

	a := NewPortConfig(srv.URL, time.Second, 0, clockwork.NewFakeClock(), testLogger())

	records, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.MAC("aa:bb:cc:dd:ee:01"), records[0].MAC)

	// The port itself still appears in the descriptors.
	require.Len(t, a.Switches(), 1)
	assert.Len(t, a.Switches()[0].Ports, 1)
}

func TestLeaseFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leases", r.URL.Path)
		jsonHandler(`{"leases":[{"mac":"AABBCCDDEE01","ip":"10.0.0.1","hostname":"printer"}]}`)(w, r)
	}))
	defer srv.Close()

	a := NewLease(srv.URL, time.Second, 0, clockwork.NewFakeClock(), testLogger())

	records, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.MAC("aa:bb:cc:dd:ee:01"), records[0].MAC)
	assert.Equal(t, "printer", records[0].Hostname)
	assert.Equal(t, domain.SourceLease, records[0].Source)
}

func TestRegistryOrderAndDuplicates(t *testing.T) {
	log := testLogger()
	r := NewRegistry(log)
	clock := clockwork.NewFakeClock()

	arp := NewARP("http://example.invalid", time.Second, 0, clock, log)
	rt := NewRealtime("http://example.invalid", time.Second, 0, clock, log)

	require.NoError(t, r.Register(arp))
	require.NoError(t, r.Register(rt))
	require.Error(t, r.Register(NewARP("http://example.invalid", time.Second, 0, clock, log)))

	live := r.Live()
	require.Len(t, live, 2)
	assert.Equal(t, domain.SourceRealtime, live[0].Tag(), "tier order, not registration order")
	assert.Equal(t, domain.SourceARP, live[1].Tag())

	assert.Nil(t, r.Static())
}
