package vietqr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAccount() Account {
	return Account{
		BankID:      "970422",
		AccountNo:   "0123456789",
		AccountName: "CINEMA ONE",
		Template:    "compact2",
	}
}

func TestImageURL(t *testing.T) {
	client := NewClient(testAccount(), zap.NewNop())

	url := client.ImageURL(150000, "TICKET-20260830-101500-0042")

	assert.Contains(t, url, "970422-0123456789-compact2.png")
	assert.Contains(t, url, "amount=150000")
	assert.Contains(t, url, "addInfo=TICKET-20260830-101500-0042")
	assert.Contains(t, url, "accountName=CINEMA+ONE")
}

func TestFetchImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "970422-0123456789-compact2.png")
		w.Write([]byte("fake-png-bytes"))
	}))
	defer server.Close()

	client := NewClientWithBase(testAccount(), server.URL, server.URL+"/banks", zap.NewNop())

	image, err := client.FetchImage(context.Background(), 90000, "TICKET-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(image, "data:image/png;base64,"))
}

func TestFetchImageUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClientWithBase(testAccount(), server.URL, server.URL+"/banks", zap.NewNop())

	_, err := client.FetchImage(context.Background(), 90000, "TICKET-1")
	require.Error(t, err)

	var adapterErr *AdapterError
	assert.ErrorAs(t, err, &adapterErr)
}

func TestQRImageFallsBackToLocal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClientWithBase(testAccount(), server.URL, server.URL+"/banks", zap.NewNop())

	image, err := client.QRImage(context.Background(), 90000, "TICKET-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(image, "data:image/png;base64,"))
}

func TestBanks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"00","desc":"ok","data":[{"id":26,"name":"Ngan hang TMCP Quan doi","code":"MB","bin":"970422","shortName":"MBBank"}]}`))
	}))
	defer server.Close()

	client := NewClientWithBase(testAccount(), server.URL, server.URL, zap.NewNop())

	banks, err := client.Banks(context.Background())
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, "MBBank", banks[0].ShortName)
	assert.Equal(t, "970422", banks[0].BIN)
}

func TestBanksFallsBackToDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBase(testAccount(), server.URL, server.URL, zap.NewNop())

	banks, err := client.Banks(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, banks)
}

func TestGenerateLocal(t *testing.T) {
	client := NewClient(testAccount(), zap.NewNop())

	image, err := client.GenerateLocal(120000, "TICKET-2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(image, "data:image/png;base64,"))
}
