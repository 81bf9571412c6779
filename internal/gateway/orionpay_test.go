package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePixChargeEnvelope(t *testing.T) {
	var got ChargeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/pix/generate", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"pixCode":"000201abc","qrCode":"data:image/png;base64,AAA","id":"tx-1"}}`))
	}))
	defer srv.Close()

	client := NewOrionPayClient(srv.URL+"/api/v1/", "secret-key", time.Second)
	charge, err := client.CreatePixCharge(context.Background(), ChargeRequest{Amount: 149.9, Email: "joao@gmail.com", Name: "João Silva"})
	require.NoError(t, err)

	assert.Equal(t, ChargeRequest{Amount: 149.9, Email: "joao@gmail.com", Name: "João Silva"}, got)
	assert.Equal(t, &Charge{PixCode: "000201abc", QRCode: "data:image/png;base64,AAA", TransactionID: "tx-1"}, charge)
}

func TestCreatePixChargeFlatResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pixCode":"flat","qrCode":"qr","id":"tx-2"}`))
	}))
	defer srv.Close()

	charge, err := NewOrionPayClient(srv.URL, "k", 0).CreatePixCharge(context.Background(), ChargeRequest{})
	require.NoError(t, err)
	assert.Equal(t, "flat", charge.PixCode)
	assert.Equal(t, "tx-2", charge.TransactionID)
}

func TestCreatePixChargeNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := NewOrionPayClient(srv.URL, "k", 0).CreatePixCharge(context.Background(), ChargeRequest{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream down", statusErr.Body)
}

func TestCreatePixChargeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewOrionPayClient(srv.URL, "k", 20*time.Millisecond).CreatePixCharge(context.Background(), ChargeRequest{})
	assert.Error(t, err)
}

func TestCreatePixChargeInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := NewOrionPayClient(srv.URL, "k", 0).CreatePixCharge(context.Background(), ChargeRequest{})
	assert.Error(t, err)
}
