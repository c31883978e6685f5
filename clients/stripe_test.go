package clients

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

func newTestClient(baseURL string) *StripeClient {
	return &StripeClient{
		SecretKey:  "sk_test_xyz",
		BaseURL:    baseURL,
		HttpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreateCheckoutSessionEncodesLineItem(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_xyz", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		json.NewEncoder(w).Encode(CheckoutSession{
			ID:            "cs_test_123",
			URL:           "https://checkout.stripe.com/c/pay/cs_test_123",
			Status:        SessionStatusOpen,
			PaymentStatus: PaymentStatusUnpaid,
			AmountTotal:   2499,
		})
	}))
	defer srv.Close()

	session, err := newTestClient(srv.URL).CreateCheckoutSession(context.Background(), CreateSessionParams{
		AmountCents:   2499,
		Currency:      "usd",
		ProductName:   "Weekly Pet Waste Service - 2 Dogs",
		Description:   "Weekly service for 2 dogs",
		CustomerEmail: "jane@example.com",
		SuccessURL:    "http://localhost:5173/booking?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "http://localhost:5173/booking?canceled=true",
		Metadata:      map[string]string{"wizard_id": "w-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", session.ID)
	assert.NotEmpty(t, session.URL)

	assert.Equal(t, "payment", gotForm["mode"][0])
	assert.Equal(t, "2499", gotForm["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "usd", gotForm["line_items[0][price_data][currency]"][0])
	assert.Equal(t, "Weekly Pet Waste Service - 2 Dogs", gotForm["line_items[0][price_data][product_data][name]"][0])
	assert.Equal(t, "1", gotForm["line_items[0][quantity]"][0])
	assert.Equal(t, "jane@example.com", gotForm["customer_email"][0])
	assert.Equal(t, "w-1", gotForm["metadata[wizard_id]"][0])
}

func TestGetCheckoutSessionRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(CheckoutSession{
			ID:            "cs_test_123",
			Status:        SessionStatusComplete,
			PaymentStatus: PaymentStatusPaid,
			AmountTotal:   2499,
		})
	}))
	defer srv.Close()

	session, err := newTestClient(srv.URL).GetCheckoutSession(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, PaymentStatusPaid, session.PaymentStatus)
}

func TestGetCheckoutSessionDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "No such checkout.session"},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetCheckoutSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "No such checkout.session")
}

func TestGetCheckoutSessionGivesUpAfterRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetCheckoutSession(context.Background(), "cs_test_123")
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}
