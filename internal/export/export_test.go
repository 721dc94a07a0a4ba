package export

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimshub/internal/claims"
	"claimshub/pkg/testutil"
)

func sampleClaim() *claims.Claim {
	return &claims.Claim{
		Reference:        "CLM-1709290000000",
		Introducer:       "acme",
		Title:            "Mr",
		FirstName:        "Jo",
		LastName:         "Bloggs",
		DOBDay:           "14",
		DOBMonth:         "06",
		DOBYear:          "1990",
		Email:            "jo@example.com",
		Phone:            "07123456789",
		AddressLine1:     "1 High Street",
		City:             "Leeds",
		Postcode:         "LS1 1AA",
		HasCarFinance:    "Yes",
		MultipleVehicles: "No",
		Signature:        "data:image/png;base64,abc",
		Status:           claims.StatusSubmitted,
		SubmittedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	doc, err := Render(sampleClaim())
	require.NoError(t, err)

	assert.Contains(t, doc, "Reference:      CLM-1709290000000")
	assert.Contains(t, doc, "Name:           Mr Jo Bloggs")
	assert.Contains(t, doc, "Date of birth:  14/06/1990")
	assert.Contains(t, doc, "Car finance held:    Yes")
	assert.Contains(t, doc, "Signature captured:  Yes")
	assert.NotContains(t, doc, "base64", "raw signature data never appears in the document")
}

func TestRenderOmitsEmptyAddressLines(t *testing.T) {
	claim := sampleClaim()
	claim.AddressLine2 = ""
	claim.County = ""

	doc, err := Render(claim)
	require.NoError(t, err)
	assert.Contains(t, doc, "1 High Street\nLeeds\nLS1 1AA")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "claim-1709290000000.txt", Filename(sampleClaim()))
}

func TestHandlerExport(t *testing.T) {
	newRouter := func() chi.Router {
		r := chi.NewRouter()
		NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
		return r
	}

	t.Run("returns a plain-text attachment", func(t *testing.T) {
		r := newRouter()

		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/api/claims/export",
			ExportRequest{Claim: sampleClaim()}))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="claim-1709290000000.txt"`, rr.Header().Get("Content-Disposition"))
		assert.Contains(t, rr.Body.String(), "CLAIM SUBMISSION RECORD")
	})

	t.Run("rejects a missing claim", func(t *testing.T) {
		r := newRouter()

		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/api/claims/export", map[string]any{}))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}
