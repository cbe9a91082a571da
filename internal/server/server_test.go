package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aidhub/internal/geo"
	"aidhub/internal/matching"
	"aidhub/internal/ranking"
	"aidhub/internal/urgency"
	"aidhub/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type failingGeocoder struct{}

func (failingGeocoder) Geocode(context.Context, string) (*geo.Result, error) {
	return nil, &geo.GeocodingError{Type: geo.ErrorTypeNetwork, Message: "connection refused"}
}

type fixedGeocoder struct{}

func (fixedGeocoder) Geocode(context.Context, string) (*geo.Result, error) {
	return &geo.Result{Latitude: 30.27, Longitude: -97.74, Provider: "fixed"}, nil
}

type recipientSource []*types.Recipient

func (s recipientSource) RecipientsByType(_ context.Context, donationType string) ([]*types.Recipient, error) {
	var out []*types.Recipient
	for _, r := range s {
		if r.DonationType == donationType {
			out = append(out, r)
		}
	}
	return out, nil
}

type constEstimator struct{}

func (constEstimator) Estimate(context.Context, string, string) urgency.Estimate {
	return urgency.Estimate{Urgency: 3.5, Confidence: 0.42}
}

type fakeMatcher struct {
	match *types.Match
	reg   *matching.Registration
	err   error
	got   *types.DonateRequest
}

func (m *fakeMatcher) AddRecipient(_ context.Context, _ *types.CreateRecipientRequest) (*matching.Registration, error) {
	return m.reg, m.err
}

func (m *fakeMatcher) Donate(_ context.Context, req *types.DonateRequest) (*types.Match, error) {
	m.got = req
	return m.match, m.err
}

type fakeNeeds struct {
	counts []*types.TypeCount
	needs  []*types.CurrentNeed
	err    error
}

func (f fakeNeeds) TopTypes(_ context.Context, limit uint64) ([]*types.TypeCount, error) {
	if uint64(len(f.counts)) > limit {
		return f.counts[:limit], f.err
	}
	return f.counts, f.err
}

func (f fakeNeeds) CurrentNeeds(context.Context) ([]*types.CurrentNeed, error) {
	return f.needs, f.err
}

type fakeHistory struct {
	history []*types.DonatedRecipient
	stats   []*types.TypeStat
	summary *types.SummaryStats
	err     error
}

func (f fakeHistory) History(context.Context) ([]*types.DonatedRecipient, error) {
	return f.history, f.err
}

func (f fakeHistory) TypeStats(context.Context) ([]*types.TypeStat, error) {
	return f.stats, f.err
}

func (f fakeHistory) Summary(context.Context) (*types.SummaryStats, error) {
	return f.summary, f.err
}

type fakeDonations struct {
	donations map[string]*types.Donation
	err       error
}

func (f *fakeDonations) Donation(_ context.Context, id string) (*types.Donation, error) {
	d, ok := f.donations[id]
	if !ok {
		return nil, types.ErrDonationNotFound
	}
	return d, nil
}

func (f *fakeDonations) SetClassification(_ context.Context, id, imageKey, classifiedType string) error {
	if f.err != nil {
		return f.err
	}
	d, ok := f.donations[id]
	if !ok {
		return types.ErrDonationNotFound
	}
	d.ImageKey = optional(imageKey)
	d.ClassifiedType = optional(classifiedType)
	return nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

type fakeClassifier struct{}

func (fakeClassifier) Classify(context.Context, []byte) (types.Classification, error) {
	return types.Classification{Category: "clothes", Confidence: 0.87}, nil
}

type unclassifiedClassifier struct{}

func (unclassifiedClassifier) Classify(context.Context, []byte) (types.Classification, error) {
	return types.Classification{Category: "other", Confidence: 0}, nil
}

type fakeImages struct {
	keys    []string
	deleted []string
}

func (f *fakeImages) UploadImage(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.keys = append(f.keys, key)
	return key, nil
}

func (f *fakeImages) DeleteImage(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func newTestServer(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()

	logger, _ := test.NewNullLogger()
	if deps.Ranker == nil {
		resolver := geo.NewResolver(failingGeocoder{}, time.Second, logger)
		deps.Ranker = ranking.NewComposer(resolver, recipientSource{}, constEstimator{})
	}
	if deps.Matcher == nil {
		deps.Matcher = &fakeMatcher{}
	}
	if deps.Needs == nil {
		deps.Needs = fakeNeeds{}
	}
	if deps.History == nil {
		deps.History = fakeHistory{}
	}
	if deps.Stats == nil {
		deps.Stats = fakeHistory{summary: &types.SummaryStats{}}
	}
	if deps.Donations == nil {
		deps.Donations = &fakeDonations{}
	}
	if deps.Classifier == nil {
		deps.Classifier = fakeClassifier{}
	}

	return New(&types.Config{ServerPort: 0}, logger, deps).Handler()
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestRecipientsGeocoderFailure(t *testing.T) {
	h := newTestServer(t, Dependencies{})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/recipients?type=food&location=Atlantis", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid location", body["error"])
}

func TestRecipientsMissingParams(t *testing.T) {
	h := newTestServer(t, Dependencies{})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/recipients?type=food", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: location", body["error"])
}

func TestRecipientsNoMatches(t *testing.T) {
	logger, _ := test.NewNullLogger()
	resolver := geo.NewResolver(fixedGeocoder{}, time.Second, logger)
	h := newTestServer(t, Dependencies{Ranker: ranking.NewComposer(resolver, recipientSource{}, constEstimator{})})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/recipients?type=food&location=Austin", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No matching recipients found", body["error"])
}

func TestRecipientsRanked(t *testing.T) {
	logger, _ := test.NewNullLogger()
	resolver := geo.NewResolver(fixedGeocoder{}, time.Second, logger)
	source := recipientSource{
		{ID: "far", Name: "Far", DonationType: "food", Urgency: 2, Latitude: 31.27, Longitude: -97.74},
		{ID: "near", Name: "Near", DonationType: "food", Urgency: 2, Latitude: 30.27, Longitude: -97.74},
		{ID: "other", Name: "Other", DonationType: "toys", Urgency: 5, Latitude: 30.27, Longitude: -97.74},
	}
	h := newTestServer(t, Dependencies{Ranker: ranking.NewComposer(resolver, source, constEstimator{})})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/recipients?type=Food&location=Austin", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	recipients := body["recipients"].([]any)
	require.Len(t, recipients, 2)
	assert.Equal(t, "near", recipients[0].(map[string]any)["id"])
	assert.Equal(t, "far", recipients[1].(map[string]any)["id"])
	assert.Equal(t, 0.42, recipients[0].(map[string]any)["confidence"])
	assert.Equal(t, "Austin", body["donor_location"])
	assert.Equal(t, 30.27, body["donor_coordinates"].(map[string]any)["latitude"])
}

func TestTrending(t *testing.T) {
	h := newTestServer(t, Dependencies{Needs: fakeNeeds{counts: []*types.TypeCount{
		{DonationType: "clothes", Count: 4},
		{DonationType: "food", Count: 2},
	}}})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/trending", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Current Donation Needs", body["message"])
	trends := body["trends"].([]any)
	require.Len(t, trends, 2)
	first := trends[0].(map[string]any)
	assert.Equal(t, "Clothes", first["type"])
	assert.Equal(t, "Clothes (requested 4 times)", first["message"])
}

func TestTrendingDegrades(t *testing.T) {
	h := newTestServer(t, Dependencies{Needs: fakeNeeds{err: errors.New("db down")}})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/trending", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Error getting trends", body["message"])
	assert.Empty(t, body["trends"])
}

func TestAddRecipientMessage(t *testing.T) {
	matcher := &fakeMatcher{reg: &matching.Registration{
		Recipient: &types.Recipient{ID: "abc"},
		Estimate:  urgency.Estimate{Urgency: 3.4567, Confidence: 0.6123},
	}}
	h := newTestServer(t, Dependencies{Matcher: matcher})

	req := httptest.NewRequest(http.MethodPost, "/api/add_recipient", strings.NewReader(`{"name":"x"}`))
	rec, body := do(t, h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Recipient added successfully! Urgency level 3.46/5.0 (confidence: 61.23%)", body["message"])
	assert.Equal(t, "abc", body["recipient_id"])
}

func TestAddRecipientInvalidJSON(t *testing.T) {
	h := newTestServer(t, Dependencies{})

	req := httptest.NewRequest(http.MethodPost, "/api/add_recipient", strings.NewReader(`{"name":`))
	rec, body := do(t, h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON data provided", body["error"])
}

func TestDonate(t *testing.T) {
	matcher := &fakeMatcher{match: &types.Match{
		Donation:  &types.Donation{ID: "d1", DonorName: types.AnonymousDonor},
		Recipient: &types.Recipient{ID: "r1", Name: "Grace"},
	}}
	h := newTestServer(t, Dependencies{Matcher: matcher})

	payload := `{"donor_contact":"a@example.com","donation_type":"Clothes","recipient_id":"r1"}`
	rec, body := do(t, h, httptest.NewRequest(http.MethodPost, "/api/donate", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Donation successful", body["message"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "Anonymous Donor", details["donor"])
	assert.Equal(t, "Grace", details["recipient"])
	assert.Equal(t, "Clothes", details["type"])
	assert.Equal(t, "r1", matcher.got.RecipientID)
}

func TestDonateErrorStatuses(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
		msg    string
	}{
		"not found":  {types.NotFoundError("Recipient not found with ID: r9"), http.StatusNotFound, "Recipient not found with ID: r9"},
		"validation": {types.ValidationError("Missing required fields: donor_phone"), http.StatusBadRequest, "Missing required fields: donor_phone"},
		"data": {
			types.NewError(types.KindData, "op", "Database error occurred while processing donation", errors.New("deadlock")),
			http.StatusInternalServerError,
			"Database error occurred while processing donation",
		},
		"external": {
			types.NewError(types.KindExternal, "op", "Failed to store image", errors.New("AccessDenied")),
			http.StatusInternalServerError,
			"Failed to store image",
		},
		"unknown": {errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newTestServer(t, Dependencies{Matcher: &fakeMatcher{err: tc.err}})

			rec, body := do(t, h, httptest.NewRequest(http.MethodPost, "/api/donate", strings.NewReader(`{}`)))

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestHistory(t *testing.T) {
	when := time.Date(2024, 11, 2, 10, 0, 0, 0, time.UTC)
	h := newTestServer(t, Dependencies{
		History: fakeHistory{history: []*types.DonatedRecipient{{
			Name: "Grace", Location: "Austin", DonationType: "food", DonorName: "Ada",
			RecipientContact: "g@example.com", RecipientPhone: "555", DonorContact: "a@example.com",
			PickupLocation: "Main St", TransactionDate: when,
		}}},
		Stats: fakeHistory{stats: []*types.TypeStat{{DonationType: "food", Count: 1, AvgUrgency: 4.1}}},
	})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	tx := body["transactions"].([]any)[0].(map[string]any)
	assert.Equal(t, "Grace", tx["recipient_name"])
	assert.Equal(t, "2024-11-02T10:00:00Z", tx["date"])
	assert.NotContains(t, tx, "recipient_phone")

	stat := body["type_stats"].([]any)[0].(map[string]any)
	assert.Equal(t, "Food", stat["donation_type"])
	assert.Equal(t, 4.1, stat["avg_urgency"])
}

func TestSummaryStatsDegrades(t *testing.T) {
	h := newTestServer(t, Dependencies{Stats: fakeHistory{err: errors.New("db down")}})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/summary_stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["total_donations"])
}

func TestCurrentNeeds(t *testing.T) {
	h := newTestServer(t, Dependencies{Needs: fakeNeeds{needs: []*types.CurrentNeed{
		{DonationType: "food", Urgency: 4.2, Location: "Austin"},
	}}})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/current_needs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["needs"], 1)
}

func multipartRequest(t *testing.T, image []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/classify", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestClassify(t *testing.T) {
	h := newTestServer(t, Dependencies{})

	rec, body := do(t, h, multipartRequest(t, pngHeader, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "clothes", body["category"])
	assert.Equal(t, 0.87, body["confidence"])
	assert.NotContains(t, body, "image_key")
}

func TestClassifyStoresDonationPhoto(t *testing.T) {
	donations := &fakeDonations{donations: map[string]*types.Donation{"d1": {ID: "d1"}}}
	images := new(fakeImages)
	h := newTestServer(t, Dependencies{Donations: donations, Images: images})

	rec, body := do(t, h, multipartRequest(t, pngHeader, map[string]string{"donation_id": "d1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "donation_images/d1.png", body["image_key"])
	assert.Equal(t, []string{"donation_images/d1.png"}, images.keys)
	assert.Equal(t, "clothes", *donations.donations["d1"].ClassifiedType)
}

func TestClassifyWithoutModelAnswerLeavesTypeUnset(t *testing.T) {
	donations := &fakeDonations{donations: map[string]*types.Donation{"d1": {ID: "d1"}}}
	images := new(fakeImages)
	h := newTestServer(t, Dependencies{Donations: donations, Images: images, Classifier: unclassifiedClassifier{}})

	rec, body := do(t, h, multipartRequest(t, pngHeader, map[string]string{"donation_id": "d1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "other", body["category"])
	assert.Equal(t, 0.0, body["confidence"])
	assert.Nil(t, donations.donations["d1"].ClassifiedType)
	require.NotNil(t, donations.donations["d1"].ImageKey)
	assert.Equal(t, "donation_images/d1.png", *donations.donations["d1"].ImageKey)
}

func TestClassifyRemovesImageWhenSaveFails(t *testing.T) {
	donations := &fakeDonations{
		donations: map[string]*types.Donation{"d1": {ID: "d1"}},
		err:       errors.New("connection reset"),
	}
	images := new(fakeImages)
	h := newTestServer(t, Dependencies{Donations: donations, Images: images})

	rec, _ := do(t, h, multipartRequest(t, pngHeader, map[string]string{"donation_id": "d1"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"donation_images/d1.png"}, images.deleted)
}

func TestClassifyUnknownDonation(t *testing.T) {
	h := newTestServer(t, Dependencies{})

	rec, _ := do(t, h, multipartRequest(t, pngHeader, map[string]string{"donation_id": "missing"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassifyRejectsMissingAndNonImage(t *testing.T) {
	h := newTestServer(t, Dependencies{})

	rec, body := do(t, h, multipartRequest(t, nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No image file provided", body["error"])

	rec, _ = do(t, h, multipartRequest(t, []byte("plain text, not a picture"), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndTrailingSlash(t *testing.T) {
	h := newTestServer(t, Dependencies{})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/api/trending/", nil))
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/api/trending", rec.Header().Get("Location"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, Dependencies{})

	do(t, h, httptest.NewRequest(http.MethodGet, "/api/trending", nil))
	rec, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aidhub_http_request_duration_seconds")
}
