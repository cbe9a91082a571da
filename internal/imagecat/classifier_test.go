package imagecat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aidhub/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newTestClassifier(t *testing.T, endpoint string, client *http.Client) (*Classifier, *test.Hook) {
	t.Helper()
	m, _ := newDefaultMapper(t)
	logger, hook := test.NewNullLogger()
	return NewClassifier(endpoint, time.Second, m, client, logger), hook
}

func TestClassifierMapsPrediction(t *testing.T) {
	var gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"class_index": 415, "confidence": 0.82}`))
	}))
	defer srv.Close()

	c, _ := newTestClassifier(t, srv.URL, srv.Client())

	got, err := c.Classify(context.Background(), pngBytes)
	require.NoError(t, err)
	assert.Equal(t, types.Classification{Category: "clothes", Confidence: 0.82}, got)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, pngBytes, gotBody)
}

func TestClassifierDowngradesFailures(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"bad json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		},
		"confidence out of range": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"class_index": 410, "confidence": 3}`))
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			c, hook := newTestClassifier(t, srv.URL, srv.Client())

			got, err := c.Classify(context.Background(), pngBytes)
			require.NoError(t, err)
			assert.Equal(t, types.Classification{Category: "other", Confidence: 0}, got)
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, "error classifying image", hook.LastEntry().Message)
		})
	}
}

func TestClassifierWithoutModel(t *testing.T) {
	c, _ := newTestClassifier(t, "", nil)

	got, err := c.Classify(context.Background(), pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "other", got.Category)
	assert.Zero(t, got.Confidence)
}

func TestClassifierRejectsNonImages(t *testing.T) {
	c, _ := newTestClassifier(t, "http://unused.invalid", nil)

	for _, data := range [][]byte{nil, []byte("plain text, not a picture")} {
		_, err := c.Classify(context.Background(), data)
		require.Error(t, err)
		assert.Equal(t, types.KindValidation, types.KindOf(err))
	}
}
