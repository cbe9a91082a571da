package imagecat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aidhub/internal/breaker"
	"aidhub/internal/metrics"
	"aidhub/pkg/types"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
)

// MaxImageBytes bounds uploads accepted for classification.
const MaxImageBytes = 10 << 20

// Prediction is the top-1 output of the generic image model.
type Prediction struct {
	ClassIndex int     `json:"class_index"`
	Confidence float64 `json:"confidence"`
}

// Classifier sends donation photos to an external 1000-class model server and
// maps its answer onto donation categories. It is built once at startup and
// is safe for concurrent use.
type Classifier struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	mapper     *Mapper
	breaker    *gobreaker.CircuitBreaker[*Prediction]
	logger     logrus.FieldLogger
}

// NewClassifier returns a classifier backed by the model server at endpoint.
// With an empty endpoint every image classifies as ("other", 0).
func NewClassifier(endpoint string, timeout time.Duration, mapper *Mapper, httpClient *http.Client, logger logrus.FieldLogger) *Classifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Classifier{
		endpoint:   endpoint,
		httpClient: httpClient,
		timeout:    timeout,
		mapper:     mapper,
		breaker:    breaker.New[*Prediction](breaker.DefaultConfig("classifier"), logger),
		logger:     logger,
	}
}

// Classify returns a validation error when image is not an image. Every other
// failure is logged and reported as ("other", 0).
func (c *Classifier) Classify(ctx context.Context, image []byte) (types.Classification, error) {
	contentType, err := DetectImage(image)
	if err != nil {
		return types.Classification{}, err
	}

	if c.endpoint == "" {
		c.logger.Warn("image classification model not configured")
		return unclassified(), nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prediction, err := c.breaker.Execute(func() (*Prediction, error) {
		return c.predict(ctx, image, contentType)
	})
	if err != nil {
		entry := c.logger.WithError(types.NewError(types.KindExternal, "imagecat.Classify", "model server request failed", err))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			entry.Warn("classifier circuit open")
		} else {
			entry.Error("error classifying image")
		}
		return unclassified(), nil
	}

	result := c.mapper.Classify(prediction.ClassIndex, prediction.Confidence)
	metrics.ClassificationsTotal.WithLabelValues(result.Category).Inc()

	return result, nil
}

func (c *Classifier) predict(ctx context.Context, image []byte, contentType string) (*Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, string(body))
	}

	prediction := new(Prediction)
	if err := json.NewDecoder(resp.Body).Decode(prediction); err != nil {
		return nil, fmt.Errorf("decoding prediction: %w", err)
	}

	if prediction.Confidence < 0 || prediction.Confidence > 1 {
		return nil, fmt.Errorf("prediction confidence %f out of range", prediction.Confidence)
	}

	return prediction, nil
}

// DetectImage sniffs the content type of data and rejects anything that is not an image.
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", types.ValidationError("No image file provided")
	}

	if len(data) > MaxImageBytes {
		return "", types.ValidationError("Image file too large")
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", types.ValidationError(fmt.Sprintf("Unsupported file type %s", mime.String()))
	}

	return mime.String(), nil
}

func unclassified() types.Classification {
	return types.Classification{Category: types.CategoryOther, Confidence: 0}
}
