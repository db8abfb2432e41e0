// Package backend is the REST client for the SDMM sensor-monitoring backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/sensorboard/internal/domain/status"
	"github.com/okian/sensorboard/pkg/logger"
	"github.com/okian/sensorboard/pkg/metrics"
)

// Client defaults.
const (
	defaultTimeout     = 5 * time.Second
	maxErrorBodyBytes  = 4 << 10
	historyTimeLayout  = "2006-01-02T15:04:05.000Z"
	requestIDHeader    = "X-Request-ID"
	contentTypeJSON    = "application/json"
	subscriptionsFile  = "subscriptions.yaml"
	subscriptionsField = "file"
)

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// New creates a client for baseURL, which must include the /api prefix.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", ErrInvalidArgument, baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		timeout: defaultTimeout,
		logger:  logger.Get().Named("backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetSensorStatusSummary fetches the current count of sensors per status category.
func (c *Client) GetSensorStatusSummary(ctx context.Context) (status.Snapshot, error) {
	const op = "backend.sensor_status_summary"
	var body summaryBody
	if err := c.getJSON(ctx, op, nil, &body, "dashboard", "sensor-status-summary"); err != nil {
		return status.Snapshot{}, err
	}
	s, err := body.snapshot()
	if err != nil {
		return status.Snapshot{}, &MalformedResponseError{Op: op, Err: err}
	}
	if err := s.Validate(); err != nil {
		return status.Snapshot{}, &MalformedResponseError{Op: op, Err: err}
	}
	return s, nil
}

// GetActiveSensors lists active sensors with their latest readings.
func (c *Client) GetActiveSensors(ctx context.Context) ([]Sensor, error) {
	var out []Sensor
	if err := c.getJSON(ctx, "backend.active_sensors", nil, &out, "sensor_board", "sensors"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSensorStatus returns the latest status string for one sensor.
func (c *Client) GetSensorStatus(ctx context.Context, sensorID string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "backend.sensor_status", nil, &out, "sensor_board", sensorID, "status"); err != nil {
		return "", err
	}
	return out.Status, nil
}

// GetSensorThresholds returns the stored thresholds for a sensor.
func (c *Client) GetSensorThresholds(ctx context.Context, sensorID string) (Thresholds, error) {
	var out Thresholds
	if err := c.getJSON(ctx, "backend.sensor_thresholds", nil, &out, "sensor_board", sensorID, "thresholds"); err != nil {
		return Thresholds{}, err
	}
	return out, nil
}

// UpdateSensorThresholds replaces the thresholds of a sensor.
func (c *Client) UpdateSensorThresholds(ctx context.Context, sensorID string, thresholds map[string]any) error {
	if thresholds == nil {
		return fmt.Errorf("%w: thresholds must not be nil", ErrInvalidArgument)
	}
	body := map[string]any{"thresholds": thresholds}
	return c.sendJSON(ctx, "backend.update_thresholds", http.MethodPut, body, "sensor_board", sensorID, "thresholds")
}

// QueryHistoricalData returns readings of a sensor between start and end.
func (c *Client) QueryHistoricalData(ctx context.Context, sensorID string, start, end time.Time) (History, error) {
	q := url.Values{}
	q.Set("start_time", start.UTC().Format(historyTimeLayout))
	q.Set("end_time", end.UTC().Format(historyTimeLayout))
	var out History
	if err := c.getJSON(ctx, "backend.history", q, &out, "sensor_board", sensorID, "history"); err != nil {
		return History{}, err
	}
	return out, nil
}

// GetSubscriptions lists the configured MQTT subscriptions.
func (c *Client) GetSubscriptions(ctx context.Context) ([]Subscription, error) {
	var out []Subscription
	if err := c.getJSON(ctx, "backend.subscriptions", nil, &out, "subscriptions"); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSubscription adds a subscription. A duplicate name or endpoint matches ErrConflict.
func (c *Client) CreateSubscription(ctx context.Context, s Subscription) error {
	if s.SensorName == "" || s.Topic == "" || s.BrokerAddress == "" {
		return fmt.Errorf("%w: sensor_name, topic and broker_address are required", ErrInvalidArgument)
	}
	return c.sendJSON(ctx, "backend.create_subscription", http.MethodPost, s, "subscriptions")
}

// UpdateSubscription updates the subscription registered under sensorName.
func (c *Client) UpdateSubscription(ctx context.Context, sensorName string, s Subscription) error {
	return c.sendJSON(ctx, "backend.update_subscription", http.MethodPut, s, "subscriptions", sensorName)
}

// DeleteSubscription removes the subscription registered under sensorName.
func (c *Client) DeleteSubscription(ctx context.Context, sensorName string) error {
	return c.sendJSON(ctx, "backend.delete_subscription", http.MethodDelete, nil, "subscriptions", sensorName)
}

// UploadSubscriptionsFile replaces the backend's subscription file with r.
// The backend only accepts names ending in .yaml.
func (c *Client) UploadSubscriptionsFile(ctx context.Context, filename string, r io.Reader) error {
	const op = "backend.upload_subscriptions"
	if !strings.HasSuffix(filename, ".yaml") {
		return fmt.Errorf("%w: %q is not a .yaml file", ErrInvalidArgument, filename)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(subscriptionsField, filename)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = c.roundTrip(ctx, op, http.MethodPost, nil, &buf, mw.FormDataContentType(), "subscriptions", "upload")
	return err
}

// UploadSubscriptions encodes subs as the backend's YAML document and uploads it.
func (c *Client) UploadSubscriptions(ctx context.Context, subs []Subscription) error {
	data, err := yaml.Marshal(subscriptionFile{Subscriptions: subs})
	if err != nil {
		return fmt.Errorf("backend.upload_subscriptions: %w", err)
	}
	return c.UploadSubscriptionsFile(ctx, subscriptionsFile, bytes.NewReader(data))
}

// DownloadSubscriptionsFile fetches the raw YAML subscription file and its parsed form.
func (c *Client) DownloadSubscriptionsFile(ctx context.Context) ([]Subscription, []byte, error) {
	const op = "backend.download_subscriptions"
	raw, err := c.roundTrip(ctx, op, http.MethodGet, nil, nil, "", "subscriptions", "download")
	if err != nil {
		return nil, nil, err
	}
	var doc subscriptionFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, raw, &MalformedResponseError{Op: op, Err: err}
	}
	return doc.Subscriptions, raw, nil
}

// GetAlerts lists all alerts.
func (c *Client) GetAlerts(ctx context.Context) ([]Alert, error) {
	var out []Alert
	if err := c.getJSON(ctx, "backend.alerts", nil, &out, "alerts"); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAlert soft-deletes an alert.
func (c *Client) DeleteAlert(ctx context.Context, alertID string) error {
	return c.sendJSON(ctx, "backend.delete_alert", http.MethodDelete, nil, "alerts", alertID)
}

// AcknowledgeAlert marks an alert acknowledged. Resolved alerts answer 409 (ErrConflict).
func (c *Client) AcknowledgeAlert(ctx context.Context, alertID string) error {
	return c.sendJSON(ctx, "backend.acknowledge_alert", http.MethodPut, nil, "alerts", alertID, "acknowledge")
}

// ResolveAlert marks an alert resolved.
func (c *Client) ResolveAlert(ctx context.Context, alertID string) error {
	return c.sendJSON(ctx, "backend.resolve_alert", http.MethodPut, nil, "alerts", alertID, "resolve")
}

// ClearAllAlerts soft-deletes every alert.
func (c *Client) ClearAllAlerts(ctx context.Context) error {
	return c.sendJSON(ctx, "backend.clear_alerts", http.MethodDelete, nil, "alerts", "clear")
}

// GetSensor returns one sensor record.
func (c *Client) GetSensor(ctx context.Context, sensorID string) (Sensor, error) {
	var out Sensor
	if err := c.getJSON(ctx, "backend.sensor", nil, &out, "sensors", sensorID); err != nil {
		return Sensor{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, op string, q url.Values, out any, segments ...string) error {
	raw, err := c.roundTrip(ctx, op, http.MethodGet, q, nil, "", segments...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &MalformedResponseError{Op: op, Err: err}
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, op, method string, body any, segments ...string) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		r = bytes.NewReader(data)
	}
	_, err := c.roundTrip(ctx, op, method, nil, r, contentTypeJSON, segments...)
	return err
}

// roundTrip performs one request and returns the body of a 2xx answer.
func (c *Client) roundTrip(ctx context.Context, op, method string, q url.Values, body io.Reader, contentType string, segments ...string) ([]byte, error) {
	for _, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("%s: %w: empty path segment", op, ErrInvalidArgument)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL.JoinPath(segments...)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if contentType == "" {
		contentType = contentTypeJSON
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentTypeJSON)
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	endpoint := strings.TrimPrefix(op, "backend.")
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordBackendRequest(endpoint, method, "error", time.Since(start))
		c.logger.Debug(ctx, "backend request failed",
			logger.String("op", op),
			logger.String("requestID", reqID),
			logger.Error(err),
		)
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	metrics.RecordBackendRequest(endpoint, method, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(ctx, op, reqID, resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	return raw, nil
}

func (c *Client) statusError(ctx context.Context, op, reqID string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	var eb errorBody
	msg := ""
	if err := json.Unmarshal(raw, &eb); err == nil {
		msg = eb.Error
		if msg == "" {
			msg = eb.Message
		}
	}
	c.logger.Debug(ctx, "backend returned error status",
		logger.String("op", op),
		logger.String("requestID", reqID),
		logger.Int("status", resp.StatusCode),
		logger.String("message", msg),
	)
	return &NetworkError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    msg,
		Err:        errors.New(http.StatusText(resp.StatusCode)),
	}
}
