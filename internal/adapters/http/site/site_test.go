package site_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sensorboard/internal/adapters/backend"
	"github.com/okian/sensorboard/internal/adapters/http/site"
	"github.com/okian/sensorboard/internal/domain/status"
	"github.com/okian/sensorboard/internal/refresh"
	"github.com/okian/sensorboard/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

type fakeBackend struct {
	err error
}

func (f *fakeBackend) GetActiveSensors(context.Context) ([]backend.Sensor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []backend.Sensor{{SensorID: "s-1", Name: "Greenhouse", Location: "north", Status: "active", Data: map[string]float64{"temperature": 21.5}}}, nil
}

func (f *fakeBackend) GetSubscriptions(context.Context) ([]backend.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []backend.Subscription{{SensorName: "greenhouse", Topic: "sensors/greenhouse", BrokerAddress: "mqtt.local", BrokerPort: 1883, SensorTypes: []string{"temperature", "humidity"}}}, nil
}

func (f *fakeBackend) GetAlerts(context.Context) ([]backend.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []backend.Alert{
		{AlertID: "a-1", SensorID: "s-1", AlertType: "threshold breach", Message: "temperature too high", Status: "new"},
		{AlertID: "a-2", SensorID: "s-1", AlertType: "gone", Message: "deleted alert", IsDeleted: true},
	}, nil
}

type fakeChart struct {
	has bool
}

func (f *fakeChart) State() refresh.State    { return refresh.Refreshing }
func (f *fakeChart) ActiveSessions() int     { return 1 }
func (f *fakeChart) Interval() time.Duration { return 3 * time.Second }
func (f *fakeChart) Latest() (status.Snapshot, time.Time, bool) {
	return status.Snapshot{Normal: 10, Warning: 2, Offline: 1}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), f.has
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRoutes(t *testing.T) {
	Convey("Given the route table", t, func() {
		routes := site.Routes()

		Convey("Then it lists four named views", func() {
			So(len(routes), ShouldEqual, 4)
			paths := map[string]string{}
			for _, r := range routes {
				paths[r.Name] = r.Path
			}
			So(paths, ShouldResemble, map[string]string{
				"Dashboard":     "/",
				"Sensors":       "/sensors",
				"Subscriptions": "/subscriptions",
				"Alerts":        "/alerts",
			})
		})
	})
}

func TestViews(t *testing.T) {
	Convey("Given registered views", t, func() {
		chart := &fakeChart{has: true}
		h, err := site.NewHandler(&fakeBackend{}, chart)
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		So(site.Register(mux, h), ShouldBeNil)

		Convey("Then the dashboard shows the chart and counts", func() {
			w := get(mux, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			body := w.Body.String()
			So(body, ShouldContainSubstring, `src="/api/chart"`)
			So(body, ShouldContainSubstring, `If-None-Match`)
			So(body, ShouldNotContainSubstring, `/api/chart?`)
			So(body, ShouldContainSubstring, "Warning")
			So(body, ShouldContainSubstring, "every 3000 ms")
			So(body, ShouldContainSubstring, "checked")
		})

		Convey("Then the dashboard copes with no data", func() {
			chart.has = false
			w := get(mux, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "No status data yet.")
		})

		Convey("Then the sensors view lists sensors", func() {
			w := get(mux, "/sensors")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Greenhouse")
			So(w.Body.String(), ShouldContainSubstring, "temperature: 21.5")
		})

		Convey("Then the subscriptions view lists topics", func() {
			w := get(mux, "/subscriptions")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "sensors/greenhouse")
			So(w.Body.String(), ShouldContainSubstring, "temperature, humidity")
		})

		Convey("Then the alerts view hides deleted alerts", func() {
			w := get(mux, "/alerts")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "temperature too high")
			So(w.Body.String(), ShouldNotContainSubstring, "deleted alert")
		})

		Convey("Then static assets are served", func() {
			w := get(mux, "/static/site.css")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then unknown paths are not found", func() {
			So(get(mux, "/settings").Code, ShouldEqual, http.StatusNotFound)
			So(get(mux, "/sensors/extra").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a failing backend", t, func() {
		h, err := site.NewHandler(&fakeBackend{err: &backend.NetworkError{Op: "test", StatusCode: 500, Message: "db down"}}, &fakeChart{})
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		So(site.Register(mux, h), ShouldBeNil)

		Convey("Then data views render an error page", func() {
			w := get(mux, "/alerts")
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(w.Body.String(), ShouldContainSubstring, "db down")
			So(w.Body.String(), ShouldContainSubstring, "No alerts.")
		})
	})

	Convey("Given a nil mux", t, func() {
		h, err := site.NewHandler(&fakeBackend{}, &fakeChart{})
		So(err, ShouldBeNil)
		So(errors.Is(site.Register(nil, h), site.ErrNilMux), ShouldBeTrue)
	})
}
