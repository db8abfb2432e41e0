package chart_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/sensorboard/internal/adapters/chart"
	"github.com/okian/sensorboard/internal/domain/status"
)

func TestPieRenderer(t *testing.T) {
	convey.Convey("Given a pie renderer on an empty surface", t, func() {
		surface := chart.NewSurface()
		r, err := chart.NewPieRenderer(surface, chart.WithSize(320, 320))
		convey.So(err, convey.ShouldBeNil)
		convey.So(surface.Empty(), convey.ShouldBeTrue)

		ds := status.DatasetFrom(status.Snapshot{Normal: 10, Warning: 2, Offline: 1})

		convey.Convey("When a dataset is rendered", func() {
			h, err := r.Render(context.Background(), ds)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then an SVG frame is on the surface", func() {
				f, ok := surface.Frame()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(f.ContentType, convey.ShouldEqual, chart.ContentTypeSVG)
				convey.So(bytes.Contains(f.Data, []byte("<svg")), convey.ShouldBeTrue)
				convey.So(f.Dataset.Equal(ds), convey.ShouldBeTrue)
				convey.So(h.Dataset().Values, convey.ShouldResemble, []int{10, 2, 1, 0})
			})

			convey.Convey("Then destroying the handle clears the surface once", func() {
				convey.So(h.Destroy(), convey.ShouldBeNil)
				convey.So(surface.Empty(), convey.ShouldBeTrue)
				convey.So(h.Destroy(), convey.ShouldBeNil)
			})

			convey.Convey("Then an old handle cannot clear a newer chart", func() {
				h2, err := r.Render(context.Background(), ds)
				convey.So(err, convey.ShouldBeNil)
				convey.So(h.Destroy(), convey.ShouldBeNil)
				convey.So(surface.Empty(), convey.ShouldBeFalse)
				convey.So(h2.Destroy(), convey.ShouldBeNil)
				convey.So(surface.Empty(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the same dataset is rendered twice", func() {
			h1, err := r.Render(context.Background(), ds)
			convey.So(err, convey.ShouldBeNil)
			h2, err := r.Render(context.Background(), status.DatasetFrom(status.Snapshot{Normal: 10, Warning: 2, Offline: 1}))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then both handles carry equal datasets", func() {
				convey.So(h1.Dataset().Equal(h2.Dataset()), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When every count is zero", func() {
			_, err := r.Render(context.Background(), status.DatasetFrom(status.Snapshot{}))

			convey.Convey("Then a placeholder chart is drawn", func() {
				convey.So(err, convey.ShouldBeNil)
				f, ok := surface.Frame()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(bytes.Contains(f.Data, []byte("<svg")), convey.ShouldBeTrue)
				convey.So(f.Dataset.Total(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the dataset is inconsistent", func() {
			bad := ds
			bad.Colors = bad.Colors[:2]
			_, err := r.Render(context.Background(), bad)

			convey.Convey("Then the error wraps ErrRender and nothing is drawn", func() {
				convey.So(errors.Is(err, chart.ErrRender), convey.ShouldBeTrue)
				convey.So(errors.Is(err, chart.ErrInvalidDataset), convey.ShouldBeTrue)
				convey.So(surface.Empty(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a color is not hex", func() {
			bad := status.DatasetFrom(status.Snapshot{Normal: 1})
			bad.Colors[0] = "green"
			_, err := r.Render(context.Background(), bad)
			convey.So(errors.Is(err, chart.ErrRender), convey.ShouldBeTrue)
		})

		convey.Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := r.Render(ctx, ds)
			convey.So(errors.Is(err, chart.ErrRender), convey.ShouldBeTrue)
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given PNG output", t, func() {
		surface := chart.NewSurface()
		r, err := chart.NewPieRenderer(surface, chart.WithFormat(chart.FormatPNG))
		convey.So(err, convey.ShouldBeNil)

		_, err = r.Render(context.Background(), status.DatasetFrom(status.Snapshot{Normal: 3, Disabled: 1}))
		convey.So(err, convey.ShouldBeNil)

		f, _ := surface.Frame()
		convey.So(f.ContentType, convey.ShouldEqual, chart.ContentTypePNG)
		convey.So(bytes.HasPrefix(f.Data, []byte("\x89PNG")), convey.ShouldBeTrue)
	})

	convey.Convey("Given bad construction arguments", t, func() {
		_, err := chart.NewPieRenderer(nil)
		convey.So(errors.Is(err, chart.ErrNilSurface), convey.ShouldBeTrue)

		_, err = chart.NewPieRenderer(chart.NewSurface(), chart.WithFormat("gif"))
		convey.So(errors.Is(err, chart.ErrUnsupportedFormat), convey.ShouldBeTrue)
	})
}

func TestSurface(t *testing.T) {
	convey.Convey("Given a surface", t, func() {
		s := chart.NewSurface()

		convey.Convey("Then versions grow with every draw", func() {
			v1 := s.Draw([]byte("a"), "text/plain", status.Dataset{})
			v2 := s.Draw([]byte("b"), "text/plain", status.Dataset{})
			convey.So(v2, convey.ShouldBeGreaterThan, v1)
			convey.So(s.Clear(v1), convey.ShouldBeFalse)
			convey.So(s.Clear(v2), convey.ShouldBeTrue)
			_, ok := s.Frame()
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then frames are copies", func() {
			s.Draw([]byte("abc"), "text/plain", status.Dataset{})
			f, _ := s.Frame()
			f.Data[0] = 'z'
			g, _ := s.Frame()
			convey.So(string(g.Data), convey.ShouldEqual, "abc")
		})
	})
}
