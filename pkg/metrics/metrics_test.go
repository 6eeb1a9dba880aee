package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigslides/pkg/layout"
)

func truncatedSet() layout.SlideSet {
	return layout.SlideSet{
		Slides:    make([]layout.Slide, 9),
		Truncated: true,
		Warnings: []layout.Warning{
			{Kind: layout.WarningOversize, ItemIndex: 3, Height: 900, Budget: 872},
			{Kind: layout.WarningSlideCountExceeded, Budget: 9, DroppedSlides: 2, DroppedGigs: 14},
		},
	}
}

func TestObserveBuild(t *testing.T) {
	r := New()
	r.ObserveBuild("stkilda", 95, truncatedSet())
	r.ObserveBuild("fitzroy", 4, layout.SlideSet{Slides: make([]layout.Slide, 1)})

	assert.Equal(t, 95.0, testutil.ToFloat64(r.gigsFetched.WithLabelValues("stkilda")))
	assert.Equal(t, 9.0, testutil.ToFloat64(r.slidesPacked.WithLabelValues("stkilda")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.oversize.WithLabelValues("stkilda")))
	assert.Equal(t, 14.0, testutil.ToFloat64(r.dropped.WithLabelValues("stkilda")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.truncated.WithLabelValues("stkilda")))

	assert.Equal(t, 0.0, testutil.ToFloat64(r.truncated.WithLabelValues("fitzroy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.dropped.WithLabelValues("fitzroy")))
}

func TestObservePublish(t *testing.T) {
	r := New()
	r.ObservePublish("stkilda", StatusPublished)
	r.ObservePublish("stkilda", StatusFailed)
	r.ObservePublish("stkilda", StatusFailed)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.publish.WithLabelValues("stkilda", StatusPublished)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.publish.WithLabelValues("stkilda", StatusFailed)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.publish))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveBuild("stkilda", 10, layout.SlideSet{Slides: make([]layout.Slide, 2)})

	path := filepath.Join(t.TempDir(), "gigslides.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gigslides_slides_packed{region="stkilda"} 2`)
	assert.Contains(t, string(data), "gigslides_run_duration_seconds")
}

func TestWriteTextfileEmptyPath(t *testing.T) {
	assert.NoError(t, New().WriteTextfile(""))
}
