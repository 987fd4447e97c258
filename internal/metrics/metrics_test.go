package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveQuery(t *testing.T) {
	before := testutil.ToFloat64(QueriesTotal.WithLabelValues("tree"))

	ObserveQuery("tree", time.Now())

	after := testutil.ToFloat64(QueriesTotal.WithLabelValues("tree"))
	if after != before+1 {
		t.Errorf("expected tree query counter to grow by 1, got %v -> %v", before, after)
	}
}

func TestObserveFetch(t *testing.T) {
	okBefore := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("pack:test", "ok"))
	errBefore := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("pack:test", "error"))

	ObserveFetch("pack:test", nil)
	ObserveFetch("pack:test", errors.New("unreadable"))
	ObserveFetch("pack:test", errors.New("unreadable"))

	if got := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("pack:test", "ok")); got != okBefore+1 {
		t.Errorf("ok fetches = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("pack:test", "error")); got != errBefore+2 {
		t.Errorf("error fetches = %v, want %v", got, errBefore+2)
	}
}

func TestWriteTextfile(t *testing.T) {
	ObserveQuery("items", time.Now())
	path := filepath.Join(t.TempDir(), "scenelib.prom")

	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		`scenelib_queries_total{kind="items"}`,
		"# TYPE scenelib_query_duration_seconds histogram",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}
