package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"prediction":0,"result":"Heart Disease ABSENCE","confidence_percentages":{"heart disease":"20.00%","no heart disease":"80.00%"},"clinical_insights":[]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testOptions(url string) *options {
	return &options{apiURL: url, predictTimeout: time.Second, wakeTimeout: time.Second}
}

func TestRunFields(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runFields(&out))
	assert.Contains(t, out.String(), "Thallium")
	assert.Contains(t, out.String(), "3=Normal")
}

func TestRunPredictPrintsView(t *testing.T) {
	api := fakeAPI(t)
	var out, errOut bytes.Buffer

	err := runPredict(context.Background(), &out, &errOut, testOptions(api.URL),
		map[string]string{"Age": "57", "BP": "400", "Sex": "1"},
		&predictFlags{attempts: 1})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "No Heart Disease")
	assert.Contains(t, out.String(), "80.00%")
	assert.NotContains(t, out.String(), "Clinical Insights")
	assert.Contains(t, errOut.String(), "warning: BP=400")
}

func TestRunPredictRejectsUnknownCode(t *testing.T) {
	api := fakeAPI(t)
	var out, errOut bytes.Buffer

	err := runPredict(context.Background(), &out, &errOut, testOptions(api.URL),
		map[string]string{"Thallium": "5"}, &predictFlags{attempts: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--Thallium")
	assert.Empty(t, out.String())
}

func TestRunPredictGivesUpOnColdService(t *testing.T) {
	var out, errOut bytes.Buffer

	err := runPredict(context.Background(), &out, &errOut, testOptions("http://127.0.0.1:0"),
		map[string]string{"Age": "57"}, &predictFlags{attempts: 2, wait: time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not answering")
	assert.Contains(t, errOut.String(), "Server is starting up")
}
