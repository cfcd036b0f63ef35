package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/diccas/internal/config"
	"github.com/dgallion1/diccas/internal/metrics"
	"github.com/dgallion1/diccas/internal/normalize"
	"github.com/dgallion1/diccas/internal/pipeline"
	"github.com/dgallion1/diccas/internal/segment"
	"github.com/dgallion1/diccas/internal/tagger"
	"github.com/dgallion1/diccas/internal/walker"
)

const apiKey = "test-key"

const doc = `<TEI><text><body>
<div type="book" n="1"><head><title>Kitab</title></head>
  <p><gloss>He said.</gloss>قال <term type="catastrophe" translation="plague">طاعون</term>.</p>
</div></body></text></TEI>`

func newTestServer(t *testing.T, stats *tagger.LatencyStats) *httptest.Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	cfg := config.Config{
		APIKey:         apiKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		Output:         config.OutputConfig{Dir: t.TempDir(), Name: "corpus_DiCCAS"},
	}
	w := walker.New(normalize.New(normalize.DefaultOptions()), &tagger.Rule{})
	conv := pipeline.NewConverter(w, segment.Paragraph, log)
	m := metrics.New()
	orch := pipeline.NewOrchestrator(cfg, conv, m, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	ts := httptest.NewServer(NewServer(orch, stats, m, log, cfg))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func upload(t *testing.T, base, filename, content string, fields map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return do(t, http.MethodPost, base+"/api/convert", &buf, mw.FormDataContentType())
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestConvertLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := upload(t, ts.URL, "../../kitab.xml", doc, map[string]string{"name": "kitab"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	body := decode(t, resp)
	jobID, _ := body["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, "/api/convert/"+jobID, body["poll_url"])

	var status map[string]any
	require.Eventually(t, func() bool {
		status = decode(t, do(t, http.MethodGet, ts.URL+"/api/convert/"+jobID, nil, ""))
		return status["status"] == string(pipeline.StatusCompleted)
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "kitab.xml", status["filename"])
	assert.Equal(t, "kitab", status["name"])

	resp = do(t, http.MethodGet, ts.URL+"/api/convert/"+jobID+"/files/vert", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "kitab.vert")
	vert, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(vert), `<p translation="He said.">`)
	assert.Contains(t, string(vert), "طاعون\t_\tطاعون\tcatastrophe\tplague\t_")

	resp = do(t, http.MethodGet, ts.URL+"/api/convert/"+jobID+"/report", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")

	resp = do(t, http.MethodGet, ts.URL+"/api/convert/"+jobID+"/files/pdf", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConvertRejects(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := upload(t, ts.URL, "notes.docx", "x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/convert/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/convert/missing", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublicEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])

	resp2, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	out, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "diccas_queue_depth"))
}

func TestTaggerStats(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := do(t, http.MethodGet, ts.URL+"/api/stats/tagger", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	stats := tagger.NewLatencyStats(time.Hour)
	stats.Record(12)
	ts = newTestServer(t, stats)
	resp = do(t, http.MethodGet, ts.URL+"/api/stats/tagger", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	s, _ := body["stats"].(map[string]any)
	assert.Equal(t, float64(1), s["requests"])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "kitab.xml", sanitizeFilename("../../kitab.xml"))
	assert.Equal(t, "a.xml", sanitizeFilename(`C:\texts\a.xml`))
	assert.Equal(t, "unnamed", sanitizeFilename(""))
	assert.Equal(t, "_", sanitizeFilename(".."))
}
