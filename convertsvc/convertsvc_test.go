package convertsvc

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OSVTAC/osv-data-converter/status"
	"github.com/labstack/echo"
)

func postContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/conversions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func waitIdle(t *testing.T, h *Handler) {
	deadline := time.Now().Add(5 * time.Second)
	for {
		st, _, _ := h.snapshot()
		if st == status.Idle {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("conversion run did not finish in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGetReportsIdle(t *testing.T) {
	h := New(".", nil, "")
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/conversions", nil)
	rec := httptest.NewRecorder()
	if err := h.Get(e.NewContext(req, rec)); err != nil {
		t.Fatalf("expected error nil on a status request, got %q", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected a JSON body, got %q", err)
	}
	if body["statusText"] != "System is idle" {
		t.Errorf("expected the idle status text, got %q", body["statusText"])
	}
	if body["errorMessage"] != "" {
		t.Errorf("expected an empty error message, got %q", body["errorMessage"])
	}
}

func TestPostRejectsInvalidBody(t *testing.T) {
	h := New(".", nil, "")
	c, rec := postContext(echo.New(), "INVALID REQUEST BODY")
	if err := h.Post(c); err != nil {
		t.Fatalf("expected error nil when posting an invalid body, got %q", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	st, _, _ := h.snapshot()
	if st != status.Idle {
		t.Errorf("expected the handler to stay idle, got %d", st)
	}
}

func TestPostRequiresSourceAndProfile(t *testing.T) {
	h := New(".", nil, "")
	c, rec := postContext(echo.New(), `{"source": "testdata/export"}`)
	if err := h.Post(c); err != nil {
		t.Fatalf("expected error nil when posting an incomplete body, got %q", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPostRefusedWhileRunning(t *testing.T) {
	h := New(".", nil, "")
	h.setStatus(status.Converting)
	c, rec := postContext(echo.New(), `{"source": "testdata/export", "profile": "testdata/profile.yaml"}`)
	if err := h.Post(c); err != nil {
		t.Fatalf("expected error nil when posting while busy, got %q", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestPostRunsConversion(t *testing.T) {
	baseDir, err := ioutil.TempDir("", "convertsvc")
	if err != nil {
		t.Fatalf("expected error nil when creating a temporary directory, got %q", err)
	}
	defer os.RemoveAll(baseDir)
	h := New(baseDir, nil, "")
	c, rec := postContext(echo.New(), `{"source": "testdata/export", "profile": "testdata/profile.yaml"}`)
	if err := h.Post(c); err != nil {
		t.Fatalf("expected error nil when dispatching a conversion, got %q", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected a JSON body with the run ID, got %q", err)
	}
	runID := body["runId"]
	if runID == "" {
		t.Fatal("expected a run ID, got an empty string")
	}
	waitIdle(t, h)
	_, errMessage, _ := h.snapshot()
	if errMessage != "" {
		t.Fatalf("expected the run to finish without error, got %q", errMessage)
	}
	b, err := ioutil.ReadFile(filepath.Join(baseDir, runID, "btpct.tsv"))
	if err != nil {
		t.Fatalf("expected to read the converted btpct table, got %q", err)
	}
	want := "ballot_type\tprecinct_ids\n005\t1101 1102\n005D\t1102\n"
	if string(b) != want {
		t.Errorf("expected btpct content %q, got %q", want, string(b))
	}
}

func TestPostReportsRunFailure(t *testing.T) {
	baseDir, err := ioutil.TempDir("", "convertsvc")
	if err != nil {
		t.Fatalf("expected error nil when creating a temporary directory, got %q", err)
	}
	defer os.RemoveAll(baseDir)
	h := New(baseDir, nil, "")
	c, rec := postContext(echo.New(), `{"source": "testdata/export", "profile": "testdata/missing.yaml"}`)
	if err := h.Post(c); err != nil {
		t.Fatalf("expected error nil when dispatching a conversion, got %q", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	waitIdle(t, h)
	_, errMessage, _ := h.snapshot()
	if errMessage == "" {
		t.Error("expected the run error to be reported, got an empty message")
	}
}
