package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/cottus/pkg/controller/http"
	"github.com/secmon-lab/cottus/pkg/repository/memory"
	"github.com/secmon-lab/cottus/pkg/service/blob"
	"github.com/secmon-lab/cottus/pkg/usecase"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	uc := usecase.New(memory.New(), usecase.WithBlobStore(blob.NewMemory()))
	return httpctrl.New(uc)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(v)
	default:
		data, err := json.Marshal(v)
		gt.NoError(t, err).Required()
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp map[string]any
	if rec.Body.Len() > 0 {
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	}
	return rec.Code, resp
}

func upload(t *testing.T, h http.Handler, path, fileName, content string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	gt.NoError(t, err).Required()
	_, err = fw.Write([]byte(content))
	gt.NoError(t, err).Required()
	gt.NoError(t, mw.Close()).Required()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	return rec.Code, resp
}

func TestHealth(t *testing.T) {
	code, resp := doJSON(t, newServer(t), http.MethodGet, "/health", nil)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, resp["status"]).Equal("ok")
}

func TestScore(t *testing.T) {
	h := newServer(t)

	testCases := []struct {
		name   string
		body   any
		status int
		score  float64
		level  string
	}{
		{
			name:   "maximum",
			body:   map[string]any{"severity": "critical", "likelihood": "almost_certain"},
			status: http.StatusOK,
			score:  25,
			level:  "critical",
		},
		{
			name:   "case insensitive",
			body:   map[string]any{"severity": "High", "likelihood": "Likely"},
			status: http.StatusOK,
			score:  16,
			level:  "high",
		},
		{
			name:   "unknown severity",
			body:   map[string]any{"severity": "huge", "likelihood": "likely"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			body:   map[string]any{"severity": "low", "likelihood": "rare", "impact": 3},
			status: http.StatusBadRequest,
		},
		{
			name:   "broken json",
			body:   "{",
			status: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := doJSON(t, h, http.MethodPost, "/api/score", tc.body)
			gt.Value(t, code).Equal(tc.status)
			if tc.status != http.StatusOK {
				gt.Map(t, resp).HasKey("error")
				return
			}
			gt.Value(t, resp["score"]).Equal(tc.score)
			gt.Value(t, resp["level"]).Equal(tc.level)
			gt.Value(t, resp["band"]).Nil()
		})
	}

	t.Run("inline band", func(t *testing.T) {
		code, resp := doJSON(t, h, http.MethodPost, "/api/score", map[string]any{
			"severity":   "critical",
			"likelihood": "almost_certain",
			"bands":      []map[string]any{{"label": "Red", "min_score": 20, "max_score": 25}},
		})
		gt.Value(t, code).Equal(http.StatusOK)
		band := resp["band"].(map[string]any)
		gt.Value(t, band["label"]).Equal("Red")
	})

	t.Run("unknown appetite", func(t *testing.T) {
		code, _ := doJSON(t, h, http.MethodPost, "/api/score", map[string]any{
			"severity": "low", "likelihood": "rare", "appetite_id": "missing",
		})
		gt.Value(t, code).Equal(http.StatusNotFound)
	})
}

func TestResidual(t *testing.T) {
	h := newServer(t)

	t.Run("implemented control", func(t *testing.T) {
		code, resp := doJSON(t, h, http.MethodPost, "/api/residual", map[string]any{
			"severity":   "critical",
			"likelihood": "almost_certain",
			"controls":   []map[string]any{{"status": "implemented", "effectiveness_estimate": 100}},
		})
		gt.Value(t, code).Equal(http.StatusOK)
		gt.Value(t, resp["score"]).Equal(float64(4))
		gt.Value(t, resp["inherent_score"]).Equal(float64(25))
		gt.Value(t, resp["level"]).Equal("low")
	})

	t.Run("no controls keeps inherent score", func(t *testing.T) {
		code, resp := doJSON(t, h, http.MethodPost, "/api/residual", map[string]any{
			"severity": "high", "likelihood": "likely",
		})
		gt.Value(t, code).Equal(http.StatusOK)
		gt.Value(t, resp["score"]).Equal(float64(16))
	})

	t.Run("effectiveness out of range", func(t *testing.T) {
		code, _ := doJSON(t, h, http.MethodPost, "/api/residual", map[string]any{
			"severity":   "high",
			"likelihood": "likely",
			"controls":   []map[string]any{{"status": "implemented", "effectiveness_estimate": 150}},
		})
		gt.Value(t, code).Equal(http.StatusBadRequest)
	})
}

func TestSuggestMappings(t *testing.T) {
	code, resp := doJSON(t, newServer(t), http.MethodPost, "/api/mappings/suggest", map[string]any{
		"columns": []string{"Control Code", "Title", "Notes"},
	})
	gt.Value(t, code).Equal(http.StatusOK)

	mappings := resp["mappings"].([]any)
	gt.Array(t, mappings).Length(3)
	gt.Value(t, mappings[0].(map[string]any)["target_field"]).Equal("control_code")
	gt.Value(t, mappings[1].(map[string]any)["target_field"]).Equal("title")
	gt.Value(t, mappings[2].(map[string]any)["target_field"]).Equal("")
}

func TestAppetites(t *testing.T) {
	h := newServer(t)

	code, created := doJSON(t, h, http.MethodPost, "/api/appetites", map[string]any{
		"name":      "Corporate",
		"tolerance": 9,
		"bands": []map[string]any{
			{"label": "Acceptable", "min_score": 1, "max_score": 9},
			{"label": "Unacceptable", "min_score": 10, "max_score": 25},
		},
	})
	gt.Value(t, code).Equal(http.StatusCreated)
	id := created["id"].(string)
	gt.Array(t, created["bands"].([]any)).Length(2)

	code, _ = doJSON(t, h, http.MethodPut, "/api/appetites/"+id, map[string]any{"name": "Corporate v2"})
	gt.Value(t, code).Equal(http.StatusOK)

	code, got := doJSON(t, h, http.MethodGet, "/api/appetites/"+id, nil)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, got["name"]).Equal("Corporate v2")

	code, list := doJSON(t, h, http.MethodGet, "/api/appetites", nil)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Array(t, list["appetites"].([]any)).Length(1)

	code, _ = doJSON(t, h, http.MethodPost, "/api/appetites", map[string]any{
		"name":  "broken",
		"bands": []map[string]any{{"label": "x", "min_score": 10, "max_score": 5}},
	})
	gt.Value(t, code).Equal(http.StatusBadRequest)

	code, _ = doJSON(t, h, http.MethodDelete, "/api/appetites/"+id, nil)
	gt.Value(t, code).Equal(http.StatusNoContent)

	code, _ = doJSON(t, h, http.MethodGet, "/api/appetites/"+id, nil)
	gt.Value(t, code).Equal(http.StatusNotFound)
}

const controlsCSV = "Control Code,Title,Guidance\nAC-1,Access Control Policy,Write it down\nAC-2,Account Management,Review quarterly\n"

func TestFrameworkImportAndAssessment(t *testing.T) {
	h := newServer(t)

	code, fw := doJSON(t, h, http.MethodPost, "/api/frameworks", map[string]any{"name": "NIST SP 800-53", "version": "r5"})
	gt.Value(t, code).Equal(http.StatusCreated)
	fwPath := "/api/frameworks/" + fw["id"].(string)

	code, preview := upload(t, h, fwPath+"/preview", "nist.csv", controlsCSV)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, preview["row_count"]).Equal(float64(2))
	gt.Array(t, preview["columns"].([]any)).Length(3)
	storageKey := preview["storage_key"].(string)

	t.Run("unsupported upload", func(t *testing.T) {
		code, _ := upload(t, h, fwPath+"/preview", "nist.pdf", "x")
		gt.Value(t, code).Equal(http.StatusBadRequest)
	})

	t.Run("title not mapped", func(t *testing.T) {
		code, resp := doJSON(t, h, http.MethodPost, fwPath+"/import", map[string]any{
			"storage_key": storageKey,
			"mappings":    []map[string]any{{"source_column": "Title", "target_field": "", "confidence": 0}},
		})
		gt.Value(t, code).Equal(http.StatusUnprocessableEntity)
		gt.Map(t, resp).HasKey("error")
	})

	t.Run("dry run returns controls", func(t *testing.T) {
		code, resp := doJSON(t, h, http.MethodPost, fwPath+"/import", map[string]any{
			"storage_key": storageKey,
			"mappings":    preview["mappings"],
			"dry_run":     true,
		})
		gt.Value(t, code).Equal(http.StatusOK)
		gt.Array(t, resp["controls"].([]any)).Length(2)

		_, list := doJSON(t, h, http.MethodGet, fwPath+"/controls", nil)
		gt.Array(t, list["controls"].([]any)).Length(0)
	})

	code, result := doJSON(t, h, http.MethodPost, fwPath+"/import", map[string]any{
		"storage_key": storageKey,
		"mappings":    preview["mappings"],
	})
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, result["imported"]).Equal(float64(2))

	code, list := doJSON(t, h, http.MethodGet, fwPath+"/controls", nil)
	gt.Value(t, code).Equal(http.StatusOK)
	controls := list["controls"].([]any)
	gt.Array(t, controls).Length(2)
	first := controls[0].(map[string]any)
	gt.Value(t, first["code"]).Equal("AC-1")
	gt.Value(t, first["guidance"]).Equal("Write it down")

	code, appetite := doJSON(t, h, http.MethodPost, "/api/appetites", map[string]any{
		"name":      "Strict",
		"tolerance": 3,
		"bands":     []map[string]any{{"label": "Acceptable", "min_score": 1, "max_score": 5}},
	})
	gt.Value(t, code).Equal(http.StatusCreated)

	code, risk := doJSON(t, h, http.MethodPost, "/api/risks", map[string]any{
		"title":               "Ransomware",
		"inherent_severity":   "critical",
		"inherent_likelihood": "almost_certain",
		"appetite_id":         appetite["id"],
	})
	gt.Value(t, code).Equal(http.StatusCreated)
	riskPath := "/api/risks/" + risk["id"].(string)

	code, _ = doJSON(t, h, http.MethodPut, riskPath+"/controls", map[string]any{
		"controls": []map[string]any{{"control_id": "missing", "status": "implemented"}},
	})
	gt.Value(t, code).Equal(http.StatusNotFound)

	code, saved := doJSON(t, h, http.MethodPut, riskPath+"/controls", map[string]any{
		"controls": []map[string]any{{"control_id": first["id"], "status": "implemented"}},
	})
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Array(t, saved["controls"].([]any)).Length(1)

	code, assessment := doJSON(t, h, http.MethodGet, riskPath+"/assessment", nil)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, assessment["inherent_score"]).Equal(float64(25))
	gt.Value(t, assessment["inherent_level"]).Equal("critical")
	residual := assessment["residual"].(map[string]any)
	gt.Value(t, residual["score"]).Equal(float64(4))
	gt.Value(t, assessment["band"].(map[string]any)["label"]).Equal("Acceptable")
	gt.Value(t, assessment["exceeds_tolerance"]).Equal(true)

	code, all := doJSON(t, h, http.MethodGet, "/api/assessments", nil)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Array(t, all["assessments"].([]any)).Length(1)

	code, _ = doJSON(t, h, http.MethodGet, riskPath+"/assessment?appetite_id=missing", nil)
	gt.Value(t, code).Equal(http.StatusNotFound)
}

func TestRisks(t *testing.T) {
	h := newServer(t)

	code, _ := doJSON(t, h, http.MethodPost, "/api/risks", map[string]any{
		"inherent_severity": "low", "inherent_likelihood": "rare",
	})
	gt.Value(t, code).Equal(http.StatusBadRequest)

	code, created := doJSON(t, h, http.MethodPost, "/api/risks", map[string]any{
		"title": "Phishing", "inherent_severity": "medium", "inherent_likelihood": "likely",
	})
	gt.Value(t, code).Equal(http.StatusCreated)
	path := "/api/risks/" + created["id"].(string)

	code, updated := doJSON(t, h, http.MethodPut, path, map[string]any{
		"title": "Phishing", "inherent_severity": "high", "inherent_likelihood": "likely", "treatment": "mitigate",
	})
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Value(t, updated["inherent_severity"]).Equal("high")

	code, list := doJSON(t, h, http.MethodGet, "/api/risks", nil)
	gt.Value(t, code).Equal(http.StatusOK)
	gt.Array(t, list["risks"].([]any)).Length(1)

	code, _ = doJSON(t, h, http.MethodDelete, path, nil)
	gt.Value(t, code).Equal(http.StatusNoContent)

	code, resp := doJSON(t, h, http.MethodGet, path, nil)
	gt.Value(t, code).Equal(http.StatusNotFound)
	gt.Map(t, resp).HasKey("error")
}

func TestBlobStoreMissing(t *testing.T) {
	h := httpctrl.New(usecase.New(memory.New()))

	code, fw := doJSON(t, h, http.MethodPost, "/api/frameworks", map[string]any{"name": "ISO 27001"})
	gt.Value(t, code).Equal(http.StatusCreated)

	code, resp := upload(t, h, "/api/frameworks/"+fw["id"].(string)+"/preview", "iso.csv", controlsCSV)
	gt.Value(t, code).Equal(http.StatusServiceUnavailable)
	gt.Value(t, resp["error"]).Equal("Service Unavailable")
}
