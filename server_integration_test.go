package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"udhaar/pkg/history"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) (*gin.Engine, *Config) {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	tmp := t.TempDir()
	_ = os.Setenv("UPLOAD_BASE", tmp)
	cfg := LoadConfig()
	log := zap.NewNop()
	db, err := initDB(cfg, log)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	store := NewStore(db, history.NewSynthetic(1), log)
	s := &server{cfg: cfg, db: db, store: store, log: log}
	r := gin.New()
	setupRoutes(r, s)
	return r, cfg
}

func loginAs(t *testing.T, r http.Handler, login, password string) string {
	body, _ := json.Marshal(map[string]string{"login": login, "password": password})
	resp := performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(body), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login %s failed status=%d body=%s", login, resp.Code, resp.Body.String())
	}
	var out map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", out)
	}
	return token
}

func TestFullFlow(t *testing.T) {
	r, cfg := setupTestServer(t)

	phone := fmt.Sprintf("0300%07d", time.Now().UnixNano()%10000000)
	cnic := fmt.Sprintf("99999-%07d-1", time.Now().UnixNano()%10000000)

	// 1. Register
	regBody, _ := json.Marshal(map[string]any{
		"phone": phone, "cnic": cnic, "password": "pass1234", "income": 85000, "name": "Test Applicant",
	})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Duplicate phone conflicts
	dupBody, _ := json.Marshal(map[string]any{
		"phone": phone, "cnic": "11111-1111111-1", "password": "pass1234",
	})
	resp = performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(dupBody), "", "application/json")
	if resp.Code != 409 {
		t.Fatalf("duplicate phone: expected 409 got %d body=%s", resp.Code, resp.Body.String())
	}

	// ... and so does a duplicate CNIC, even with a fresh phone
	dupBody, _ = json.Marshal(map[string]any{
		"phone": fmt.Sprintf("0311%07d", time.Now().UnixNano()%10000000), "cnic": cnic, "password": "pass1234",
	})
	resp = performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(dupBody), "", "application/json")
	if resp.Code != 409 {
		t.Fatalf("duplicate cnic: expected 409 got %d body=%s", resp.Code, resp.Body.String())
	}

	// 3. Login
	token := loginAs(t, r, phone, "pass1234")

	// 4. Score absent before profile completion
	resp = performRequest(r, http.MethodGet, "/me", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("me failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var me map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &me)
	if me["Score"] != nil {
		t.Fatalf("score should be absent before profile completion, got %v", me["Score"])
	}

	// 5. Complete profile -> score computed
	profBody, _ := json.Marshal(map[string]any{"dependents": 2, "household_type": "rented"})
	resp = performRequest(r, http.MethodPost, "/profile", bytes.NewBuffer(profBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("profile failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var updated map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &updated)
	scoreVal, ok := updated["Score"].(float64)
	if !ok {
		t.Fatalf("score missing after completion: %v", updated["Score"])
	}
	if scoreVal < 300 || scoreVal > 850 {
		t.Fatalf("score %v out of bounds", scoreVal)
	}

	countScoreUpdates := func() int {
		resp := performRequest(r, http.MethodGet, "/dashboard", nil, token, "")
		if resp.Code != 200 {
			t.Fatalf("dashboard failed status=%d body=%s", resp.Code, resp.Body.String())
		}
		var d struct {
			Activities []map[string]any `json:"activities"`
		}
		_ = json.Unmarshal(resp.Body.Bytes(), &d)
		n := 0
		for _, a := range d.Activities {
			if a["Kind"] == "SCORE_UPDATE" {
				n++
			}
		}
		return n
	}

	// Completing again with the same fields recomputes the same score and
	// appends exactly one more score-update entry
	before := countScoreUpdates()
	resp = performRequest(r, http.MethodPost, "/profile", bytes.NewBuffer(profBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("repeated profile completion failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var again map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &again)
	if again["Score"] != scoreVal {
		t.Fatalf("repeated completion changed the score: %v -> %v", scoreVal, again["Score"])
	}
	if after := countScoreUpdates(); after != before+1 {
		t.Fatalf("repeated completion should add one score update, had %d now %d", before, after)
	}

	// 6. Dashboard has 20 transactions and activity log
	resp = performRequest(r, http.MethodGet, "/dashboard", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("dashboard failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var dash struct {
		Transactions []map[string]any `json:"transactions"`
		Activities   []map[string]any `json:"activities"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &dash)
	if len(dash.Transactions) != 20 {
		t.Fatalf("expected 20 transactions got %d", len(dash.Transactions))
	}
	if len(dash.Activities) < 3 { // created + logged in + score updates
		t.Fatalf("expected at least 3 activities got %d", len(dash.Activities))
	}

	// 7. Small loan auto-approves, large loan goes pending
	loanBody, _ := json.Marshal(map[string]any{"amount": 500000})
	resp = performRequest(r, http.MethodPost, "/loans", bytes.NewBuffer(loanBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("loan failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var small map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &small)
	if small["Status"] != "approved" {
		t.Fatalf("500000 loan should auto-approve, got %v", small["Status"])
	}
	loanBody, _ = json.Marshal(map[string]any{"amount": 600000, "document": "Property_Docs.pdf"})
	resp = performRequest(r, http.MethodPost, "/loans", bytes.NewBuffer(loanBody), token, "application/json")
	var big map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &big)
	if big["Status"] != "pending" {
		t.Fatalf("600000 loan should be pending, got %v", big["Status"])
	}

	// 8. Upload a verification document (pdf skips the OCR path)
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="salary_slip.pdf"`}
	hdr["Content-Type"] = []string{"application/pdf"}
	w, _ := mw.CreatePart(hdr)
	_, _ = w.Write([]byte("%PDF-1.4 test"))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/documents", buf, token, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var doc map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &doc)
	if doc["Status"] != "pending" {
		t.Fatalf("uploaded document should be pending, got %v", doc["Status"])
	}

	// 9. Admin decides the pending loan; re-deciding is allowed
	adminToken := loginAs(t, r, "admin", cfg.AdminPassword)
	loanID := fmt.Sprintf("%.0f", big["ID"].(float64))
	decisionBody, _ := json.Marshal(map[string]string{"status": "approved"})
	resp = performRequest(r, http.MethodPatch, "/admin/loans/"+loanID, bytes.NewBuffer(decisionBody), adminToken, "application/json")
	if resp.Code != 200 {
		t.Fatalf("loan decision failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	decisionBody, _ = json.Marshal(map[string]string{"status": "rejected"})
	resp = performRequest(r, http.MethodPatch, "/admin/loans/"+loanID, bytes.NewBuffer(decisionBody), adminToken, "application/json")
	if resp.Code != 200 {
		t.Fatalf("re-deciding a decided loan should succeed, status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 10. Admin document queue and review
	resp = performRequest(r, http.MethodGet, "/admin/documents", nil, adminToken, "")
	if resp.Code != 200 {
		t.Fatalf("admin documents failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 11. Non-admin cannot reach admin routes
	resp = performRequest(r, http.MethodGet, "/admin/loans", nil, token, "")
	if resp.Code != 403 {
		t.Fatalf("expected 403 for non-admin, got %d", resp.Code)
	}

	// 12. Unknown loan id is a 404
	resp = performRequest(r, http.MethodPatch, "/admin/loans/999999999", bytes.NewBuffer(decisionBody), adminToken, "application/json")
	if resp.Code != 404 {
		t.Fatalf("expected 404 for unknown loan, got %d", resp.Code)
	}
}

func TestRefreshRotation(t *testing.T) {
	r, cfg := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"login": "admin", "password": cfg.AdminPassword})
	resp := performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(body), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var out map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	refresh, _ := out["refresh_token"].(string)
	if refresh == "" {
		t.Fatalf("no refresh token issued")
	}

	refBody, _ := json.Marshal(map[string]string{"refresh_token": refresh})
	resp = performRequest(r, http.MethodPost, "/refresh", bytes.NewBuffer(refBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("refresh failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// the old token was rotated out
	resp = performRequest(r, http.MethodPost, "/refresh", bytes.NewBuffer(refBody), "", "application/json")
	if resp.Code != 401 {
		t.Fatalf("reusing a rotated refresh token should fail, got %d", resp.Code)
	}
}
