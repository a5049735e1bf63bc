package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/theLastOfCats/novel-library-server/internal/mapper"
	"github.com/theLastOfCats/novel-library-server/internal/service"
	"github.com/theLastOfCats/novel-library-server/internal/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	database := testutil.SetupTestDB(t)
	novels := &NovelHandler{Service: service.NewNovelService(database)}
	return NewRouter(novels, &AuthHandler{}, &Middleware{})
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, target, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	req, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(Health)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := "Alive"
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
}

func TestHomeAndRequestID(t *testing.T) {
	router := newTestRouter(t)

	rr := doRequest(t, router, "GET", "/novels/home", "")
	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	if rr.Body.String() != "Novel library" {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), "Novel library")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}

	rr = doRequest(t, router, "GET", "/nowhere", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %v", rr.Code)
	}
}

func TestAddNovelScenario(t *testing.T) {
	router := newTestRouter(t)
	body := `{"name":"Ancient Martial God","link":"https://x/724","genre":"Eastern Fantasy"}`

	rr := doRequest(t, router, "POST", "/novels", body)
	if status := rr.Code; status != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v (%s)", status, http.StatusCreated, rr.Body.String())
	}
	if expected := "Novel added with id : 1"; rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}

	rr = doRequest(t, router, "POST", "/novels", body)
	if status := rr.Code; status != http.StatusConflict {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}
	var errResp ErrorResponse
	json.NewDecoder(rr.Body).Decode(&errResp)
	if !strings.HasPrefix(errResp.Error, "Novel already exists with name: Ancient Martial God") {
		t.Errorf("Unexpected error message: %q", errResp.Error)
	}

	rr = doRequest(t, router, "GET", "/novels?genre=Eastern%20Fantasy", "")
	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	var found []mapper.NovelDTO
	if err := json.NewDecoder(rr.Body).Decode(&found); err != nil {
		t.Fatalf("Failed to decode search response: %v", err)
	}
	if len(found) != 1 || found[0].Genre != "Eastern Fantasy" {
		t.Errorf("Unexpected search result: %+v", found)
	}

	rr = doRequest(t, router, "GET", "/novels/count", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "1" {
		t.Errorf("Unexpected count response: %v %q", rr.Code, rr.Body.String())
	}
}

func TestAddNovelBadRequests(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"null body", "null", http.StatusBadRequest},
		{"empty body", "", http.StatusBadRequest},
		{"malformed", "{", http.StatusBadRequest},
		{"missing link", `{"name":"a"}`, http.StatusBadRequest},
		{"rating out of range", `{"name":"a","link":"b","novelOpinion":{"rating":9}}`, http.StatusBadRequest},
		{"with side records", `{"name":"a","link":"b","novelDetails":{"totalChapters":10},"novelOpinion":{"rating":5}}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, "POST", "/novels", tt.body)
			if rr.Code != tt.want {
				t.Errorf("handler returned wrong status code: got %v want %v (%s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestSearchNovels(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, "POST", "/novels", `{"name":"Martial Peak","link":"https://x/1","genre":"Eastern Fantasy"}`)
	doRequest(t, router, "POST", "/novels", `{"name":"Lord of Mysteries","link":"https://x/2","genre":"Mystery"}`)

	tests := []struct {
		name   string
		target string
		want   int
		count  int
	}{
		{"no params", "/novels", http.StatusBadRequest, 0},
		{"blank params", "/novels?name=%20&genre=", http.StatusBadRequest, 0},
		{"by name", "/novels?name=PEAK", http.StatusOK, 1},
		{"genre wins", "/novels?name=peak&genre=mystery", http.StatusOK, 1},
		{"unknown genre", "/novels?genre=Romance", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, "GET", tt.target, "")
			if rr.Code != tt.want {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				return
			}
			var found []mapper.NovelDTO
			json.NewDecoder(rr.Body).Decode(&found)
			if len(found) != tt.count {
				t.Errorf("Expected %d novels, got %d", tt.count, len(found))
			}
		})
	}

	rr := doRequest(t, router, "GET", "/novels?genre=Romance", "")
	var errResp ErrorResponse
	json.NewDecoder(rr.Body).Decode(&errResp)
	if errResp.Error != "No novels found for genre: Romance" {
		t.Errorf("Unexpected error message: %q", errResp.Error)
	}
}

func TestUpdateNovelScenario(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, "POST", "/novels", `{"name":"First","link":"https://x/1","genre":"Fantasy","originalName":"Yi"}`)
	doRequest(t, router, "POST", "/novels", `{"name":"Second","link":"https://x/2","genre":"Fantasy"}`)

	rr := doRequest(t, router, "PATCH", "/novels/1?genre=Martial%20Arts", "")
	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v (%s)", status, http.StatusOK, rr.Body.String())
	}
	var updated mapper.NovelDTO
	if err := json.NewDecoder(rr.Body).Decode(&updated); err != nil {
		t.Fatalf("Failed to decode update response: %v", err)
	}
	if updated.Genre != "Martial Arts" || updated.Name != "First" || updated.Link != "https://x/1" {
		t.Errorf("Unexpected novel after update: %+v", updated)
	}
	if updated.OriginalName == nil || *updated.OriginalName != "Yi" {
		t.Errorf("Expected original name to be unchanged, got %v", updated.OriginalName)
	}

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"no fields", "/novels/1", http.StatusBadRequest},
		{"zero id", "/novels/0?genre=x", http.StatusBadRequest},
		{"non numeric id", "/novels/abc?genre=x", http.StatusBadRequest},
		{"missing id", "/novels/99?genre=x", http.StatusNotFound},
		{"duplicate name", "/novels/1?name=Second", http.StatusConflict},
		{"duplicate link", "/novels/1?link=https://x/2", http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, "PATCH", tt.target, "")
			if rr.Code != tt.want {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.want)
			}
		})
	}
}

func TestNovelLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rr := doRequest(t, router, "POST", "/novels/bulk", `[{"name":"A","link":"https://x/a"},{"name":"A","link":"https://x/b"},{"name":"B","link":"https://x/c"}]`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("bulk add returned wrong status code: got %v want %v (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	var bulk mapper.BulkResult
	json.NewDecoder(rr.Body).Decode(&bulk)
	if bulk.Added != 2 || bulk.Skipped != 1 {
		t.Errorf("Unexpected bulk result: %+v", bulk)
	}

	rr = doRequest(t, router, "PUT", "/novels/1/details", `{"mcName":"Lin Dong","totalChapters":1300}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update details returned wrong status code: got %v (%s)", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, router, "PUT", "/novels/1/opinion", `{"rating":4,"favorite":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update opinion returned wrong status code: got %v (%s)", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, router, "PUT", "/novels/1/opinion", `{"rating":-1}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative rating, got %v", rr.Code)
	}

	rr = doRequest(t, router, "GET", "/novels/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get returned wrong status code: got %v", rr.Code)
	}
	var n mapper.NovelDTO
	json.NewDecoder(rr.Body).Decode(&n)
	if n.NovelDetails == nil || n.NovelDetails.Status != "In-Progress" || n.NovelDetails.McName != "Lin Dong" {
		t.Errorf("Unexpected details: %+v", n.NovelDetails)
	}
	if n.NovelOpinion == nil || n.NovelOpinion.Rating == nil || *n.NovelOpinion.Rating != 4 {
		t.Errorf("Unexpected opinion: %+v", n.NovelOpinion)
	}

	rr = doRequest(t, router, "DELETE", "/novels/1", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete returned wrong status code: got %v want %v", rr.Code, http.StatusNoContent)
	}
	rr = doRequest(t, router, "GET", "/novels/1", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %v", rr.Code)
	}
	rr = doRequest(t, router, "DELETE", "/novels/1", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %v", rr.Code)
	}

	rr = doRequest(t, router, "GET", "/novels/all", "")
	var all []mapper.NovelDTO
	json.NewDecoder(rr.Body).Decode(&all)
	if rr.Code != http.StatusOK || len(all) != 1 || all[0].Name != "B" {
		t.Errorf("Unexpected list: %v %+v", rr.Code, all)
	}
}

func TestWriteErrorHidesUnexpected(t *testing.T) {
	req := httptest.NewRequest("GET", "/novels/count", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, errTest("connection refused by 10.0.0.5"))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rr.Body.String(), "10.0.0.5") {
		t.Errorf("Internal detail leaked to client: %s", rr.Body.String())
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
