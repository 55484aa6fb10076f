package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/seliv/margin/internal/annot"
	"github.com/seliv/margin/internal/index"
	"github.com/seliv/margin/internal/storage"
	"github.com/seliv/margin/internal/threadservice"
)

const sampleDoc = `Intro paragraph.
> [!alice] First point
Some prose.
> > [!bob] Reply to first (2024-01-02 09:30)
More prose.
> [!alice] Second point (2024-01-01 08:00)
`

func testRules() []annot.TagRule {
	return []annot.TagRule{
		{Tag: "alice", Color: "#ff0000"},
		{Tag: "bob", Color: "#00ff00"},
		{Tag: "me", Color: "#0000ff"},
	}
}

// testEnv sets up a temp vault, SQLite DB, service, and router for testing.
// authEnabled=false means disabled mode; authEnabled=true with non-empty token means token mode.
func testEnv(t *testing.T, authToken string) (*threadservice.Service, http.Handler) {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "margin-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := threadservice.NewService(store, db, testRules(), annot.View{Ascending: true})
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func seedDoc(t *testing.T, svc *threadservice.Service, path, content string) {
	t.Helper()
	if err := svc.WriteDocument(context.Background(), path, []byte(content)); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
}

func TestGetThreads(t *testing.T) {
	svc, router := testEnv(t, "")
	seedDoc(t, svc, "review.md", sampleDoc)

	req := httptest.NewRequest(http.MethodGet, "/threads/review.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ThreadsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Path != "review.md" {
		t.Errorf("path = %q, want review.md", resp.Path)
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	if len(resp.Comments) != 2 {
		t.Fatalf("roots = %d, want 2", len(resp.Comments))
	}
	first := resp.Comments[0]
	if first.Author != "alice" || first.Body != "First point" {
		t.Errorf("first root = %s/%q", first.Author, first.Body)
	}
	if first.Color != "#ff0000" {
		t.Errorf("color = %q, want #ff0000", first.Color)
	}
	if len(first.Children) != 1 || first.Children[0].Author != "bob" {
		t.Fatalf("first root children = %+v", first.Children)
	}
	if first.Children[0].Timestamp == 0 {
		t.Error("bob reply should carry its embedded timestamp")
	}
}

func TestGetThreadsNotFound(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/threads/missing.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetThreadsChronoFlatten(t *testing.T) {
	svc, router := testEnv(t, "")
	seedDoc(t, svc, "review.md", sampleDoc)

	req := httptest.NewRequest(http.MethodGet, "/threads/review.md?by=time&flatten=1&order=desc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ThreadsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.View.ByTimestamp || !resp.View.Flatten || resp.View.Ascending {
		t.Errorf("echoed view = %+v", resp.View)
	}
	if len(resp.Comments) != 3 {
		t.Fatalf("flat comments = %d, want 3", len(resp.Comments))
	}
	// Newest first: bob (Jan 2), alice second point (Jan 1), undated first point last.
	if resp.Comments[0].Author != "bob" {
		t.Errorf("comments[0].author = %q, want bob", resp.Comments[0].Author)
	}
	if resp.Comments[2].Timestamp != 0 {
		t.Errorf("undated comment should sort last, got ts %d", resp.Comments[2].Timestamp)
	}
	for _, c := range resp.Comments {
		if len(c.Children) != 0 {
			t.Errorf("flattened comment %q still has children", c.Body)
		}
	}
}

func TestGetThreadsHTMLRendering(t *testing.T) {
	svc, router := testEnv(t, "")
	seedDoc(t, svc, "doc.md", "> [!alice] some *emphasis* here\n")

	req := httptest.NewRequest(http.MethodGet, "/threads/doc.md?html=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp ThreadsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Comments) != 1 {
		t.Fatalf("comments = %d", len(resp.Comments))
	}
	if !strings.Contains(resp.Comments[0].BodyHTML, "<em>emphasis</em>") {
		t.Errorf("body_html = %q", resp.Comments[0].BodyHTML)
	}
}

func TestAddComment(t *testing.T) {
	svc, router := testEnv(t, "")
	seedDoc(t, svc, "doc.md", "Just prose.\n")

	body, _ := json.Marshal(AddCommentRequest{Author: "me", Body: "ship it"})
	req := httptest.NewRequest(http.MethodPost, "/threads/doc.md", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var dto CommentDTO
	if err := json.Unmarshal(w.Body.Bytes(), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// The body rides on the header with the timestamp appended.
	if dto.Author != "me" || !strings.HasPrefix(dto.Body, "ship it (") {
		t.Errorf("dto = %+v", dto)
	}
	if dto.Timestamp == 0 {
		t.Error("inserted comment should carry a timestamp")
	}

	// The block landed in the document.
	content, err := svc.Content(context.Background(), "doc.md")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if !strings.Contains(string(content), "> [!me]- ship it (") {
		t.Errorf("document missing inserted block:\n%s", content)
	}
}

func TestAddCommentUnknownAuthor(t *testing.T) {
	svc, router := testEnv(t, "")
	seedDoc(t, svc, "doc.md", "Just prose.\n")

	body, _ := json.Marshal(AddCommentRequest{Author: "stranger", Body: "hi"})
	req := httptest.NewRequest(http.MethodPost, "/threads/doc.md", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAddCommentMissingDocument(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(AddCommentRequest{Author: "me", Body: "hi"})
	req := httptest.NewRequest(http.MethodPost, "/threads/nope.md", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetContent(t *testing.T) {
	svc, router := testEnv(t, "")
	seedDoc(t, svc, "doc.md", sampleDoc)

	req := httptest.NewRequest(http.MethodGet, "/content/doc.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content-type = %q", ct)
	}
	if w.Body.String() != sampleDoc {
		t.Errorf("content mismatch:\n%s", w.Body.String())
	}
}

func TestListFiles(t *testing.T) {
	svc, router := testEnv(t, "")
	seedDoc(t, svc, "a.md", "> [!alice] one\n")
	seedDoc(t, svc, "b.md", "> [!bob] two\n")

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp FileListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 2 || len(resp.Files) != 2 {
		t.Fatalf("total = %d, files = %d", resp.Total, len(resp.Files))
	}

	// Author filter.
	req = httptest.NewRequest(http.MethodGet, "/files?author=bob", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var filtered FileListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(filtered.Files) != 1 || filtered.Files[0].Path != "b.md" {
		t.Fatalf("filtered = %+v", filtered.Files)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSearchFindsComment(t *testing.T) {
	svc, router := testEnv(t, "")
	seedDoc(t, svc, "doc.md", "> [!alice] a very distinctive phrase\n")

	req := httptest.NewRequest(http.MethodGet, "/search?q=distinctive", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Path != "doc.md" {
		t.Fatalf("results = %+v", resp.Results)
	}
}

func TestAuthorsAndTimeline(t *testing.T) {
	svc, router := testEnv(t, "")
	seedDoc(t, svc, "doc.md", sampleDoc)

	req := httptest.NewRequest(http.MethodGet, "/authors", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var authors AuthorsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &authors); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(authors.Authors) != 2 {
		t.Fatalf("authors = %+v", authors.Authors)
	}
	if authors.Authors[0].Author != "alice" || authors.Authors[0].Count != 2 {
		t.Errorf("top author = %+v", authors.Authors[0])
	}

	req = httptest.NewRequest(http.MethodGet, "/timeline", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var timeline TimelineResponse
	if err := json.Unmarshal(w.Body.Bytes(), &timeline); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Only the two dated comments appear, newest first.
	if len(timeline.Comments) != 2 {
		t.Fatalf("timeline = %+v", timeline.Comments)
	}
	if timeline.Comments[0].Author != "bob" {
		t.Errorf("timeline[0] = %+v", timeline.Comments[0])
	}
}

func TestTags(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp TagsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Tags) != 3 {
		t.Errorf("tags = %+v", resp.Tags)
	}
	if resp.DefaultColor != annot.DefaultColor {
		t.Errorf("default_color = %q", resp.DefaultColor)
	}
}

func TestAuthToken(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("with token: status = %d, want 200", w.Code)
	}
}
