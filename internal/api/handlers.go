package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seliv/margin/internal/annot"
	"github.com/seliv/margin/internal/apperr"
	"github.com/seliv/margin/internal/index"
	"github.com/seliv/margin/internal/models"
	"github.com/seliv/margin/internal/threadservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *threadservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *threadservice.Service) *Handler {
	return &Handler{svc: svc}
}

// docPath extracts the document path from the URL wildcard. Supports encoded
// slashes from OpenAPI clients (e.g. topics%2Fdoc.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// viewFromQuery resolves the arrangement from query parameters, falling back
// to the configured defaults for anything unspecified.
func (h *Handler) viewFromQuery(r *http.Request) annot.View {
	q := r.URL.Query()
	v := h.svc.DefaultView()
	if by := q.Get("by"); by != "" {
		v.ByTimestamp = by == "time"
	}
	if f := q.Get("flatten"); f != "" {
		v.Flatten = f == "1" || f == "true"
	}
	if o := q.Get("order"); o != "" {
		v.Ascending = o != "desc"
	}
	return v
}

// ListFiles handles GET /api/files.
//
//	@Summary		List indexed documents with comment counts
//	@Tags			files
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			author	query		string	false	"Only files with comments by this author"
//	@Success		200		{object}	FileListResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	author := q.Get("author")

	files, total, err := h.svc.ListFiles(r.Context(), limit, offset, author)
	if err != nil {
		slog.Error("list files failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if files == nil {
		files = []models.FileSummary{}
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: files, Total: total})
}

// GetThreads handles GET /api/threads/*.
//
//	@Summary		Get a document's arranged comment threads
//	@Tags			threads
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Param			by		query		string	false	"Ordering mode"	Enums(line, time)
//	@Param			flatten	query		bool	false	"Drop nesting (chronological mode only)"
//	@Param			order	query		string	false	"Direction"	Enums(asc, desc)
//	@Param			html	query		bool	false	"Render bodies to HTML"
//	@Success		200		{object}	ThreadsResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/threads/{path} [get]
func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	view := h.viewFromQuery(r)
	th, err := h.svc.GetThreads(r.Context(), path, &view)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get threads failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	html := r.URL.Query().Get("html") == "1" || r.URL.Query().Get("html") == "true"
	writeJSON(w, http.StatusOK, ThreadsResponse{
		Path:     th.Path,
		Checksum: th.Checksum,
		View:     th.View,
		Comments: toCommentDTOs(th.Comments, h.svc.Rules(), html),
		Total:    th.Total,
	})
}

// AddComment handles POST /api/threads/*.
//
//	@Summary		Insert a comment block into a document
//	@Tags			threads
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string				true	"Document path"
//	@Param			body	body		AddCommentRequest	true	"Comment to insert"
//	@Success		201		{object}	CommentDTO
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/threads/{path} [post]
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Author == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("author is required"))
		return
	}
	afterLine := -1
	if req.AfterLine != nil {
		afterLine = *req.AfterLine
	}

	a, err := h.svc.AddComment(r.Context(), path, req.Author, req.Body, afterLine)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrUnknownAuthor):
			writeJSON(w, http.StatusBadRequest, errorBody("author has no configured tag rule"))
		default:
			slog.Error("add comment failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	dtos := toCommentDTOs([]*annot.Annotation{a}, h.svc.Rules(), false)
	writeJSON(w, http.StatusCreated, dtos[0])
}

// GetContent handles GET /api/content/*.
//
//	@Summary		Get the raw Markdown of a document
//	@Tags			files
//	@Produce		text/markdown
//	@Param			path	path	string	true	"Document path"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content/{path} [get]
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, err := h.svc.Content(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get content failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write(data)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across comment bodies and authors
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Authors handles GET /api/authors.
//
//	@Summary		Per-author comment counts
//	@Tags			authors
//	@Produce		json
//	@Success		200	{object}	AuthorsResponse
//	@Security		BearerAuth
//	@Router			/authors [get]
func (h *Handler) Authors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.svc.Authors(r.Context())
	if err != nil {
		slog.Error("authors failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if authors == nil {
		authors = []models.AuthorCount{}
	}
	writeJSON(w, http.StatusOK, AuthorsResponse{Authors: authors})
}

// Timeline handles GET /api/timeline.
//
//	@Summary		Cross-vault chronological comment feed, newest first
//	@Tags			timeline
//	@Produce		json
//	@Param			limit	query		int	false	"Max results"
//	@Success		200		{object}	TimelineResponse
//	@Security		BearerAuth
//	@Router			/timeline [get]
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	comments, err := h.svc.Timeline(r.Context(), limit)
	if err != nil {
		slog.Error("timeline failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if comments == nil {
		comments = []index.CommentRow{}
	}
	writeJSON(w, http.StatusOK, TimelineResponse{Comments: comments})
}

// Tags handles GET /api/tags.
//
//	@Summary		Configured tag rules and the fallback color
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TagsResponse{
		Tags:         h.svc.Rules(),
		DefaultColor: annot.DefaultColor,
	})
}
