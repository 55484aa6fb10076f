package api

import (
	"github.com/seliv/margin/internal/annot"
	"github.com/seliv/margin/internal/index"
	"github.com/seliv/margin/internal/models"
)

// AddCommentRequest is the request body for a quick insert.
type AddCommentRequest struct {
	Author string `json:"author" example:"me" validate:"required"`
	Body   string `json:"body" example:"looks good"`
	// AfterLine is the zero-based line the block is inserted after;
	// negative (the default when omitted is -1) appends at the end.
	AfterLine *int `json:"after_line,omitempty" example:"12"`
}

// CommentDTO is one rendered comment node.
//
// TargetLine is the navigation anchor for the comment (its header line);
// editors that would disrupt an editing mode by landing on the header may
// step one line back.
type CommentDTO struct {
	LineIndex  int          `json:"line_index" example:"12" validate:"required"`
	Author     string       `json:"author" example:"me" validate:"required"`
	Color      string       `json:"color" example:"#ff0000" validate:"required"`
	Body       string       `json:"body" example:"looks good" validate:"required"`
	BodyHTML   string       `json:"body_html,omitempty"`
	Timestamp  int64        `json:"timestamp,omitempty" example:"1704103200000"`
	Depth      int          `json:"depth" example:"1" validate:"required"`
	TargetLine int          `json:"target_line" example:"12" validate:"required"`
	Children   []CommentDTO `json:"children,omitempty"`
}

// ThreadsResponse is the arranged comment view of one document.
type ThreadsResponse struct {
	Path     string       `json:"path" example:"notes/review.md" validate:"required"`
	Checksum string       `json:"checksum" example:"abc123..." validate:"required"`
	View     annot.View   `json:"view" validate:"required"`
	Comments []CommentDTO `json:"comments" validate:"required"`
	Total    int          `json:"total" example:"3" validate:"required"`
}

// FileListResponse wraps paginated file listings.
type FileListResponse struct {
	Files []models.FileSummary `json:"files" validate:"required"`
	Total int                  `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// AuthorsResponse wraps the per-author tally.
type AuthorsResponse struct {
	Authors []models.AuthorCount `json:"authors" validate:"required"`
}

// TimelineResponse wraps the cross-vault chronological feed.
type TimelineResponse struct {
	Comments []index.CommentRow `json:"comments" validate:"required"`
}

// TagsResponse wraps the configured tag rules.
type TagsResponse struct {
	Tags         []annot.TagRule `json:"tags" validate:"required"`
	DefaultColor string          `json:"default_color" example:"#888888" validate:"required"`
}

// toCommentDTOs converts an arranged forest, resolving colors and optionally
// rendering bodies to HTML.
func toCommentDTOs(nodes []*annot.Annotation, rules []annot.TagRule, html bool) []CommentDTO {
	out := make([]CommentDTO, len(nodes))
	for i, n := range nodes {
		dto := CommentDTO{
			LineIndex:  n.LineIndex,
			Author:     n.Author,
			Color:      annot.ColorFor(rules, n.Author),
			Body:       n.Body,
			Timestamp:  n.Timestamp,
			Depth:      n.Depth,
			TargetLine: n.LineIndex,
			Children:   toCommentDTOs(n.Children, rules, html),
		}
		if html {
			dto.BodyHTML = renderBodyHTML(n.Body)
		}
		out[i] = dto
	}
	return out
}
