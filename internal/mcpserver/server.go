// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Margin tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seliv/margin/internal/annot"
	"github.com/seliv/margin/internal/threadservice"
)

// Server wraps the MCP server with Margin tools.
type Server struct {
	mcp *server.MCPServer
	svc *threadservice.Service
}

// New creates a new MCP server with all Margin tools registered.
func New(svc *threadservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Margin",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_comments",
		mcp.WithDescription("Read the comment threads of a document, arranged by line or by time."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. notes/review.md)")),
		mcp.WithString("by", mcp.Description("Ordering mode: 'line' (document order, default) or 'time'")),
		mcp.WithString("order", mcp.Description("Direction: 'asc' (default) or 'desc'")),
		mcp.WithBoolean("flatten", mcp.Description("Drop nesting and return a flat chronological list (time mode only)")),
	), s.readComments)

	s.mcp.AddTool(mcp.NewTool("add_comment",
		mcp.WithDescription("Insert a comment block into a document, stamped with the current time. "+
			"The author must have a configured tag rule. Read the syntax first via the "+
			"get_comment_syntax tool or the margin://comment-syntax resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
		mcp.WithString("author", mcp.Required(), mcp.Description("Author tag (must be configured)")),
		mcp.WithString("body", mcp.Description("Comment body text")),
		mcp.WithNumber("after_line", mcp.Description("Zero-based line to insert after; omit to append at the end")),
	), s.addComment)

	s.mcp.AddTool(mcp.NewTool("search_comments",
		mcp.WithDescription("Full-text search through comment bodies and authors across the vault."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchComments)

	s.mcp.AddTool(mcp.NewTool("list_commented_files",
		mcp.WithDescription("List indexed documents with their comment counts."),
		mcp.WithString("author", mcp.Description("Only files with comments by this author")),
	), s.listCommentedFiles)

	s.mcp.AddTool(mcp.NewTool("get_comment_syntax",
		mcp.WithDescription("Returns the canonical comment block syntax. "+
			"Call this before adding comments by hand to ensure correct structure."),
	), s.getCommentSyntax)

	// Resource: comment syntax contract.
	s.mcp.AddResource(
		mcp.NewResource("margin://comment-syntax", "Comment Syntax",
			mcp.WithResourceDescription("Canonical tagged quote-block comment syntax."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCommentSyntaxResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) readComments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	view := s.svc.DefaultView()
	if by := req.GetString("by", ""); by != "" {
		view.ByTimestamp = by == "time"
	}
	if order := req.GetString("order", ""); order != "" {
		view.Ascending = order != "desc"
	}
	view.Flatten = req.GetBool("flatten", view.Flatten)

	th, err := s.svc.GetThreads(ctx, path, &view)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read %s: %v", path, err)), nil
	}
	out, _ := json.MarshalIndent(th, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	author, err := req.RequireString("author")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := req.GetString("body", "")
	afterLine := req.GetInt("after_line", -1)

	a, err := s.svc.AddComment(ctx, path, author, body, afterLine)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("add comment to %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("inserted at line %d in %s", a.LineIndex, path)), nil
}

func (s *Server) searchComments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCommentedFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	author := req.GetString("author", "")

	files, _, err := s.svc.ListFiles(ctx, 0, 0, author)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%s (%d comments)", f.Path, f.CommentCount))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no commented files"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getCommentSyntax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contract := CommentSyntaxContract + configuredAuthors(s.svc.Rules())
	return mcp.NewToolResultText(contract), nil
}

func (s *Server) readCommentSyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "margin://comment-syntax",
			MIMEType: "text/markdown",
			Text:     CommentSyntaxContract + configuredAuthors(s.svc.Rules()),
		},
	}, nil
}

// configuredAuthors appends the live tag rules to the syntax contract so
// consumers know which authors are valid right now.
func configuredAuthors(rules []annot.TagRule) string {
	if len(rules) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## Configured authors\n\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "- `%s` (%s)\n", r.Tag, r.Color)
	}
	return b.String()
}
