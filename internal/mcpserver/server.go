// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Socialgram idea tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/editor"
	"github.com/starford/socialgram/internal/linklist"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/repository"
)

const formatURI = "socialgram://idea-format"

// Server wraps the MCP server with Socialgram tools.
type Server struct {
	mcp     *server.MCPServer
	repo    repository.Repository
	creator *editor.Creator
}

// New creates a new MCP server with all idea tools registered.
func New(repo repository.Repository, creator *editor.Creator) *Server {
	s := &Server{repo: repo, creator: creator}

	s.mcp = server.NewMCPServer(
		"Socialgram",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_ideas",
		mcp.WithDescription("List every content idea, most recently updated first."),
	), s.listIdeas)

	s.mcp.AddTool(mcp.NewTool("get_idea",
		mcp.WithDescription("Get one content idea as JSON."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Idea ID")),
	), s.getIdea)

	s.mcp.AddTool(mcp.NewTool("create_idea",
		mcp.WithDescription("Create a content idea. Omitted statuses default to "+
			"short-form, ideation and not started. Read get_idea_contract first."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title, at least 3 characters")),
		mcp.WithString("type", mcp.Description("short-form or long-form")),
		mcp.WithString("creativeStatus", mcp.Description("ideation, scripting, editing or published")),
		mcp.WithString("productionStage", mcp.Description("not started, shoot pending, shoot done, editing or posted")),
	), s.createIdea)

	s.mcp.AddTool(mcp.NewTool("update_idea",
		mcp.WithDescription("Change fields of an existing idea. Only the fields given are updated."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Idea ID")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("type", mcp.Description("short-form or long-form")),
		mcp.WithString("creativeStatus", mcp.Description("New creative status")),
		mcp.WithString("productionStage", mcp.Description("New production stage")),
		mcp.WithString("script", mcp.Description("Full Markdown script")),
	), s.updateIdea)

	s.mcp.AddTool(mcp.NewTool("add_link",
		mcp.WithDescription("Append a URL to one of the idea's link lists."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Idea ID")),
		mcp.WithString("category", mcp.Required(), mcp.Description("reference, deployment, shoot or edit")),
		mcp.WithString("url", mcp.Required(), mcp.Description("Link to add")),
	), s.addLink)

	s.mcp.AddTool(mcp.NewTool("remove_link",
		mcp.WithDescription("Remove the link at a zero-based position from one of the idea's link lists."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Idea ID")),
		mcp.WithString("category", mcp.Required(), mcp.Description("reference, deployment, shoot or edit")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based position")),
	), s.removeLink)

	s.mcp.AddTool(mcp.NewTool("delete_idea",
		mcp.WithDescription("Permanently delete an idea."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Idea ID")),
	), s.deleteIdea)

	s.mcp.AddTool(mcp.NewTool("search_ideas",
		mcp.WithDescription("Search idea titles and scripts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchIdeas)

	s.mcp.AddTool(mcp.NewTool("get_idea_contract",
		mcp.WithDescription("Returns the Socialgram idea format: fields, allowed status values "+
			"and the vault file layout."),
	), s.getIdeaContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Idea Format",
			mcp.WithResourceDescription("Fields and allowed values of a content idea."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readIdeaFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		return mcp.NewToolResultError(verr.Error()), nil
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("idea not found"), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}

// optional returns the string argument key when the caller supplied it.
func optional(req mcp.CallToolRequest, key string) (string, bool) {
	v, ok := req.GetArguments()[key].(string)
	return v, ok
}

func (s *Server) listIdeas(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ideas, err := s.repo.FetchAll(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(ideas)
}

func (s *Server) getIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idea, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(idea)
}

func (s *Server) createIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f := models.DefaultNewIdeaForm()
	f.Title = title
	if v, ok := optional(req, "type"); ok {
		f.Type = models.ContentType(v)
	}
	if v, ok := optional(req, "creativeStatus"); ok {
		f.CreativeStatus = models.CreativeStatus(v)
	}
	if v, ok := optional(req, "productionStage"); ok {
		f.ProductionStage = models.ProductionStage(v)
	}
	idea, err := s.creator.Create(ctx, f)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(idea)
}

func (s *Server) updateIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var p models.Patch
	if v, ok := optional(req, "title"); ok {
		p.Title = &v
	}
	if v, ok := optional(req, "type"); ok {
		p.Type = models.Ptr(models.ContentType(v))
	}
	if v, ok := optional(req, "creativeStatus"); ok {
		p.CreativeStatus = models.Ptr(models.CreativeStatus(v))
	}
	if v, ok := optional(req, "productionStage"); ok {
		p.ProductionStage = models.Ptr(models.ProductionStage(v))
	}
	if v, ok := optional(req, "script"); ok {
		p.Script = &v
	}
	if p.Empty() {
		return mcp.NewToolResultError("no fields to update"), nil
	}
	return s.apply(ctx, id, p)
}

func (s *Server) apply(ctx context.Context, id string, p models.Patch) (*mcp.CallToolResult, error) {
	if err := apperr.FromValidation(p.Validate()); err != nil {
		return errorResult(err)
	}
	idea, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(idea)
}

func (s *Server) linkTarget(ctx context.Context, req mcp.CallToolRequest) (models.ContentIdea, models.LinkCategory, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return models.ContentIdea{}, "", err
	}
	raw, err := req.RequireString("category")
	if err != nil {
		return models.ContentIdea{}, "", err
	}
	cat, err := models.ParseLinkCategory(raw)
	if err != nil {
		return models.ContentIdea{}, "", err
	}
	idea, err := s.repo.FetchByID(ctx, id)
	return idea, cat, err
}

func (s *Server) addLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idea, cat, err := s.linkTarget(ctx, req)
	if err != nil {
		return errorResult(err)
	}
	next, ok := linklist.Add(idea.Links(cat), url)
	if !ok {
		return mcp.NewToolResultError("url is empty"), nil
	}
	return s.apply(ctx, idea.ID, models.LinksPatch(cat, next))
}

func (s *Server) removeLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	i, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idea, cat, err := s.linkTarget(ctx, req)
	if err != nil {
		return errorResult(err)
	}
	next, ok := linklist.Remove(idea.Links(cat), i)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no %s link at index %d", cat, i)), nil
	}
	return s.apply(ctx, idea.ID, models.LinksPatch(cat, next))
}

func (s *Server) deleteIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) searchIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	searcher, ok := s.repo.(repository.Searcher)
	if !ok {
		return mcp.NewToolResultError("search is not supported by this store"), nil
	}
	results, err := searcher.Search(ctx, query, repository.DefaultSearchLimit)
	if err != nil {
		return errorResult(err)
	}
	if results == nil {
		results = []repository.SearchResult{}
	}
	return jsonResult(results)
}

func (s *Server) getIdeaContract(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(IdeaFormatContract), nil
}

func (s *Server) readIdeaFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     IdeaFormatContract,
		},
	}, nil
}
