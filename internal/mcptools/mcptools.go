// Package mcptools exposes the urlutil parser and builder as Model Context
// Protocol tools served over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"github.com/jongio/urlkit/internal/config"
	"github.com/jongio/urlkit/logutil"
	"github.com/jongio/urlkit/urlutil"
)

const (
	ToolParseURL          = "parse_url"
	ToolBuildURL          = "build_url"
	ToolGetQueryParameter = "get_query_parameter"
)

// Default tool call budget: a burst of 10 calls refilled at one per second.
const (
	defaultBurst = 10
	defaultRate  = 1.0
)

var logger = logutil.NewLogger("mcp")

// Tools holds the handlers and the shared call limiter.
type Tools struct {
	limiter *rate.Limiter
}

// NewTools returns tools limited to burst calls refilled at perSecond.
func NewTools(burst int, perSecond float64) *Tools {
	return &Tools{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// NewServer registers every tool on a new MCP server.
func NewServer(name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	NewTools(defaultBurst, defaultRate).Register(s)
	return s
}

// Serve runs the MCP server on stdin/stdout until the client disconnects.
func Serve(name, version string) error {
	return server.ServeStdio(NewServer(name, version))
}

// Register adds the urlkit tools to s.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool(ToolParseURL,
		mcp.WithDescription("Split a URL into scheme, host, port, credentials, path, ordered query and fragment."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to parse")),
	), t.handleParse)

	s.AddTool(mcp.NewTool(ToolBuildURL,
		mcp.WithDescription("Assemble a URL from components. The well-known port of the scheme is omitted."),
		mcp.WithString("scheme", mcp.Description("Scheme, http when a host is given without one")),
		mcp.WithString("host", mcp.Description("Host name or IP literal")),
		mcp.WithNumber("port", mcp.Description("Explicit port")),
		mcp.WithString("user", mcp.Description("User name")),
		mcp.WithString("password", mcp.Description("Password")),
		mcp.WithString("path", mcp.Description("Path, emitted verbatim")),
		mcp.WithString("query", mcp.Description("Raw query string such as a=1&b=2")),
		mcp.WithString("fragment", mcp.Description("Fragment")),
	), t.handleBuild)

	s.AddTool(mcp.NewTool(ToolGetQueryParameter,
		mcp.WithDescription("Read one query parameter from a URL."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to inspect")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Parameter name")),
	), t.handleGetQueryParameter)
}

func (t *Tools) checkRateLimit(tool string) error {
	if t.limiter != nil && !t.limiter.Allow() {
		return fmt.Errorf("rate limit exceeded for tool %q, please wait before retrying", tool)
	}
	return nil
}

func (t *Tools) handleParse(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.checkRateLimit(ToolParseURL); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, ok := getStringParam(getArgsMap(request), "url")
	if !ok {
		return mcp.NewToolResultError("url parameter is required"), nil
	}

	u, err := urlutil.Parse(raw)
	if err != nil {
		logger.WithOperation(ToolParseURL).Debug("parse failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return marshalToolResult(config.ComponentsOf(u))
}

func (t *Tools) handleBuild(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.checkRateLimit(ToolBuildURL); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := getArgsMap(request)

	c := &config.Components{}
	c.Scheme, _ = getStringParam(args, "scheme")
	c.Host, _ = getStringParam(args, "host")
	c.User, _ = getStringParam(args, "user")
	c.Password, _ = getStringParam(args, "password")
	c.Path, _ = getStringParam(args, "path")
	c.Fragment, _ = getStringParam(args, "fragment")
	if port, ok := args["port"].(float64); ok {
		c.Port = int(port)
	}
	if raw, ok := getStringParam(args, "query"); ok && raw != "" {
		q, err := urlutil.ParseQuery(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c.Query = q
	}
	if err := c.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(c.URL().String()), nil
}

func (t *Tools) handleGetQueryParameter(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.checkRateLimit(ToolGetQueryParameter); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := getArgsMap(request)
	raw, ok := getStringParam(args, "url")
	if !ok {
		return mcp.NewToolResultError("url parameter is required"), nil
	}
	name, ok := getStringParam(args, "name")
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	u, err := urlutil.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, found := u.QueryParameter(name)
	return marshalToolResult(map[string]interface{}{
		"name":  name,
		"value": value,
		"found": found,
	})
}

// getArgsMap extracts the arguments map from a tool call request.
// Returns an empty map if arguments are nil or not a map.
func getArgsMap(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments != nil {
		if m, ok := request.Params.Arguments.(map[string]interface{}); ok {
			return m
		}
	}
	return map[string]interface{}{}
}

func getStringParam(args map[string]interface{}, key string) (string, bool) {
	val, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// marshalToolResult returns data as indented JSON text.
func marshalToolResult(data interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
