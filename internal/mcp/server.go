package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-rfq-extractor/internal/config"
	"github.com/a3tai/mcp-rfq-extractor/internal/descriptions"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf/acquire"
)

const (
	formatText = "text"
	formatJSON = "json"

	shutdownTimeout = 5 * time.Second
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *zap.Logger

	// stdio transport streams, replaced in tests
	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger.Named("mcp"),
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractItemsTool := mcp.NewTool(
		"rfq_extract_items",
		mcp.WithDescription(descriptions.RFQExtractItemsDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the RFQ PDF, absolute or relative to the configured directory"),
		),
		mcp.WithString("format",
			mcp.Description("Response format: 'text' (default) or 'json'"),
			mcp.Enum(formatText, formatJSON),
		),
	)
	s.mcpServer.AddTool(extractItemsTool, s.handleExtractItems)

	extractTextTool := mcp.NewTool(
		"rfq_extract_text",
		mcp.WithDescription(descriptions.RFQExtractTextDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the RFQ PDF"),
		),
		mcp.WithBoolean("raw",
			mcp.Description("Return the text exactly as the backend produced it"),
		),
	)
	s.mcpServer.AddTool(extractTextTool, s.handleExtractText)

	validateFileTool := mcp.NewTool(
		"rfq_validate_file",
		mcp.WithDescription(descriptions.RFQValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)

	serverInfoTool := mcp.NewTool(
		"rfq_server_info",
		mcp.WithDescription(descriptions.RFQServerInfoDescription),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleExtractItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := request.GetString("format", formatText)
	if format != formatText && format != formatJSON {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q (use 'text' or 'json')", format)), nil
	}

	result, err := s.pdfService.ExtractItems(ctx, pdf.ExtractItemsRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(s.describeError(path, err)), nil
	}

	s.logger.Info("items extracted",
		zap.String("path", result.Path),
		zap.String("backend", result.Backend),
		zap.Int("items", result.ItemsDetected),
		zap.Int("needs_review", result.NeedsReview()))

	if format == formatJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultText(pdf.FormatItems(result)), nil
}

func (s *Server) handleExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractText(ctx, pdf.ExtractTextRequest{
		Path: path,
		Raw:  request.GetBool("raw", false),
	})
	if err != nil {
		return mcp.NewToolResultError(s.describeError(path, err)), nil
	}

	responseText := fmt.Sprintf("Text of: %s\n", result.Path)
	responseText += fmt.Sprintf("Backend: %s\n", result.Backend)
	responseText += fmt.Sprintf("Length: %d characters\n", result.Length)
	responseText += fmt.Sprintf("Normalized: %t\n", result.Normalized)
	if result.Fragmented {
		responseText += "Fragmented: the text layer splits words into single characters\n"
	}
	responseText += "\nContent:\n"
	responseText += result.Text

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateFile(pdf.ValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d bytes)", result.Path, result.Size)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(ctx, pdf.ServerInfoRequest{}, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfoResult(result)), nil
}

// describeError turns a service error into a client-facing message. An
// acquisition failure means the document needs manual entry.
func (s *Server) describeError(path string, err error) string {
	var failure *acquire.Failure
	if errors.As(err, &failure) {
		s.logger.Warn("no usable text", zap.String("path", path), zap.Int("attempts", len(failure.Attempts)))
		msg := acquire.ErrNoUsableText.Error() + "\nThe document needs manual entry.\n\nAttempts:\n"
		for _, a := range failure.Attempts {
			msg += fmt.Sprintf("  - %s: %v\n", a.Backend, a.Err)
		}
		return msg
	}
	return err.Error()
}

func formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Extraction Backends: %s\n\n", strings.Join(result.Backends, " -> "))

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode and blocks until ctx
// is cancelled or the transport stops
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout. Nothing else may write to stdout.
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Debug("starting stdio transport", zap.String("directory", s.config.PDFDirectory))

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Named("stdio")))

	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	httpServer := &http.Server{Addr: addr, ReadHeaderTimeout: 10 * time.Second}
	sse := server.NewSSEServer(s.mcpServer,
		server.WithBaseURL("http://"+addr),
		server.WithHTTPServer(httpServer),
	)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting SSE transport", zap.String("address", addr))
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sse.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve http: %w", err)
	}
	s.logger.Info("SSE transport stopped")
	return nil
}
