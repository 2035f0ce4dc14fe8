package pdf

import (
	"github.com/a3tai/mcp-rfq-extractor/internal/items"
)

// FileInfo represents basic information about a document on disk
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ExtractItemsRequest asks for the line items of one RFQ document
type ExtractItemsRequest struct {
	Path string `json:"path"`
}

// ExtractItemsResult is the pipeline result plus where the text came from
type ExtractItemsResult struct {
	Path    string `json:"path"`
	Backend string `json:"backend"`
	items.Result
}

// ExtractTextRequest asks for the acquired text of one document
type ExtractTextRequest struct {
	Path string `json:"path"`

	// Raw skips normalization
	Raw bool `json:"raw"`
}

// ExtractTextResult carries the acquired text
type ExtractTextResult struct {
	Path       string `json:"path"`
	Backend    string `json:"backend"`
	Text       string `json:"text"`
	Length     int    `json:"length"`
	Normalized bool   `json:"normalized"`
	Fragmented bool   `json:"fragmented"`
}

// ValidateFileRequest represents a request to validate a document
type ValidateFileRequest struct {
	Path string `json:"path"`
}

// ValidateFileResult represents the result of validating a document
type ValidateFileResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Size    int64  `json:"size,omitempty"`
	Message string `json:"message,omitempty"`
}

// ServerInfoRequest represents a request for server information
type ServerInfoRequest struct{}

// ServerInfoResult describes the server, its tools and the documents it can see
type ServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	Backends          []string   `json:"backends"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
