package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// directoryScanTimeout bounds the listing embedded in server info
const directoryScanTimeout = 3 * time.Second

// ServerInfo describes the server, the extraction cascade and the
// documents currently visible under the configured directory
func (s *Service) ServerInfo(ctx context.Context, _ ServerInfoRequest, serverName, version string) (*ServerInfoResult, error) {
	scanCtx, cancel := context.WithTimeout(ctx, directoryScanTimeout)
	defer cancel()

	// a failed or slow scan leaves the listing empty rather than failing the call
	contents, err := s.ListDocuments(scanCtx, "", DefaultListLimit)
	if err != nil {
		contents = []FileInfo{}
	}

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  s.GetConfiguredDirectory(),
		MaxFileSize:       s.maxFileSize,
		Backends:          s.Backends(),
		AvailableTools:    availableTools(),
		DirectoryContents: contents,
		UsageGuidance:     s.usageGuidance(),
	}, nil
}

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "rfq_extract_items",
			Description: "Extract furniture line items from an RFQ PDF",
			Usage: "Use this tool to turn an RFQ document into structured items with dimensions, " +
				"quantity, materials and finishes. Items missing critical data are flagged needs_review.",
			Parameters: "path (required): PDF path, absolute or relative to the default directory; " +
				"format (optional): 'text' (default) or 'json'",
		},
		{
			Name:        "rfq_extract_text",
			Description: "Get the text the extraction pipeline works on",
			Usage: "Use this tool to inspect what was read from a document and which backend produced it, " +
				"for example when items come back incomplete.",
			Parameters: "path (required): PDF path; raw (optional): skip normalization",
		},
		{
			Name:        "rfq_validate_file",
			Description: "Check that a file is a readable PDF within the size limit",
			Usage:       "Use this tool before extraction when handling uploads of unknown quality.",
			Parameters:  "path (required): PDF path",
		},
		{
			Name:        "rfq_server_info",
			Description: "Describe this server, its backends and the documents it can see",
			Usage:       "Use this tool first to discover available RFQ documents.",
			Parameters:  "none",
		},
	}
}

func (s *Service) usageGuidance() string {
	return fmt.Sprintf(`RFQ Extractor Usage Guide:

1. DISCOVER: 'rfq_server_info' lists PDFs under the default directory.
2. VALIDATE: 'rfq_validate_file' rejects non-PDFs, empty files and files over %dMB.
3. EXTRACT: 'rfq_extract_items' returns items and a status:
   * "success": items were found (individual items may still need review)
   * "partial_failure": some items were dropped
   * "full_failure": the text held no recognizable items
4. DEBUG: 'rfq_extract_text' shows the text and the backend that produced it.

Text is tried with these backends in order: %s.
If none yields usable text the document is probably a scan and needs manual entry.`,
		s.maxFileSize/(1024*1024), strings.Join(s.Backends(), ", "))
}
