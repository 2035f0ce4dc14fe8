package descriptions

// Tool descriptions shown to MCP clients, with examples and workflows

const (
	RFQExtractItemsDescription = `Extract furniture line items from an RFQ (request for quotation) PDF.

**When to use:** A client sent an RFQ document and you need its items as structured data: title, length, depth and height in inches, quantity, primary material, finishes and construction notes.

**Why it's useful:** Handles the layouts RFQs arrive in ("Item 1:" / "Line 1:" blocks, pipe or tab tables, "Line 1 - ..." invoice lines, numbered lists, separator lines) and repairs broken text layers where every letter is split apart. Items that are missing critical data are kept but flagged with status "needs_review" and a review_reason.

**Examples:**
• Quote preparation: "Extract items from rfq-hotel-lobby.pdf so I can price them"
• Data entry check: "Which items in acme-rfq.pdf need review?"
• Integration: "Get the items of rfq-2024-017.pdf as JSON"

**Common workflows:**
1. Quoting: rfq_extract_items → review flagged items → correct missing dimensions → price
2. Troubleshooting: rfq_extract_items returns few items → rfq_extract_text to see the raw text

**Best practices:** Use format "json" when the output feeds another system. If the call fails with "could not extract text" the PDF is most likely a scan and must be entered manually.`

	RFQExtractTextDescription = `Show the text that item extraction works on, and which backend produced it.

**When to use:** Items came back incomplete or with placeholder titles and you want to see what was actually read from the PDF.

**Why it's useful:** Text is tried with several backends in order (pdftotext layout, raw and stream modes, a native Go parser, a Python script, a content stream scan). The response names the backend that won and whether the text was fragmented.

**Examples:**
• "Show me the text of rfq.pdf"
• "Get the raw, unnormalized text of vendor-rfq.pdf"

**Best practices:** Set raw to true to see the text exactly as the backend returned it.`

	RFQValidateFileDescription = `Verify that a file is a readable PDF within the configured size limit.

**When to use:** Before extraction when handling uploads of unknown quality, or to explain why extraction was rejected.

**Checks:** the file exists inside the configured directory, is not a directory, has a .pdf extension, is not empty, is within the size limit and starts with a %PDF- header.`

	RFQServerInfoDescription = `Get server information: version, configured directory, extraction backends, available RFQ documents and a usage guide.

**When to use:** At the start of a session to discover which RFQ documents are available and how the tools fit together.`
)
