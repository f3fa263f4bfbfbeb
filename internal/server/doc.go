// Package server implements the MCP (Model Context Protocol) server for the
// document scanner.
//
// This package provides a JSON-RPC 2.0 server that exposes the scanning
// pipeline through the MCP protocol, so an MCP client can turn photographs
// of paper documents into flat, scanned-looking pages and read their text.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Document Pipeline:
//   - document_detect: Find the document and order its corners
//   - document_preview: Draw the detected outline on the photograph
//   - document_rectify: Flatten the document, with detected or given corners
//   - document_scan: Detect, flatten and binarize in one call
//   - document_binarize: Apply only the scan effect
//
// OCR:
//   - document_ocr: Scan the document and extract its text
//
// Every document tool accepts the scanner.Config fields (threshold,
// selection, epsilon, candidates, detection_height, interpolation, binarize,
// block_size, offset) as optional arguments. They override the base
// configuration the server was started with.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, so trying several thresholds
// on one photograph decodes it once. The cache persists for the lifetime of
// the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed or rejected arguments, including
//     scanerr.ErrInvalidConfiguration; -32000 for any other failure
//   - message: Human-readable error description
//   - data: The Go error string, which names the failed pipeline stage
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv, err := server.New(version, cfg, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
