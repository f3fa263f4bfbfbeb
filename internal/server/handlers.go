package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/scanerr"
	"github.com/ironsheep/docscan-mcp/internal/scanner"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "document_scan").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// paramsError marks a tool failure caused by the caller's arguments.
type paramsError struct {
	err error
}

func (e *paramsError) Error() string { return e.err.Error() }
func (e *paramsError) Unwrap() error { return e.err }

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed or invalid arguments return code -32602; any other tool failure
// returns code -32000 with the error string as data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		entry := s.log.WithFields(logrus.Fields{"tool": params.Name, "error": err.Error()})
		if stage := scanerr.StageOf(err); stage != "" {
			entry = entry.WithField("stage", stage)
		}
		entry.Warn("tool failed")

		var pe *paramsError
		if errors.As(err, &pe) || errors.Is(err, scanerr.ErrInvalidConfiguration) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Merges pipeline overrides onto the server's base configuration
//  3. Loads images from cache as needed
//  4. Calls the scanner, imaging or ocr package
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Document Pipeline
	case "document_detect":
		return s.handleDocumentDetect(args)
	case "document_preview":
		return s.handleDocumentPreview(args)
	case "document_rectify":
		return s.handleDocumentRectify(args)
	case "document_scan":
		return s.handleDocumentScan(args)
	case "document_binarize":
		return s.handleDocumentBinarize(args)

	// OCR
	case "document_ocr":
		return s.handleDocumentOCR(args)

	default:
		return nil, &paramsError{fmt.Errorf("unknown tool: %s", name)}
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v. Absent arguments decode as
// an empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &paramsError{fmt.Errorf("invalid arguments: %w", err)}
	}
	return nil
}

// pipelineArgs are the optional configuration overrides every document tool
// accepts. Nil fields keep the server's base configuration.
type pipelineArgs struct {
	Threshold       *int     `json:"threshold"`
	Selection       *string  `json:"selection"`
	Epsilon         *float64 `json:"epsilon"`
	Candidates      *int     `json:"candidates"`
	DetectionHeight *int     `json:"detection_height"`
	Interpolation   *string  `json:"interpolation"`
	Binarize        *bool    `json:"binarize"`
	BlockSize       *int     `json:"block_size"`
	Offset          *float64 `json:"offset"`
}

// config merges the overrides onto base. binarize is used when the caller
// does not set the binarize field.
func (a pipelineArgs) config(base scanner.Config, binarize bool) *scanner.Config {
	cfg := base
	cfg.Binarize = binarize
	if a.Threshold != nil {
		cfg.Threshold = *a.Threshold
	}
	if a.Selection != nil {
		cfg.Selection = detection.Selection(*a.Selection)
	}
	if a.Epsilon != nil {
		cfg.Epsilon = *a.Epsilon
	}
	if a.Candidates != nil {
		cfg.Candidates = *a.Candidates
	}
	if a.DetectionHeight != nil {
		cfg.DetectionHeight = *a.DetectionHeight
	}
	if a.Interpolation != nil {
		cfg.Interpolation = imaging.Interpolation(*a.Interpolation)
	}
	if a.Binarize != nil {
		cfg.Binarize = *a.Binarize
	}
	if a.BlockSize != nil {
		cfg.BlockSize = *a.BlockSize
	}
	if a.Offset != nil {
		cfg.Offset = *a.Offset
	}
	return &cfg
}

// load returns the cached photograph at path and a scanner for the merged
// configuration.
func (s *Server) load(path string, a pipelineArgs, binarize bool) (image.Image, *scanner.Scanner, error) {
	if path == "" {
		return nil, nil, &paramsError{errors.New("path is required")}
	}
	sc, err := scanner.New(a.config(s.cfg, binarize), s.log.WithField("path", path))
	if err != nil {
		return nil, nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return img, sc, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Document Pipeline Handlers ===

type documentArgs struct {
	Path string `json:"path"`
	pipelineArgs
}

func (s *Server) handleDocumentDetect(args json.RawMessage) (interface{}, error) {
	var a documentArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, sc, err := s.load(a.Path, a.pipelineArgs, false)
	if err != nil {
		return nil, err
	}
	return sc.Detect(img)
}

type documentPreviewArgs struct {
	documentArgs
	Color        string `json:"color"`
	Thickness    int    `json:"thickness"`
	ShowVertices bool   `json:"show_vertices"`
}

// PreviewResult is the photograph with the detected outline drawn on it.
type PreviewResult struct {
	Detection *scanner.Detection    `json:"detection"`
	Image     *imaging.EncodedImage `json:"image"`
}

func (s *Server) handleDocumentPreview(args json.RawMessage) (interface{}, error) {
	var a documentPreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = imaging.DefaultOutlineColor
	}
	img, sc, err := s.load(a.Path, a.pipelineArgs, false)
	if err != nil {
		return nil, err
	}
	det, err := sc.Detect(img)
	if err != nil {
		return nil, err
	}

	outline := det.Corners.Points()
	polygon := outline[:]
	if a.ShowVertices {
		polygon = det.Vertices
	}
	encoded, err := imaging.EncodePNG(imaging.DrawOutline(img, polygon, a.Color, a.Thickness, true))
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Detection: det, Image: encoded}, nil
}

type documentRectifyArgs struct {
	documentArgs
	Corners    [][2]float64 `json:"corners"`
	OutputPath string       `json:"output_path"`
}

// DocumentResult is a pipeline run with its output raster.
type DocumentResult struct {
	*scanner.Result
	Image      *imaging.EncodedImage `json:"image"`
	OutputPath string                `json:"output_path,omitempty"`
}

func (s *Server) handleDocumentRectify(args json.RawMessage) (interface{}, error) {
	var a documentRectifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.runDocument(a, false)
}

func (s *Server) handleDocumentScan(args json.RawMessage) (interface{}, error) {
	var a documentRectifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.runDocument(a, true)
}

// runDocument rectifies the photograph at a.Path, detecting the corners
// unless the caller supplied them, and encodes the output raster.
func (s *Server) runDocument(a documentRectifyArgs, binarize bool) (*DocumentResult, error) {
	img, sc, err := s.load(a.Path, a.pipelineArgs, binarize)
	if err != nil {
		return nil, err
	}

	var res *scanner.Result
	if len(a.Corners) > 0 {
		if len(a.Corners) != 4 {
			return nil, &paramsError{fmt.Errorf("corners: got %d points, want 4", len(a.Corners))}
		}
		corners := make([]geometry.Point, len(a.Corners))
		for i, c := range a.Corners {
			corners[i] = geometry.Pt(c[0], c[1])
		}
		res, err = sc.Rectify(img, corners)
	} else {
		res, err = sc.Scan(img)
	}
	if err != nil {
		return nil, err
	}

	out := &DocumentResult{Result: res, OutputPath: a.OutputPath}
	if a.OutputPath != "" {
		if err := imaging.Save(res.Output(), a.OutputPath); err != nil {
			return nil, err
		}
	}
	if out.Image, err = imaging.EncodePNG(res.Output()); err != nil {
		return nil, err
	}
	return out, nil
}

type documentBinarizeArgs struct {
	Path       string   `json:"path"`
	BlockSize  *int     `json:"block_size"`
	Offset     *float64 `json:"offset"`
	OutputPath string   `json:"output_path"`
}

// BinarizeResult is the scan effect applied to a whole image.
type BinarizeResult struct {
	BlockSize  int                   `json:"block_size"`
	Offset     float64               `json:"offset"`
	Image      *imaging.EncodedImage `json:"image"`
	OutputPath string                `json:"output_path,omitempty"`
}

func (s *Server) handleDocumentBinarize(args json.RawMessage) (interface{}, error) {
	var a documentBinarizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, sc, err := s.load(a.Path, pipelineArgs{BlockSize: a.BlockSize, Offset: a.Offset}, true)
	if err != nil {
		return nil, err
	}
	scanned, err := sc.Binarize(img)
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		if err := imaging.Save(scanned, a.OutputPath); err != nil {
			return nil, err
		}
	}
	encoded, err := imaging.EncodePNG(scanned)
	if err != nil {
		return nil, err
	}
	return &BinarizeResult{
		BlockSize:  sc.Config().BlockSize,
		Offset:     sc.Config().Offset,
		Image:      encoded,
		OutputPath: a.OutputPath,
	}, nil
}

// === OCR Handlers ===

type documentOCRArgs struct {
	documentRectifyArgs
	Language string `json:"language"`
	Scan     *bool  `json:"scan"`
}

// DocumentText is the recognized text of a document.
type DocumentText struct {
	*ocr.OCRResult
	Language string `json:"language"`

	// Corners and dimensions of the scanned page; absent when the input
	// was read as-is.
	Corners *geometry.OrderedQuad `json:"corners,omitempty"`
	Width   int                   `json:"width"`
	Height  int                   `json:"height"`
}

func (s *Server) handleDocumentOCR(args json.RawMessage) (interface{}, error) {
	var a documentOCRArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = ocr.DefaultLanguage
	}

	out := &DocumentText{Language: a.Language}
	var page image.Image
	if a.Scan == nil || *a.Scan {
		doc, err := s.runDocument(a.documentRectifyArgs, true)
		if err != nil {
			return nil, err
		}
		page = doc.Output()
		out.Corners = &doc.Corners
	} else {
		img, _, err := s.load(a.Path, a.pipelineArgs, false)
		if err != nil {
			return nil, err
		}
		page = img
	}
	out.Width, out.Height = page.Bounds().Dx(), page.Bounds().Dy()

	text, err := ocr.ExtractText(page, a.Language)
	if err != nil {
		return nil, err
	}
	out.OCRResult = text
	return out, nil
}
