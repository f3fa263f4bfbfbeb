package server

import (
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func outputPathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Optional file to also write the result to. Format follows the extension (.png, .jpg, .tif, .bmp)",
	}
}

// pipelineProperties returns the schema of the configuration overrides shared
// by the document tools, merged with extra.
func pipelineProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProperty(),
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Luminance cutoff (0-255) separating the bright document from the background. Default 60",
			"default":     detection.DefaultThreshold,
		},
		"selection": map[string]interface{}{
			"type":        "string",
			"enum":        []string{string(detection.BestQuad), string(detection.LargestArea)},
			"description": "How the document is picked among the bright regions. best_quad tries the largest regions until one approximates to four corners; largest_area takes the largest region",
			"default":     string(detection.BestQuad),
		},
		"epsilon": map[string]interface{}{
			"type":        "number",
			"description": "Polygon approximation tolerance as a fraction of the outline length. 0 selects the mode default (0.02 best_quad, 0.009 largest_area)",
			"default":     0.0,
		},
		"candidates": map[string]interface{}{
			"type":        "integer",
			"description": "Number of largest regions best_quad tries. Default 5",
			"default":     detection.DefaultCandidates,
		},
		"detection_height": map[string]interface{}{
			"type":        "integer",
			"description": "Detect on a copy resized to this height, then rectify at full resolution. 0 detects at full resolution",
			"default":     0,
		},
		"interpolation": map[string]interface{}{
			"type":        "string",
			"enum":        []string{string(imaging.Bilinear), string(imaging.Nearest)},
			"description": "Resampling used by the rectifier",
			"default":     string(imaging.Bilinear),
		},
		"block_size": map[string]interface{}{
			"type":        "integer",
			"description": "Odd window size (>= 3) of the adaptive scan threshold. Default 51",
			"default":     imaging.DefaultBlockSize,
		},
		"offset": map[string]interface{}{
			"type":        "number",
			"description": "Constant subtracted from the local mean by the scan threshold. Default 10",
			"default":     imaging.DefaultOffset,
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

var cornersProperty = map[string]interface{}{
	"type":        "array",
	"description": "Optional four document corners as [x, y] pairs in any order. Skips detection",
	"items": map[string]interface{}{
		"type":     "array",
		"items":    map[string]interface{}{"type": "number"},
		"minItems": 2,
		"maxItems": 2,
	},
	"minItems": 4,
	"maxItems": 4,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Document Pipeline
		{
			Name:        "document_detect",
			Description: "Find the document in a photograph of a bright page on a darker background. Returns the ordered corners (top-left, top-right, bottom-right, bottom-left), the approximated polygon, and the area and perimeter of the outline.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pipelineProperties(nil),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "document_preview",
			Description: "Detect the document and return the photograph with its outline and numbered corners drawn on it as base64-encoded PNG. Use this to check a detection before rectifying.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": pipelineProperties(map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex (#RRGGBB or #RRGGBBAA)",
						"default":     imaging.DefaultOutlineColor,
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Outline thickness in pixels",
						"default":     imaging.DefaultOutlineThickness,
					},
					"show_vertices": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw the approximated polygon instead of the ordered corners",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_rectify",
			Description: "Flatten the document into a top-down rectangle sized from its corners and return it as base64-encoded PNG. Corners are detected unless given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": pipelineProperties(map[string]interface{}{
					"corners":     cornersProperty,
					"output_path": outputPathProperty(),
					"binarize": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply the scan effect to the rectified page",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_scan",
			Description: "Run the full pipeline: detect, rectify and apply the black-and-white scan effect. Returns the page as base64-encoded PNG with its corners and paper color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": pipelineProperties(map[string]interface{}{
					"corners":     cornersProperty,
					"output_path": outputPathProperty(),
					"binarize": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply the scan effect. Set false to get the color rectified page",
						"default":     true,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_binarize",
			Description: "Apply only the scan effect (adaptive Gaussian threshold) to a whole image, for pages that are already flat.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"block_size": map[string]interface{}{
						"type":        "integer",
						"description": "Odd window size (>= 3). Default 51",
						"default":     imaging.DefaultBlockSize,
					},
					"offset": map[string]interface{}{
						"type":        "number",
						"description": "Constant subtracted from the local mean. Default 10",
						"default":     imaging.DefaultOffset,
					},
					"output_path": outputPathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// OCR
		{
			Name:        "document_ocr",
			Description: "Scan the document and extract its text with Tesseract. Returns full text, text lines and word bounding boxes with confidence scores in page coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": pipelineProperties(map[string]interface{}{
					"corners": cornersProperty,
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (e.g., 'eng', 'deu', 'eng+fra'). Default 'eng'",
						"default":     ocr.DefaultLanguage,
					},
					"scan": map[string]interface{}{
						"type":        "boolean",
						"description": "Scan the document first. Set false to read the image as-is",
						"default":     true,
					},
				}),
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
