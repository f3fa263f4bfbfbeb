package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"document_detect",
		"document_preview",
		"document_rectify",
		"document_scan",
		"document_binarize",
		"document_ocr",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || props == nil {
				t.Fatal("InputSchema properties missing")
			}

			// Every tool works on an image file
			required, ok := tool.InputSchema["required"].([]string)
			if !ok || len(required) == 0 || required[0] != "path" {
				t.Errorf("required: got %v, want [path]", tool.InputSchema["required"])
			}
			if _, ok := props["path"]; !ok {
				t.Error("path property missing")
			}
		})
	}
}

func TestToolDefinitions_PipelineDefaults(t *testing.T) {
	tools := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		tools[tool.Name] = tool
	}

	// Verify defaults match the handler behavior
	tests := []struct {
		tool  string
		param string
		want  interface{}
	}{
		{"document_detect", "threshold", 60},
		{"document_detect", "selection", "best_quad"},
		{"document_detect", "candidates", 5},
		{"document_rectify", "interpolation", "bilinear"},
		{"document_rectify", "binarize", false},
		{"document_scan", "binarize", true},
		{"document_scan", "block_size", 51},
		{"document_scan", "offset", 10.0},
		{"document_binarize", "block_size", 51},
		{"document_preview", "color", "#00FF00"},
		{"document_preview", "thickness", 3},
		{"document_ocr", "language", "eng"},
		{"document_ocr", "scan", true},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"."+tt.param, func(t *testing.T) {
			props := tools[tt.tool].InputSchema["properties"].(map[string]interface{})
			param, ok := props[tt.param].(map[string]interface{})
			if !ok {
				t.Fatalf("%s has no %s parameter", tt.tool, tt.param)
			}
			if got := param["default"]; got != tt.want {
				t.Errorf("default: got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestToolDefinitions_SelectionEnum(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		sel, ok := props["selection"].(map[string]interface{})
		if !ok {
			continue
		}
		enum, ok := sel["enum"].([]string)
		if !ok || len(enum) != 2 || enum[0] != "best_quad" || enum[1] != "largest_area" {
			t.Errorf("%s selection enum: got %v", tool.Name, sel["enum"])
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
