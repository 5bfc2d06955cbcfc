package server

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/mcp"

	"github.com/joeblew999/plat-mailfix/internal/logic/repair"
	"github.com/joeblew999/plat-mailfix/internal/svc"
	"github.com/joeblew999/plat-mailfix/internal/types"
	"github.com/joeblew999/plat-mailfix/pkg/quality"
)

// RegisterMCPTools registers all MCP tools for template repair.
func RegisterMCPTools(s mcp.McpServer, svcCtx *svc.ServiceContext) {
	registerRepairTool(s, svcCtx)
	registerButtonsTool(s, svcCtx)
	registerDownloadTool(s, svcCtx)
	registerChecksResource(s)
}

var htmlProperty = map[string]any{
	"type":        "string",
	"description": "Complete email template HTML (or an MJML source starting with <mjml> for repair_template)",
}

func registerRepairTool(s mcp.McpServer, svcCtx *svc.ServiceContext) {
	s.RegisterTool(mcp.Tool{
		Name:        "repair_template",
		Description: "Repair and validate an HTML email template. Returns the optimized HTML, every check with its status, proposed closing-tag fixes and a confidence score.",
		InputSchema: mcp.InputSchema{
			Properties: map[string]any{
				"html": htmlProperty,
				"checklist": map[string]any{
					"type":        "string",
					"enum":        []string{"standard", "themed"},
					"description": "Checklist variant (default standard)",
				},
				"preheaderText": map[string]any{
					"type":        "string",
					"description": "Inbox preview text to insert when the template has no preheader",
				},
				"removeFonts": map[string]any{
					"type":        "boolean",
					"description": "Strip web font imports and add fallback font stacks",
				},
				"titleText": map[string]any{
					"type":        "string",
					"description": "Document title to enforce",
				},
			},
			Required: []string{"html"},
		},
		Handler: func(ctx context.Context, p map[string]any) (any, error) {
			var args types.RepairRequest
			if err := mcp.ParseArguments(p, &args); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}

			resp, err := repair.NewRepairLogic(ctx, svcCtx).Repair(&args)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			return resp, nil
		},
	})
}

func registerButtonsTool(s mcp.McpServer, svcCtx *svc.ServiceContext) {
	s.RegisterTool(mcp.Tool{
		Name:        "extract_buttons",
		Description: "List the call-to-action buttons of an email template with their colors, size and Outlook VML status.",
		InputSchema: mcp.InputSchema{
			Properties: map[string]any{
				"html": htmlProperty,
			},
			Required: []string{"html"},
		},
		Handler: func(ctx context.Context, p map[string]any) (any, error) {
			var args types.ButtonsRequest
			if err := mcp.ParseArguments(p, &args); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}

			resp, err := repair.NewButtonsLogic(ctx, svcCtx).Buttons(&args)
			if err != nil {
				return nil, fmt.Errorf("extract buttons failed: %w", err)
			}
			return resp, nil
		},
	})
}

func registerDownloadTool(s mcp.McpServer, svcCtx *svc.ServiceContext) {
	s.RegisterTool(mcp.Tool{
		Name:        "prepare_download",
		Description: "Strip CMS editor residue (contenteditable, data-qa-*, data-editor-*, empty class attributes) from a template before it is exported.",
		InputSchema: mcp.InputSchema{
			Properties: map[string]any{
				"html": htmlProperty,
			},
			Required: []string{"html"},
		},
		Handler: func(ctx context.Context, p map[string]any) (any, error) {
			var args types.DownloadRequest
			if err := mcp.ParseArguments(p, &args); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}

			resp, err := repair.NewDownloadLogic(ctx, svcCtx).Download(&args)
			if err != nil {
				return nil, fmt.Errorf("prepare download failed: %w", err)
			}
			return resp, nil
		},
	})
}

func registerChecksResource(s mcp.McpServer) {
	s.RegisterResource(mcp.Resource{
		Name:        "checks",
		URI:         "mailfix://checks",
		Description: "Quality checks run on every template",
		MimeType:    "text/plain",
		Handler: func(ctx context.Context) (mcp.ResourceContent, error) {
			content := "Quality checks:\n"
			for _, d := range quality.Descriptions() {
				content += fmt.Sprintf("- %s: %s\n", d.ID, d.Summary)
			}

			return mcp.ResourceContent{
				URI:      "mailfix://checks",
				MimeType: "text/plain",
				Text:     content,
			}, nil
		},
	})
}
