package main

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"strings"

	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
)

func newMCPServer() *server.MCPServer {
	s := server.NewMCPServer(
		"DX7 Dump MCP",
		version,
		server.WithToolCapabilities(false),
	)

	docTool := mcp.NewTool("dx7_describe-sysex",
		mcp.WithDescription("Returns the layout of the Yamaha DX7 32-voice bulk dump format."),
	)
	s.AddTool(docTool, docToolHandler)

	listTool := mcp.NewTool("dx7_list-voices",
		mcp.WithDescription("Lists the 32 voice names of a DX7 bank file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to a 4104 byte .syx bulk dump.")),
	)
	s.AddTool(listTool, listVoicesHandler)

	getVoiceTool := mcp.NewTool("dx7_get-voice",
		mcp.WithDescription("Decodes one voice of a DX7 bank file to JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to a 4104 byte .syx bulk dump.")),
		mcp.WithNumber("voice", mcp.Required(), mcp.Description("The voice number (1-32).")),
	)
	s.AddTool(getVoiceTool, getVoiceHandler)

	dupesTool := mcp.NewTool("dx7_find-dupes",
		mcp.WithDescription("Finds voices in a DX7 bank that are identical apart from their names."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to a 4104 byte .syx bulk dump.")),
	)
	s.AddTool(dupesTool, findDupesHandler)

	schemaTool := mcp.NewTool("dx7_voice-schema",
		mcp.WithDescription("Returns the JSON schema of the documents produced by dx7_get-voice."),
	)
	s.AddTool(schemaTool, voiceSchemaHandler)

	return s
}

func runMCP() error {
	log.Println("Starting DX7 MCP server...")
	return errors.Wrap(server.ServeStdio(newMCPServer()), "server error")
}

// loadVerifiedBank is the common preamble of the bank tools.
func loadVerifiedBank(request mcp.CallToolRequest) (*Bank, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return nil, err
	}
	bank, err := ReadBankFile(path)
	if err != nil {
		return nil, err
	}
	if err := Verify(bank); err != nil {
		return nil, err
	}
	return bank, nil
}

//go:embed dx7_sysex_format.txt
var sysexDoc string

func docToolHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling SysEx documentation request.")

	return mcp.NewToolResultText(sysexDoc), nil
}

func listVoicesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling list voices request.")

	bank, err := loadVerifiedBank(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	if err := WriteShort(&sb, bank); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getVoiceHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling get voice request.")

	bank, err := loadVerifiedBank(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := request.RequireFloat("voice")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if f != math.Trunc(f) || f < 1 || f > VoiceCount {
		return mcp.NewToolResultError("voice must be a whole number in range 1-32"), nil
	}
	n := int(f)

	asJson, err := json.MarshalIndent(NewVoiceDoc(n, bank.Voice(n)), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal voice to JSON")
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func findDupesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling find dupes request.")

	bank, err := loadVerifiedBank(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pairs := FindDupes(bank)
	if len(pairs) == 0 {
		return mcp.NewToolResultText("No duplicate voices."), nil
	}
	var sb strings.Builder
	if err := WriteDupes(&sb, pairs); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func voiceSchemaHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	schema, err := VoiceSchema()
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(schema)), nil
}
