package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// HeaderRequest carries optional header fields.
type HeaderRequest struct {
	Title  *string `json:"title,omitempty"`
	Siri   *string `json:"siri,omitempty"`
	Tarikh *string `json:"tarikh,omitempty"`
	Masa   *string `json:"masa,omitempty"`
	Tempat *string `json:"tempat,omitempty"`
	Jenis  *string `json:"jenis,omitempty"`
}

func (r *HeaderRequest) patch() ops.HeaderPatch {
	if r == nil {
		return ops.HeaderPatch{}
	}
	return ops.HeaderPatch{
		Title:  r.Title,
		Siri:   r.Siri,
		Tarikh: r.Tarikh,
		Masa:   r.Masa,
		Tempat: r.Tempat,
		Jenis:  r.Jenis,
	}
}

// NewRequest represents the arguments for meeting_new.
type NewRequest struct {
	Header *HeaderRequest `json:"header,omitempty"`
}

// StoreRequest represents the arguments for meeting_store.
type StoreRequest struct {
	Record json.RawMessage `json:"record"`
}

// AddressRequest identifies a meeting by id or by siri and jenis.
type AddressRequest struct {
	ID    string `json:"id,omitempty"`
	Siri  string `json:"siri,omitempty"`
	Jenis string `json:"jenis,omitempty"`
}

// FetchRequest represents the arguments for meeting_fetch.
type FetchRequest struct {
	AddressRequest
	IncludeDeleted bool `json:"include_deleted,omitempty"`
}

// UpdateRequest represents the arguments for meeting_update.
type UpdateRequest struct {
	AddressRequest
	Record json.RawMessage `json:"record,omitempty"`
	Header *HeaderRequest  `json:"header,omitempty"`
}

// DeleteRequest represents the arguments for meeting_delete.
type DeleteRequest struct {
	AddressRequest
}

// LatestRequest represents the arguments for meeting_latest.
type LatestRequest struct {
	Jenis          string `json:"jenis,omitempty"`
	IncludeRecord  bool   `json:"include_record,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// ListRequest represents the arguments for meeting_list.
type ListRequest struct {
	Jenis          string `json:"jenis,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// PurgeRequest represents the arguments for meeting_purge.
type PurgeRequest struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// NextRequest represents the arguments for meeting_next.
type NextRequest struct {
	AddressRequest
	Latest   bool            `json:"latest,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
	Format   string          `json:"format,omitempty"`
	Path     string          `json:"path,omitempty"`
	DryRun   bool            `json:"dry_run,omitempty"`
}

// RenderRequest represents the arguments for meeting_render.
type RenderRequest struct {
	AddressRequest
	Format string `json:"format,omitempty"`
	Path   string `json:"path,omitempty"`
}

// ExportRequest represents the arguments for meeting_export.
type ExportRequest struct {
	AddressRequest
	Path           string `json:"path,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// AttendanceImportRequest represents the arguments for meeting_attendance_import.
type AttendanceImportRequest struct {
	AddressRequest
	CSV     string `json:"csv,omitempty"`
	Path    string `json:"path,omitempty"`
	Replace bool   `json:"replace,omitempty"`
}

// Handler implementations

// HandleNew handles the meeting_new tool call.
func (h *Handlers) HandleNew(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.New(ctx, h.db, h.cfg, ops.NewInput{Header: input.Header.patch()})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStore handles the meeting_store tool call.
func (h *Handlers) HandleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	record, err := documentBytes(input.Record)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Store(ctx, h.db, h.cfg, ops.StoreInput{RecordJSON: record})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the meeting_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:             input.ID,
		Siri:           input.Siri,
		Jenis:          input.Jenis,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the meeting_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	record, err := documentBytes(input.Record)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Update(ctx, h.db, h.cfg, ops.UpdateInput{
		ID:         input.ID,
		Siri:       input.Siri,
		Jenis:      input.Jenis,
		RecordJSON: record,
		Header:     input.Header.patch(),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the meeting_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{
		ID:    input.ID,
		Siri:  input.Siri,
		Jenis: input.Jenis,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLatest handles the meeting_latest tool call.
func (h *Handlers) HandleLatest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LatestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Latest(ctx, h.db, ops.LatestInput{
		Jenis:          input.Jenis,
		IncludeRecord:  input.IncludeRecord,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the meeting_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Jenis:          input.Jenis,
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge handles the meeting_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNext handles the meeting_next tool call.
func (h *Handlers) HandleNext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NextRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	document, err := documentBytes(input.Document)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Next(ctx, h.db, h.cfg, ops.NextInput{
		ID:             input.ID,
		Siri:           input.Siri,
		Jenis:          input.Jenis,
		Latest:         input.Latest,
		Document:       document,
		DocumentFormat: input.Format,
		Path:           input.Path,
		DryRun:         input.DryRun,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRender handles the meeting_render tool call.
func (h *Handlers) HandleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenderRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Render(ctx, h.db, h.cfg, ops.RenderInput{
		ID:     input.ID,
		Siri:   input.Siri,
		Jenis:  input.Jenis,
		Format: input.Format,
		Path:   input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the meeting_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		ID:             input.ID,
		Siri:           input.Siri,
		Jenis:          input.Jenis,
		IncludeDeleted: input.IncludeDeleted,
		Path:           input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAttendanceImport handles the meeting_attendance_import tool call.
func (h *Handlers) HandleAttendanceImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AttendanceImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var csvData []byte
	if input.CSV != "" {
		csvData = []byte(input.CSV)
	}
	result, err := ops.ImportAttendance(ctx, h.db, h.cfg, ops.AttendanceImportInput{
		ID:      input.ID,
		Siri:    input.Siri,
		Jenis:   input.Jenis,
		Path:    input.Path,
		CSV:     csvData,
		Replace: input.Replace,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var minitErr *errors.MinitError
	if stderrors.As(err, &minitErr) {
		message := minitErr.Message
		if err != error(minitErr) {
			// Keep wrapping context such as the failing field.
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    minitErr.Code,
			"message": message,
			"status":  minitErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if minitErr.Code != errors.ErrInternal && minitErr.Details != nil {
			errorObj["details"] = minitErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
