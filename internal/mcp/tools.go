package mcp

import "github.com/mark3labs/mcp-go/mcp"

const (
	idDesc    = "Meeting ULID. Use either id or siri."
	siriDesc  = "Meeting serial, e.g. \"4/2024\" (case and spacing are ignored). Use either id or siri."
	jenisDesc = "Meeting type: agm or exco. Narrows siri lookups and list filters."
)

var headerSchema = map[string]any{
	"title":  map[string]any{"type": "string", "description": "Association name shown under the document title"},
	"siri":   map[string]any{"type": "string", "description": "Serial, e.g. \"4/2024\""},
	"tarikh": map[string]any{"type": "string", "description": "Meeting date as written, e.g. \"15 Disember 2024\""},
	"masa":   map[string]any{"type": "string", "description": "Meeting time"},
	"tempat": map[string]any{"type": "string", "description": "Venue"},
	"jenis":  map[string]any{"type": "string", "enum": []string{"agm", "exco"}},
}

var newToolDef = mcp.NewTool("meeting_new",
	mcp.WithDescription("Create a meeting from the default minutes record, with optional header fields."),
	mcp.WithObject("header", mcp.Description("Header fields to set"), mcp.Properties(headerSchema)),
)

var storeToolDef = mcp.NewTool("meeting_store",
	mcp.WithDescription("Store a complete minutes record as a new meeting. Missing keys are filled with empty values."),
	mcp.WithObject("record", mcp.Required(), mcp.Description("Minutes record (Header, Attendance, ChairmanAddress, ApprovalOfPrevMinutes, MattersArising, Reports, NewMatters, Closing, Annex). May also be given as a JSON string.")),
)

var fetchToolDef = mcp.NewTool("meeting_fetch",
	mcp.WithDescription("Fetch a meeting and its full minutes record."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Description(idDesc)),
	mcp.WithString("siri", mcp.Description(siriDesc)),
	mcp.WithString("jenis", mcp.Description(jenisDesc)),
	mcp.WithBoolean("include_deleted", mcp.Description("Also match soft-deleted meetings")),
)

var updateToolDef = mcp.NewTool("meeting_update",
	mcp.WithDescription("Replace a meeting's record and/or patch its header fields."),
	mcp.WithString("id", mcp.Description(idDesc)),
	mcp.WithString("siri", mcp.Description(siriDesc)),
	mcp.WithString("jenis", mcp.Description(jenisDesc)),
	mcp.WithObject("record", mcp.Description("Replacement minutes record (object or JSON string)")),
	mcp.WithObject("header", mcp.Description("Header fields to change, applied after any replacement"), mcp.Properties(headerSchema)),
)

var deleteToolDef = mcp.NewTool("meeting_delete",
	mcp.WithDescription("Soft-delete a meeting. It can be listed with include_deleted until purged."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Description(idDesc)),
	mcp.WithString("siri", mcp.Description(siriDesc)),
	mcp.WithString("jenis", mcp.Description(jenisDesc)),
)

var latestToolDef = mcp.NewTool("meeting_latest",
	mcp.WithDescription("Get the most recently updated meeting."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("jenis", mcp.Description(jenisDesc)),
	mcp.WithBoolean("include_record", mcp.Description("Include the full minutes record (default false)")),
	mcp.WithBoolean("include_deleted", mcp.Description("Also consider soft-deleted meetings")),
)

var listToolDef = mcp.NewTool("meeting_list",
	mcp.WithDescription("List meeting summaries, most recently updated first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("jenis", mcp.Description(jenisDesc)),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted meetings")),
)

var purgeToolDef = mcp.NewTool("meeting_purge",
	mcp.WithDescription("Permanently remove soft-deleted meetings."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge meetings deleted more than this many days ago")),
)

var nextToolDef = mcp.NewTool("meeting_next",
	mcp.WithDescription("Derive the next meeting's draft minutes from previous minutes: serial incremented, attendance and standing reports carried, "+
		"new matters and unresolved matters arising carried as matters arising. The source is a stored meeting (id, siri or latest), "+
		"a document, or a file path. Any historical layout is accepted."),
	mcp.WithString("id", mcp.Description(idDesc)),
	mcp.WithString("siri", mcp.Description(siriDesc)),
	mcp.WithString("jenis", mcp.Description(jenisDesc)),
	mcp.WithBoolean("latest", mcp.Description("Use the most recently updated meeting (optionally of jenis) as the source")),
	mcp.WithString("document", mcp.Description("Previous minutes as JSON or YAML text. Pass text rather than an object so key order is preserved.")),
	mcp.WithString("format", mcp.Description("Format of document"), mcp.Enum("json", "yaml")),
	mcp.WithString("path", mcp.Description("Path to a .json/.yaml/.yml file in an allowed directory")),
	mcp.WithBoolean("dry_run", mcp.Description("Return the draft without storing it")),
)

var renderToolDef = mcp.NewTool("meeting_render",
	mcp.WithDescription("Render a meeting as a Markdown or HTML minutes document. Failures are reported as status \"failed\" with a diagnostic."),
	mcp.WithString("id", mcp.Description(idDesc)),
	mcp.WithString("siri", mcp.Description(siriDesc)),
	mcp.WithString("jenis", mcp.Description(jenisDesc)),
	mcp.WithString("format", mcp.Description("Output format (default from path extension, else md)"), mcp.Enum("md", "html")),
	mcp.WithString("path", mcp.Description("Output .md/.html path (default <base>/exports/<siri>-<jenis>.<ext>)")),
)

var exportToolDef = mcp.NewTool("meeting_export",
	mcp.WithDescription("Write a meeting's record to a .json or .yaml file."),
	mcp.WithString("id", mcp.Description(idDesc)),
	mcp.WithString("siri", mcp.Description(siriDesc)),
	mcp.WithString("jenis", mcp.Description(jenisDesc)),
	mcp.WithString("path", mcp.Description("Output .json/.yaml/.yml path (default <base>/exports/<siri>-<jenis>.json)")),
	mcp.WithBoolean("include_deleted", mcp.Description("Also match soft-deleted meetings")),
)

var attendanceImportToolDef = mcp.NewTool("meeting_attendance_import",
	mcp.WithDescription("Add attendees from CSV. Columns: nama (required), siri, jawatan, singkatan, hadir, sebab. "+
		"hadir values true/1/t/yes/ya/hadir mark present; without a hadir column everyone is present."),
	mcp.WithString("id", mcp.Description(idDesc)),
	mcp.WithString("siri", mcp.Description(siriDesc)),
	mcp.WithString("jenis", mcp.Description(jenisDesc)),
	mcp.WithString("csv", mcp.Description("CSV content")),
	mcp.WithString("path", mcp.Description("Path to a .csv file in an allowed directory")),
	mcp.WithBoolean("replace", mcp.Description("Replace both attendance lists instead of appending")),
)
