package config

import "github.com/conn-castle/pkgctl/internal/messages"

// FieldType is the value kind a config key accepts.
type FieldType string

const (
	// FieldEnum values must match one of Options.
	FieldEnum FieldType = "enum"
	// FieldFreetext values are unconstrained strings.
	FieldFreetext FieldType = "freetext"
	// FieldPath accepts a filesystem path.
	FieldPath FieldType = "path"
	// FieldDuration accepts a Go duration string.
	FieldDuration FieldType = "duration"
	// FieldPositiveInt values are integers greater than zero.
	FieldPositiveInt FieldType = "positive_int"
)

// FieldOption is one accepted value of an enum key.
type FieldOption struct {
	Value       string
	Description string
}

// FieldDef is the catalog entry for one config key.
type FieldDef struct {
	Key     string
	Type    FieldType
	Env     string // overriding environment variable, if any
	Options []FieldOption
}

// fields is the ordered registry of config fields with constrained values.
var fields = []FieldDef{
	{
		Key:  "service.transport",
		Type: FieldEnum,
		Env:  EnvTransport,
		Options: []FieldOption{
			{Value: TransportCommand, Description: messages.ConfigTransportCommandDescription},
			{Value: TransportHTTP, Description: messages.ConfigTransportHTTPDescription},
			{Value: TransportLongPoll, Description: messages.ConfigTransportLongPollDescription},
		},
	},
	{Key: "service.endpoint", Type: FieldFreetext, Env: EnvEndpoint},
	{Key: "service.poll_wait", Type: FieldDuration},
	{Key: "system.sysroot", Type: FieldPath, Env: EnvSysroot},
	{Key: "system.osname", Type: FieldFreetext, Env: EnvOSName},
	{Key: "system.state_file", Type: FieldPath},
	{Key: "system.peer_lock", Type: FieldPath},
	{
		Key:  "output.diff_format",
		Type: FieldEnum,
		Options: []FieldOption{
			{Value: DiffFormatSummary, Description: messages.ConfigDiffSummaryDescription},
			{Value: DiffFormatUnified, Description: messages.ConfigDiffUnifiedDescription},
		},
	},
	{Key: "output.diff_max_lines", Type: FieldPositiveInt},
	{
		Key:     "output.color",
		Type:    FieldEnum,
		Options: []FieldOption{{Value: ColorAuto}, {Value: ColorAlways}, {Value: ColorNever}},
	},
	{
		Key:     "log.level",
		Type:    FieldEnum,
		Env:     EnvLogLevel,
		Options: []FieldOption{{Value: "debug"}, {Value: "info"}, {Value: "warn"}, {Value: "error"}},
	},
	{
		Key:     "log.format",
		Type:    FieldEnum,
		Options: []FieldOption{{Value: "console"}, {Value: "json"}},
	},
}

var fieldByKey = indexFields(fields)

func indexFields(defs []FieldDef) map[string]int {
	byKey := make(map[string]int, len(defs))
	for i, def := range defs {
		byKey[def.Key] = i
	}
	return byKey
}

// LookupField returns the catalog entry for key, or false for an unknown key.
func LookupField(key string) (FieldDef, bool) {
	i, ok := fieldByKey[key]
	if !ok {
		return FieldDef{}, false
	}
	return copyFieldDef(fields[i]), true
}

// Fields returns the catalog in declaration order. Entries are copies.
func Fields() []FieldDef {
	out := make([]FieldDef, len(fields))
	for i, f := range fields {
		out[i] = copyFieldDef(f)
	}
	return out
}

// FieldOptionValues lists the accepted values of an enum key; nil otherwise.
func FieldOptionValues(key string) []string {
	f, ok := LookupField(key)
	if !ok || len(f.Options) == 0 {
		return nil
	}
	values := make([]string, len(f.Options))
	for i, opt := range f.Options {
		values[i] = opt.Value
	}
	return values
}

// isValidOption reports whether value is one of the options for key.
func isValidOption(key string, value string) bool {
	for _, opt := range FieldOptionValues(key) {
		if opt == value {
			return true
		}
	}
	return false
}

// copyFieldDef detaches Options from the catalog.
func copyFieldDef(f FieldDef) FieldDef {
	if len(f.Options) > 0 {
		opts := make([]FieldOption, len(f.Options))
		copy(opts, f.Options)
		f.Options = opts
	}
	return f
}
