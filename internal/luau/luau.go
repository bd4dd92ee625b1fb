// Package luau renders the Luau sources of a game package.
//
// Rendering is pure: the same view, build id and options always produce
// byte-identical files.
package luau

import (
	"bytes"
	"embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"
)

// Generated file names.
const (
	IntegrationScriptFile = "MMLNetworkIntegration.server.lua"
	ContainerScriptFile   = "CreateContainers.server.lua"
	SetupScriptFile       = "MMLSetup.server.lua"
	ConfigModuleFile      = "MMLConfig.lua"
	ContainerRuntimeFile  = "MMLContainerRuntime.server.lua"
)

// NoContainersNotice is emitted by the container script of a game without containers.
const NoContainersNotice = "No containers found for this game."

// PackagePrefix prefixes the package name and the artifact file name.
const PackagePrefix = "MMLNetwork_"

// GameView is the part of a game the renderer needs.
type GameView struct {
	ID         string
	Name       string
	APIKey     string
	Containers []ContainerView
}

type ContainerView struct {
	ID       string
	Name     string
	Type     string
	Position *Vector3 // nil renders as the origin
}

type Vector3 struct {
	X, Y, Z float64
}

// Options are the tunables embedded into the generated sources.
type Options struct {
	APIBaseURL         string
	UpdateInterval     time.Duration // default: 30s
	DebugMode          bool
	EnablePositionSync bool
}

func (o *Options) updateInterval() time.Duration {
	if o == nil || o.UpdateInterval <= 0 {
		return 30 * time.Second
	}
	return o.UpdateInterval
}

// Files maps a generated file name to its source text.
type Files map[string]string

// Marker returns the comment line that opens every generated file.
func Marker(buildID string) string {
	return "-- BUILD_ID: " + commentText(buildID)
}

// PackageName returns the package name of a game, e.g. "MMLNetwork_My_Game_".
func PackageName(gameName string) string {
	return PackagePrefix + Sanitize(gameName)
}

// Render renders every generated file of a game package.
func Render(view *GameView, buildID string, opts *Options) Files {
	if opts == nil {
		opts = &Options{}
	}

	data := &renderData{
		BuildID:     buildID,
		Marker:      Marker(buildID),
		Game:        view,
		PackageName: PackageName(view.Name),
		Options:     opts,
		Interval:    formatNumber(opts.updateInterval().Seconds()),
	}

	return Files{
		IntegrationScriptFile: execute("integration.lua.tmpl", &integrationData{
			renderData:    data,
			APIKeyLiteral: apiKeyLiteral(view.APIKey),
		}),
		ContainerScriptFile: execute("containers.lua.tmpl", data),
		SetupScriptFile:     execute("setup.lua.tmpl", data),
		ConfigModuleFile:    execute("config.lua.tmpl", data),
	}
}

// RenderBootstrap renders the server script of a bootstrap model. Like the
// integration script it carries the game's API key.
func RenderBootstrap(view *GameView, buildID string, opts *Options) string {
	if opts == nil {
		opts = &Options{}
	}

	return execute("bootstrap.lua.tmpl", &integrationData{
		renderData: &renderData{
			BuildID:     buildID,
			Marker:      Marker(buildID),
			Game:        view,
			PackageName: PackageName(view.Name),
			Options:     opts,
			Interval:    formatNumber(opts.updateInterval().Seconds()),
		},
		APIKeyLiteral: apiKeyLiteral(view.APIKey),
	})
}

// RenderContainerRuntime renders the script of a prebuilt container model
// of containerType. It carries no game data.
func RenderContainerRuntime(containerType, buildID string) string {
	return execute("runtime.lua.tmpl", &runtimeData{
		Marker: Marker(buildID),
		Type:   commentText(containerType),
	})
}

type runtimeData struct {
	Marker string
	Type   string
}

// apiKeyLiteral is the only place a server API key enters generated source.
// Only the integration script receives its result: it runs on the server,
// while the config module is replicated to every client.
func apiKeyLiteral(apiKey string) string {
	return Quote(apiKey)
}

type renderData struct {
	BuildID     string
	Marker      string
	Game        *GameView
	PackageName string
	Options     *Options
	Interval    string
}

type integrationData struct {
	*renderData
	APIKeyLiteral string
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("").
		Funcs(template.FuncMap{
			"lua":          Quote,
			"comment":      commentText,
			"ident":        Identifier,
			"vector":       formatVector,
			"size":         partSize,
			"noContainers": func() string { return NoContainersNotice },
		}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

func execute(name string, data any) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are static and their data is fully typed.
		panic(fmt.Sprintf("luau: execute %s: %v", name, err))
	}
	return buf.String()
}

// Sanitize replaces every rune outside [A-Za-z0-9] with '_'.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isAlphanumeric(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isAlphanumeric(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9'
}

var reservedWords = map[string]struct{}{
	"and": {}, "break": {}, "continue": {}, "do": {}, "else": {}, "elseif": {},
	"end": {}, "export": {}, "false": {}, "for": {}, "function": {}, "if": {},
	"in": {}, "local": {}, "nil": {}, "not": {}, "or": {}, "repeat": {},
	"return": {}, "then": {}, "true": {}, "type": {}, "typeof": {}, "until": {},
	"while": {},
}

// Identifier returns a valid Luau local name derived from name.
// It sanitizes name and prefixes '_' when the result would be empty,
// start with a digit, or be a reserved word.
func Identifier(name string) string {
	s := Sanitize(name)
	if s == "" {
		return "_"
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "_" + s
	}
	if _, reserved := reservedWords[s]; reserved {
		return "_" + s
	}
	return s
}

// Quote returns s as a double-quoted Luau string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&b, `\%03d`, s[i])
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			// Pad to three digits so a following digit isn't absorbed.
			fmt.Fprintf(&b, `\%03d`, r)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte('"')
	return b.String()
}

// commentText makes s safe inside a single-line comment.
func commentText(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '\u2028' || r == '\u2029' {
			return ' '
		}
		return r
	}, s)
}

func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatVector(v *Vector3) string {
	if v == nil {
		v = &Vector3{}
	}
	return fmt.Sprintf("Vector3.new(%s, %s, %s)", formatNumber(v.X), formatNumber(v.Y), formatNumber(v.Z))
}

func partSize(containerType string) string {
	switch containerType {
	case "DISPLAY":
		return "Vector3.new(10, 5, 0.5)"
	case "NPC":
		return "Vector3.new(2, 6, 2)"
	default:
		return "Vector3.new(8, 8, 8)"
	}
}
