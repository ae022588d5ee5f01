package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/temirov/instancectl/internal/instanceapi"
)

const (
	outputFormatTableValueConstant          = "table"
	outputFormatJSONValueConstant           = "json"
	outputFormatYAMLValueConstant           = "yaml"
	jsonIndentConstant                      = "  "
	yamlIndentWidthConstant                 = 2
	dataFieldNameConstant                   = "data"
	instanceColumnHeaderConstant            = "INSTANCE"
	branchColumnHeaderConstant              = "BRANCH"
	rendererWriterMissingMessageConstant    = "renderer output writer not configured"
	unsupportedOutputFormatTemplateConstant = "unsupported output format %q"
	tableUnsupportedTemplateConstant        = "output format %q is not supported for this response"
	renderFailureTemplateConstant           = "failed to render %s output: %w"
)

// ErrRendererNotConfigured indicates the renderer has no destination writer.
var ErrRendererNotConfigured = errors.New(rendererWriterMissingMessageConstant)

// OutputFormat selects how responses are printed.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatTable OutputFormat = OutputFormat(outputFormatTableValueConstant)
	OutputFormatJSON  OutputFormat = OutputFormat(outputFormatJSONValueConstant)
	OutputFormatYAML  OutputFormat = OutputFormat(outputFormatYAMLValueConstant)
)

// BranchOutputFormats lists the formats accepted for branch listings.
var BranchOutputFormats = []string{outputFormatTableValueConstant, outputFormatJSONValueConstant, outputFormatYAMLValueConstant}

// PayloadOutputFormats lists the formats accepted for opaque payloads.
var PayloadOutputFormats = []string{outputFormatJSONValueConstant, outputFormatYAMLValueConstant}

// ParseOutputFormat normalizes a textual output format.
func ParseOutputFormat(value string) (OutputFormat, error) {
	candidate := OutputFormat(strings.ToLower(strings.TrimSpace(value)))
	switch candidate {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return candidate, nil
	default:
		return "", fmt.Errorf(unsupportedOutputFormatTemplateConstant, value)
	}
}

// Renderer prints client results to a writer.
type Renderer struct {
	writer io.Writer
}

// NewRenderer constructs a renderer writing to writer.
func NewRenderer(writer io.Writer) *Renderer {
	return &Renderer{writer: writer}
}

// RenderBranches prints a branch listing. The table form shows one row per
// branch name; json and yaml print the {data: ...} envelope unchanged.
func (renderer *Renderer) RenderBranches(instanceName string, result instanceapi.Result[instanceapi.BranchList], format OutputFormat) error {
	if renderer == nil || renderer.writer == nil {
		return ErrRendererNotConfigured
	}

	switch format {
	case OutputFormatTable:
		branchNames, namesError := result.Data.Names()
		if namesError != nil {
			return fmt.Errorf(renderFailureTemplateConstant, format, namesError)
		}
		table := tablewriter.NewWriter(renderer.writer)
		table.SetHeader([]string{instanceColumnHeaderConstant, branchColumnHeaderConstant})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetBorder(false)
		for _, branchName := range branchNames {
			table.Append([]string{instanceName, branchName})
		}
		table.Render()
		return nil
	default:
		return renderer.renderEnvelope(result.Data.Payload, format)
	}
}

// RenderPayload prints an opaque response payload as json or yaml.
func (renderer *Renderer) RenderPayload(result instanceapi.Result[instanceapi.Payload], format OutputFormat) error {
	if renderer == nil || renderer.writer == nil {
		return ErrRendererNotConfigured
	}
	if format == OutputFormatTable {
		return fmt.Errorf(tableUnsupportedTemplateConstant, format)
	}
	return renderer.renderEnvelope(result.Data, format)
}

func (renderer *Renderer) renderEnvelope(payload instanceapi.Payload, format OutputFormat) error {
	switch format {
	case OutputFormatJSON:
		encodedEnvelope, encodeError := json.MarshalIndent(instanceapi.Result[instanceapi.Payload]{Data: payload}, "", jsonIndentConstant)
		if encodeError != nil {
			return fmt.Errorf(renderFailureTemplateConstant, format, encodeError)
		}
		_, writeError := fmt.Fprintln(renderer.writer, string(encodedEnvelope))
		return writeError
	case OutputFormatYAML:
		var decodedPayload any
		if len(payload) > 0 {
			if decodeError := payload.Decode(&decodedPayload); decodeError != nil {
				return fmt.Errorf(renderFailureTemplateConstant, format, decodeError)
			}
		}
		encoder := yaml.NewEncoder(renderer.writer)
		encoder.SetIndent(yamlIndentWidthConstant)
		if encodeError := encoder.Encode(map[string]any{dataFieldNameConstant: decodedPayload}); encodeError != nil {
			return fmt.Errorf(renderFailureTemplateConstant, format, encodeError)
		}
		return encoder.Close()
	default:
		return fmt.Errorf(unsupportedOutputFormatTemplateConstant, format)
	}
}
