package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/schema"
	"github.com/erpsync/ebsconn/internal/ui"
)

var schemaDoc bool

var schemaCmd = &cobra.Command{
	Use:   "schema [kind]",
	Short: "List object kinds and their attributes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchema,
}

type attributeInfo struct {
	Name              string `json:"name"`
	Type              string `json:"type"`
	Required          bool   `json:"required,omitempty"`
	MultiValued       bool   `json:"multi_valued,omitempty"`
	ReturnedByDefault bool   `json:"returned_by_default"`
}

type kindInfo struct {
	Kind        model.Kind      `json:"kind"`
	Description string          `json:"description,omitempty"`
	Attributes  []attributeInfo `json:"attributes"`
}

func runSchema(cmd *cobra.Command, args []string) error {
	sc, err := loadSchema()
	if err != nil {
		return handleError(ErrSchemaInvalid, err, "")
	}

	kinds := sc.DefinedKinds()
	if len(args) == 1 {
		kind, err := model.ParseKind(args[0])
		if err != nil {
			return handleError(ErrUnknownKind, err, "")
		}
		if _, ok := sc.Kind(kind); !ok {
			return handleErrorMsg(ErrUnsupportedKind,
				fmt.Sprintf("kind %s is not available with the configured views", kind),
				"Set new_responsibility_views = true under [connector]")
		}
		kinds = []model.Kind{kind}
	}

	infos := make([]kindInfo, 0, len(kinds))
	for _, k := range kinds {
		infos = append(infos, describeKind(sc, k))
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"kinds": infos}, &Meta{Count: len(infos)})
		return nil
	}

	if schemaDoc {
		rendered, err := ui.RenderMarkdown(schemaMarkdown(infos), ui.NewDisplayContext().TermWidth)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		printf("%s", rendered)
		return nil
	}

	for i, info := range infos {
		if i > 0 {
			printf("\n")
		}
		printf("%s\n", ui.Header(string(info.Kind)))
		if info.Description != "" {
			printf("%s\n", ui.Hint(info.Description))
		}
		tbl := ui.NewTable(ui.NewDisplayContext().TermWidth)
		tbl.SetHeader("ATTRIBUTE", "TYPE", "FLAGS")
		for _, a := range info.Attributes {
			tbl.AddRow(a.Name, a.Type, attributeFlags(a))
		}
		printf("%s", tbl.String())
	}
	return nil
}

func describeKind(sc *schema.Schema, kind model.Kind) kindInfo {
	info := kindInfo{Kind: kind, Attributes: []attributeInfo{}}
	def, ok := sc.Kind(kind)
	if !ok {
		return info
	}
	info.Description = def.Description
	for _, name := range sc.AttributeNames(kind) {
		ad, _ := sc.Attribute(kind, name)
		info.Attributes = append(info.Attributes, attributeInfo{
			Name:              name,
			Type:              string(ad.Type),
			Required:          ad.Required,
			MultiValued:       ad.MultiValued,
			ReturnedByDefault: ad.IsReturnedByDefault(),
		})
	}
	return info
}

func attributeFlags(a attributeInfo) string {
	var flags []string
	if a.Required {
		flags = append(flags, "required")
	}
	if a.MultiValued {
		flags = append(flags, "multi")
	}
	if !a.ReturnedByDefault {
		flags = append(flags, "on request")
	}
	return strings.Join(flags, ", ")
}

// schemaMarkdown renders kinds as a markdown reference.
func schemaMarkdown(infos []kindInfo) string {
	var sb strings.Builder
	sb.WriteString("# Object kinds\n")
	for _, info := range infos {
		fmt.Fprintf(&sb, "\n## %s\n\n", info.Kind)
		if info.Description != "" {
			sb.WriteString(info.Description + "\n\n")
		}
		for _, a := range info.Attributes {
			fmt.Fprintf(&sb, "- `%s` (%s", a.Name, a.Type)
			if flags := attributeFlags(a); flags != "" {
				sb.WriteString(", " + flags)
			}
			sb.WriteString(")\n")
		}
	}
	return sb.String()
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaDoc, "doc", false, "Render the schema as a formatted document")
	rootCmd.AddCommand(schemaCmd)
}
