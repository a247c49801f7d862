// Package extract flattens a page's block tree and database rows into the
// single text artifact handed to PII detection.
package extract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

// Checkbox glyphs used when rendering to_do blocks
const (
	checkedGlyph   = "[x] "
	uncheckedGlyph = "[ ] "
)

// FromBlocks renders a resolved block tree to text, joining non-empty block
// renderings with newlines. Children attached by the resolver are rendered
// in document order after their parent. Unknown block types render to
// nothing; rendering never fails.
func FromBlocks(blocks []types.Block) string {
	var lines []string

	for _, block := range blocks {
		if line := renderBlock(block); line != "" {
			lines = append(lines, line)
		}

		if len(block.Children) > 0 {
			if nested := FromBlocks(block.Children); nested != "" {
				lines = append(lines, nested)
			}
		}
	}

	return strings.Join(lines, "\n")
}

// FromDatabase renders database rows as "PropertyName: value" lines,
// skipping properties whose type is unsupported, joining rows with newlines
func FromDatabase(rows []types.Page) string {
	rendered := lo.FilterMap(rows, func(row types.Page, _ int) (string, bool) {
		line := renderRow(row)
		return line, line != ""
	})

	return strings.Join(rendered, "\n")
}

/// Title returns the page title: the rendered value of the first property
// whose type is title, or empty when the page has none
func Title(page types.Page) string {
	for _, value := range page.Properties {
		if value.Type == types.PropertyTypeTitle {
			return joinRichText(value.Title)
		}
	}

	return ""
}

// CollectFileReferences gathers image and file attachments from a resolved
// block tree, in document order
func CollectFileReferences(blocks []types.Block) []types.FileReference {
	var refs []types.FileReference

	for _, block := range blocks {
		switch block.Type {
		case types.BlockTypeImage:
			if block.Image != nil {
				refs = append(refs, *block.Image)
			}
		case types.BlockTypeFile:
			if block.File != nil {
				refs = append(refs, *block.File)
			}
		}

		if len(block.Children) > 0 {
			refs = append(refs, CollectFileReferences(block.Children)...)
		}
	}

	return refs
}

// renderBlock maps a single block to its text representation. Each variant
// is matched explicitly; the default arm ignores unknown types.
func renderBlock(block types.Block) string {
	switch block.Type {
	case types.BlockTypeParagraph:
		return renderText(block.Paragraph)
	case types.BlockTypeHeading1:
		return renderText(block.Heading1)
	case types.BlockTypeHeading2:
		return renderText(block.Heading2)
	case types.BlockTypeHeading3:
		return renderText(block.Heading3)
	case types.BlockTypeBulletedListItem:
		return prefixNonEmpty("- ", renderText(block.BulletedListItem))
	case types.BlockTypeNumberedListItem:
		return prefixNonEmpty("- ", renderText(block.NumberedListItem))
	case types.BlockTypeToDo:
		return renderToDo(block.ToDo)
	case types.BlockTypeToggle:
		return renderText(block.Toggle)
	case types.BlockTypeCode:
		return renderCode(block.Code)
	case types.BlockTypeQuote:
		return prefixNonEmpty("> ", renderText(block.Quote))
	case types.BlockTypeCallout:
		return renderText(block.Callout)
	default:
		// child_page starts an independent processing unit and everything
		// else is non-textual; neither contributes to the parent's text
		return ""
	}
}

// renderText joins the rich text fragments of a text-bearing payload
func renderText(payload *types.TextPayload) string {
	if payload == nil {
		return ""
	}

	return joinRichText(payload.RichText)
}

// renderToDo renders a to_do block with its checkbox glyph
func renderToDo(payload *types.ToDoPayload) string {
	if payload == nil {
		return ""
	}

	text := joinRichText(payload.RichText)
	if text == "" {
		return ""
	}

	if payload.Checked {
		return checkedGlyph + text
	}

	return uncheckedGlyph + text
}

// renderCode renders a code block with a language fence
func renderCode(payload *types.CodePayload) string {
	if payload == nil {
		return ""
	}

	code := joinRichText(payload.RichText)
	if code == "" {
		return ""
	}

	return fmt.Sprintf("```%s\n%s\n```", payload.Language, code)
}

// renderRow renders a single database row's properties as name:value lines
func renderRow(row types.Page) string {
	lines := make([]string, 0, len(row.Properties))

	for name, value := range row.Properties {
		if rendered, ok := renderProperty(value); ok {
			lines = append(lines, fmt.Sprintf("%s: %s", name, rendered))
		}
	}

	// map iteration order is random; keep row output stable
	sort.Strings(lines)

	return strings.Join(lines, "\n")
}

// renderProperty renders one tagged property value. Unsupported and unknown
// property types return ok=false and are skipped by the row renderer.
func renderProperty(value types.PropertyValue) (string, bool) {
	switch value.Type {
	case types.PropertyTypeTitle:
		return joinRichText(value.Title), true
	case types.PropertyTypeRichText:
		return joinRichText(value.RichText), true
	case types.PropertyTypeText:
		return joinRichText(value.Text), true
	case types.PropertyTypeNumber:
		if value.Number == nil {
			return "", false
		}

		return strconv.FormatFloat(*value.Number, 'f', -1, 64), true
	case types.PropertyTypeSelect:
		if value.Select == nil {
			return "", false
		}

		return value.Select.Name, true
	case types.PropertyTypeMultiSelect:
		names := lo.Map(value.MultiSelect, func(opt types.SelectOption, _ int) string {
			return opt.Name
		})

		return strings.Join(names, ", "), true
	case types.PropertyTypeDate:
		if value.Date == nil {
			return "", false
		}

		if value.Date.End != "" {
			return value.Date.Start + " - " + value.Date.End, true
		}

		return value.Date.Start, true
	case types.PropertyTypeCheckbox:
		if value.Checkbox == nil {
			return "", false
		}

		return strconv.FormatBool(*value.Checkbox), true
	default:
		return "", false
	}
}

// joinRichText concatenates the plain text of rich text fragments
func joinRichText(fragments []types.RichText) string {
	var b strings.Builder

	for _, fragment := range fragments {
		b.WriteString(fragment.PlainText)
	}

	return b.String()
}
