package smoke

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ziadkadry99/toolprobe/internal/llm"
)

// Format selects how response content is printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be text or json", s)
	}
}

// PrintContent writes the response content list to w.
func PrintContent(w io.Writer, content []llm.ContentBlock, format Format) error {
	if format == FormatJSON {
		if content == nil {
			content = []llm.ContentBlock{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(content)
	}

	for _, block := range content {
		line, err := formatBlock(block)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatBlock(block llm.ContentBlock) (string, error) {
	switch block.Type {
	case llm.BlockText:
		return block.Text, nil
	case llm.BlockToolUse:
		input, err := json.Marshal(block.Input)
		if err != nil {
			return "", fmt.Errorf("encoding tool input: %w", err)
		}
		if block.Input == nil {
			input = []byte("{}")
		}
		return fmt.Sprintf("[tool_use %s] %s %s", block.ID, block.Name, input), nil
	default:
		return fmt.Sprintf("[%s]", block.Type), nil
	}
}
