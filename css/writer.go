package css

import (
	"fmt"
	"io"
	"strings"
)

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	n, err := writeList(w, s.Rules, 0)
	return int64(n), err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// String returns CSS text of a single node and everything nested in it.
func (n *Node) String() string {
	var sb strings.Builder
	writeNode(&sb, n, 0) //nolint:errcheck
	return sb.String()
}

func writeList(w io.Writer, list *RuleList, depth int) (int, error) {
	var total int
	for node := range list.All() {
		n, err := writeNode(w, node, depth)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func writeNode(w io.Writer, node *Node, depth int) (int, error) {
	indent := strings.Repeat("  ", depth)

	switch node.Kind {
	case DeclarationNode:
		return fmt.Fprintf(w, "%s%s: %s;\n", indent, node.Property, node.Value)

	case RulesetNode:
		return writeBlock(w, indent+node.Prelude, node, depth)

	case AtRuleNode:
		head := indent + "@" + node.Name
		if node.Prelude != "" {
			head += " " + node.Prelude
		}
		if node.Block == nil {
			return fmt.Fprintf(w, "%s;\n", head)
		}
		return writeBlock(w, head, node, depth)
	}
	return 0, nil
}

func writeBlock(w io.Writer, head string, node *Node, depth int) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s {\n", head)
	total += n
	if err != nil {
		return total, err
	}
	if node.Raw != "" {
		n, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth+1), node.Raw)
	} else {
		n, err = writeList(w, node.Block, depth+1)
	}
	total += n
	if err != nil {
		return total, err
	}
	n, err = fmt.Fprintf(w, "%s}\n", strings.Repeat("  ", depth))
	total += n
	return total, err
}
