package prompt

import (
	"fmt"
	"strings"
)

// Render substitutes the template placeholders for one coin. Placeholders use
// the {name} form carried over from the stored settings documents.
func Render(template, coinName string, currentPrice float64) string {
	out := strings.ReplaceAll(template, "{coin_name}", coinName)
	out = strings.ReplaceAll(out, "{current_price}", fmt.Sprintf("%g", currentPrice))
	return out
}
