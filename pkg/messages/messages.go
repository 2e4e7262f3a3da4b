// Package messages renders the chat replies of the bot.
package messages

import (
	"fmt"
	"strings"

	"github.com/korjavin/ispirami/pkg/dinner"
	"github.com/korjavin/ispirami/pkg/models"
)

// RecipesPerMessage caps how many recipes go into one chat message
const RecipesPerMessage = 20

// Welcome is the /start reply
func Welcome() string {
	return `👋 Ciao! I tell you which recipes you can cook with what is in your fridge.

/fridge - show your fridge
/add name: quantity, name - add ingredients
/remove name, name - remove ingredients
/sync_fridge - empty the fridge and send me its contents
/cook - recipes you can cook right now
/almost - recipes missing only one or two ingredients
/missing <url> - what a recipe still needs`
}

// EmptyFridge is shown when the fridge has no ingredients
func EmptyFridge() string {
	return "Your fridge is empty! Add ingredients with /add or /sync_fridge."
}

// FridgeContents lists the fridge items
func FridgeContents(items []models.FridgeItem) string {
	if len(items) == 0 {
		return EmptyFridge()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🧊 Here's what's in your fridge (%d):\n\n", len(items))
	for _, item := range items {
		if item.Quantity != "" {
			fmt.Fprintf(&b, "• %s (%s)\n", item.Name, item.Quantity)
		} else {
			fmt.Fprintf(&b, "• %s\n", item.Name)
		}
	}
	return b.String()
}

// SyncStarted is sent after /sync_fridge empties the fridge
func SyncStarted(withPhotos bool) string {
	msg := "🧹 Fridge reset! Now send me the ingredients you have, separated by commas or one per line."
	if withPhotos {
		msg += " A photo of the fridge works too."
	}
	return msg + " You can send multiple messages."
}

// Added confirms added ingredients
func Added(names []string) string {
	return fmt.Sprintf("✅ Added %d ingredients to your fridge: %s", len(names), strings.Join(names, ", "))
}

// Removed confirms removed ingredients
func Removed(names []string) string {
	return fmt.Sprintf("🗑 Removed from your fridge: %s", strings.Join(names, ", "))
}

// CookResults lists the cookable recipes, split into messages of at most
// RecipesPerMessage recipes each.
func CookResults(found []models.Recipe) []string {
	if len(found) == 0 {
		return []string{"😢 No recipe can be cooked with what is in your fridge. Try /almost."}
	}

	var out []string
	for start := 0; start < len(found); start += RecipesPerMessage {
		end := start + RecipesPerMessage
		if end > len(found) {
			end = len(found)
		}

		var b strings.Builder
		if start == 0 {
			fmt.Fprintf(&b, "🍽 Found %d matching recipes:\n\n", len(found))
		}
		for _, r := range found[start:end] {
			fmt.Fprintf(&b, "• %s\n  %s\n", r.Title, r.URL)
		}
		out = append(out, b.String())
	}
	return out
}

// NearMisses lists recipes that need a few more ingredients
func NearMisses(near []dinner.NearMiss) string {
	if len(near) == 0 {
		return "Nothing is close enough. Time to go shopping! 🛒"
	}
	var b strings.Builder
	b.WriteString("🛒 Almost there:\n\n")
	for _, n := range near {
		fmt.Fprintf(&b, "• %s\n  missing: %s\n  %s\n", n.Recipe.Title, strings.Join(n.Missing, ", "), n.Recipe.URL)
	}
	return b.String()
}

// Missing tells what a recipe still needs
func Missing(r *models.Recipe, missing []string) string {
	if len(missing) == 0 {
		return fmt.Sprintf("✅ You have everything for %s!", r.Title)
	}
	return fmt.Sprintf("For %s you are missing:\n• %s", r.Title, strings.Join(missing, "\n• "))
}

// Error is the generic failure reply
func Error(action string) string {
	return fmt.Sprintf("😢 Sorry, I couldn't %s. Please try again later.", action)
}
