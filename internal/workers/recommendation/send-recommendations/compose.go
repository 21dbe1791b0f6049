// internal/workers/recommendation/send-recommendations/compose.go
package sendrecommendations

import (
	"fmt"
	"math/rand"
	"strings"

	"dining-concierge/internal/models"
)

// cuisineAliases maps user-facing cuisine names to index aliases.
var cuisineAliases = map[string]string{
	"indian": "indpak",
}

// CuisineAlias returns the index alias for a requested cuisine.
func CuisineAlias(cuisine string) string {
	c := strings.ToLower(strings.TrimSpace(cuisine))
	if alias, ok := cuisineAliases[c]; ok {
		return alias
	}
	return c
}

// SelectCandidates collapses duplicate ids, shuffles and keeps the first n.
// The input slice is not modified. A non-positive n selects nothing.
func SelectCandidates(entries []models.RestaurantIndexEntry, n int, rng *rand.Rand) []string {
	if n <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.RestaurantID == "" {
			continue
		}
		if _, dup := seen[e.RestaurantID]; dup {
			continue
		}
		seen[e.RestaurantID] = struct{}{}
		ids = append(ids, e.RestaurantID)
	}

	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// NoneFoundBody is sent when nothing could be recommended.
func NoneFoundBody(cuisine string) string {
	return fmt.Sprintf("Hello! We couldn't find any %s restaurants in our database right now. Please try another cuisine!", cuisine)
}

// ComposeBody renders the recommendation email. recs must not be empty.
func ComposeBody(req *models.RecommendationRequest, recs []models.Recommendation) string {
	date := req.DiningDate
	if date == "" {
		date = "today"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello! Here are my %s restaurant suggestions for %s people, for %s at %s:\n\n",
		req.Cuisine, req.PartySize, date, models.OrUnknown(req.DiningTime))
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. %s, located at %s\n", i+1, r.Name, r.Address)
	}
	b.WriteString("\nEnjoy your meal!")
	return b.String()
}
