package tagging

import (
	"sort"
	"strings"
	"time"
)

// Fields are the route attributes the tagger looks at.
type Fields struct {
	Difficulty  int
	Type        int
	Duration    *time.Duration
	Name        string
	Description string
}

// DeriveTags computes the tag set for a route. The result is sorted and free
// of duplicates; the same fields always yield the same tags.
func DeriveTags(f Fields) []string {
	set := make(map[string]struct{})
	add := func(tags ...string) {
		for _, t := range tags {
			set[t] = struct{}{}
		}
	}

	add(difficultyTags[f.Difficulty]...)
	add(typeTags[f.Type]...)
	if f.Duration != nil {
		add(bucketFor(*f.Duration))
	}

	text := normalize(f.Description + " " + f.Name)
	for _, r := range keywordRules {
		if r.match(text) {
			add(r.tags...)
		}
	}

	if rentalStem(text) {
		for _, r := range rentalRules {
			if r.match(text) {
				add(r.tags...)
			}
		}
	} else {
		add(NoRental)
	}

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

var yoFolder = strings.NewReplacer("ё", "е")

func normalize(s string) string {
	return yoFolder.Replace(strings.ToLower(s))
}
