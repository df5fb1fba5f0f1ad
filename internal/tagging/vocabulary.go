// Package tagging derives descriptive tags for routes from their structured
// fields and free text.
//
// Tag names form a closed vocabulary. DeriveTags never emits a name outside of
// it, and ValidateRules checks that at startup.
package tagging

import (
	"fmt"
	"sort"
)

// Canonical tag names.
const (
	Novice      = "novice"
	Easy        = "easy"
	Medium      = "medium"
	Experienced = "experienced"
	Hard        = "hard"
	Pro         = "pro"

	Equipped = "equipped"
	Wild     = "wild"
	Extreme  = "extreme"

	OneDay     = "one_day"
	Weekend    = "weekend"
	Week       = "week"
	Expedition = "expedition"

	OnFoot     = "on_foot"
	Rafting    = "rafting"
	Photo      = "photo"
	Caves      = "caves"
	Relax      = "relax"
	Glamping   = "glamping"
	Shelter    = "shelter"
	Camping    = "camping"
	ComfortCar = "comfort_car"
	Transport  = "transport"

	Summer = "summer"
	Autumn = "autumn"
	Winter = "winter"
	Spring = "spring"

	Adults   = "adults"
	Children = "children"
	WithDog  = "with_dog"
	Group    = "group"

	Mountains = "mountains"
	Water     = "water"
	Forest    = "forest"
	History   = "history"
	Secret    = "secret"
	Nature    = "nature"
	Culture   = "culture"

	RentalEquipment = "rental_equipment"
	RentalKitchen   = "rental_kitchen"
	RentalTransport = "rental_transport"
	NoRental        = "no_rental"
)

var vocabulary = []string{
	Novice, Easy, Medium, Experienced, Hard, Pro,
	Equipped, Wild, Extreme,
	OneDay, Weekend, Week, Expedition,
	OnFoot, Rafting, Photo, Caves, Relax, Glamping, Shelter, Camping, ComfortCar, Transport,
	Summer, Autumn, Winter, Spring,
	Adults, Children, WithDog, Group,
	Mountains, Water, Forest, History, Secret, Nature, Culture,
	RentalEquipment, RentalKitchen, RentalTransport, NoRental,
}

var vocabularySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(vocabulary))
	for _, name := range vocabulary {
		set[name] = struct{}{}
	}
	return set
}()

// Vocabulary returns a copy of the canonical tag names in catalog order.
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// IsCanonical reports whether name belongs to the vocabulary.
func IsCanonical(name string) bool {
	_, ok := vocabularySet[name]
	return ok
}

// ValidateRules checks that every tag the tagger can emit is canonical.
func ValidateRules() error {
	var unknown []string
	seen := make(map[string]struct{})
	for _, name := range emittableTags() {
		if IsCanonical(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		unknown = append(unknown, name)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("tag rules emit names outside the vocabulary: %v", unknown)
	}
	return nil
}

func emittableTags() []string {
	var out []string
	for _, tags := range difficultyTags {
		out = append(out, tags...)
	}
	for _, tags := range typeTags {
		out = append(out, tags...)
	}
	for _, b := range durationBuckets {
		out = append(out, b.tag)
	}
	for _, r := range keywordRules {
		out = append(out, r.tags...)
	}
	for _, r := range rentalRules {
		out = append(out, r.tags...)
	}
	return append(out, NoRental)
}
