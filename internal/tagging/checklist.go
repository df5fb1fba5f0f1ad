package tagging

// Checklist identifies a packing list template shown for a route.
type Checklist string

const (
	ChecklistOneDay   Checklist = "checklist_for_a_day"
	ChecklistGlamping Checklist = "checklist_for_glamping"
	ChecklistEquipped Checklist = "checklist_for_equipped_route"
	ChecklistWild     Checklist = "wild_checklist"
)

// ChecklistFor picks the packing list for a route's tags. Rules are checked in
// order and the first match wins.
func ChecklistFor(tags []string) Checklist {
	has := make(map[string]bool, len(tags))
	for _, t := range tags {
		has[t] = true
	}
	switch {
	case has[OneDay]:
		return ChecklistOneDay
	case has[Glamping] || has[Shelter]:
		return ChecklistGlamping
	case has[Equipped]:
		return ChecklistEquipped
	default:
		return ChecklistWild
	}
}
