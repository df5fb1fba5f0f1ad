package tagging

import (
	"regexp"
	"strings"
	"time"
)

// RouteType values as stored on routes.
const (
	RouteTypeEquipped = 1
	RouteTypeWild     = 2
)

var difficultyTags = map[int][]string{
	1: {Novice, Easy},
	2: {Medium},
	3: {Experienced, Hard},
	4: {Pro, Hard},
}

var typeTags = map[int][]string{
	RouteTypeEquipped: {Equipped},
	RouteTypeWild:     {Wild, Extreme},
}

// durationBuckets are checked in order; the first bucket whose upper bound
// covers the duration wins. The last bucket has no upper bound.
var durationBuckets = []struct {
	maxHours float64
	tag      string
}{
	{8, OneDay},
	{18, Weekend},
	{150, Week},
	{0, Expedition},
}

func bucketFor(d time.Duration) string {
	h := d.Hours()
	last := len(durationBuckets) - 1
	for _, b := range durationBuckets[:last] {
		if h <= b.maxHours {
			return b.tag
		}
	}
	return durationBuckets[last].tag
}

// matcher reports whether normalized text contains a keyword.
type matcher func(text string) bool

type keywordRule struct {
	tags  []string
	match matcher
}

// wordStart matches stems at the beginning of a word. RE2's \b only knows
// ASCII letters, so the boundary is spelled out for Cyrillic text.
func wordStart(stems ...string) matcher {
	return compile(`(?:^|[^\p{L}\p{N}])(?:%s)`, stems)
}

// wholeWord matches complete words only.
func wholeWord(words ...string) matcher {
	return compile(`(?:^|[^\p{L}\p{N}])(?:%s)(?:$|[^\p{L}\p{N}])`, words)
}

func compile(pattern string, words []string) matcher {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	re := regexp.MustCompile(strings.Replace(pattern, "%s", strings.Join(quoted, "|"), 1))
	return re.MatchString
}

func anyOf(ms ...matcher) matcher {
	return func(text string) bool {
		for _, m := range ms {
			if m(text) {
				return true
			}
		}
		return false
	}
}

// keywordRules is evaluated in full for every route; rules are independent.
var keywordRules = []keywordRule{
	{[]string{OnFoot}, wordStart("пеш", "поход", "треккинг", "трекинг", "hik", "trek", "walk")},
	{[]string{Rafting}, wordStart("сплав", "байдар", "каяк", "рафтинг", "raft", "kayak", "canoe")},
	{[]string{Photo}, wordStart("фото", "пейзаж", "photo", "landscape")},
	{[]string{Caves}, wordStart("пещер", "ущель", "каньон", "cave", "gorge", "canyon")},
	{[]string{Relax}, wordStart("йога", "йоги", "йогой", "медитац", "релакс", "yoga", "meditat", "relax")},
	{[]string{Glamping, Shelter}, wordStart("глэмпинг", "глемпинг", "glamping")},
	{[]string{Camping}, wordStart("кемпинг", "camping", "campsite")},
	{[]string{ComfortCar, Transport}, anyOf(
		wordStart("машин", "автомоб", "парковк", "parking"),
		wholeWord("авто", "car", "cars"),
	)},

	{[]string{Summer}, wordStart("лето", "летом", "летн", "summer")},
	{[]string{Autumn}, wordStart("осен", "autumn")},
	{[]string{Winter}, wordStart("зим", "winter")},
	{[]string{Spring}, wordStart("весн", "весен", "spring")},

	{[]string{Adults}, wordStart("взросл", "adult")},
	{[]string{Children}, wordStart("дети", "детей", "детск", "детьми", "ребен", "ребят", "kid", "child")},
	{[]string{WithDog}, anyOf(
		wordStart("собак", "dog"),
		wholeWord("пес", "пса", "псом"),
	)},
	{[]string{Group}, wordStart("групп", "компани", "group")},

	{[]string{Mountains}, wordStart("горы", "гора", "гору", "горах", "горам", "горн", "вершин", "перевал", "mountain", "peak", "summit")},
	{[]string{Water}, anyOf(
		wordStart("озер", "река", "реки", "реке", "реку", "речн", "водопад", "вода", "воды", "водой",
			"море", "моря", "морск", "пляж", "lake", "river", "waterfall", "beach"),
		wholeWord("sea", "seas"),
	)},
	{[]string{Forest}, anyOf(
		wordStart("лесн", "леса", "лесу", "лесом", "тайг", "forest", "woodland"),
		wholeWord("лес", "woods"),
	)},
	{[]string{History}, wordStart("истор", "крепост", "монастыр", "памятник", "усадьб", "histor", "castle", "fortress")},
	{[]string{Secret}, wordStart("секрет", "тайн", "малоизвест", "скрыт", "secret", "hidden")},

	{[]string{Extreme}, wordStart("экстрим", "экстремал", "адреналин", "extreme")},
	{[]string{Nature}, wordStart("природ", "заповедн", "нацпарк", "nature", "wildlife")},
	{[]string{Culture}, wordStart("культур", "музе", "фестивал", "традиц", "cultur", "museum", "festival")},
}

var rentalStem = wordStart("аренд", "прокат", "rent", "hire")

// rentalRules only apply when rentalStem matches.
var rentalRules = []keywordRule{
	{[]string{RentalEquipment}, wordStart("палат", "спальн", "tent", "sleeping bag", "sleeping-bag")},
	{[]string{RentalKitchen}, anyOf(
		wordStart("горел", "газов", "плитк", "stove", "burner"),
		wholeWord("газ", "gas"),
	)},
	{[]string{RentalTransport}, anyOf(
		wordStart("байдар", "каяк", "велосипед", "kayak", "bike", "bicycl", "canoe"),
		wholeWord("сап", "sup"),
	)},
}
