package recommend

// CategoryAll selects every event of the active date.
const CategoryAll = "All"

type categoryBucket struct {
	name string
	raw  []string
}

// categoryBuckets maps display buckets to the feed's Finnish category names,
// in display order.
var categoryBuckets = []categoryBucket{
	{CategoryAll, nil},
	{"Bars and Nightlife", []string{"Baarit ja yöelämä"}},
	{"Performing Arts", []string{"Esittävät taiteet", "Muu esittävä taide"}},
	{"History", []string{"Historia", "Historiallinen nähtävyys"}},
	{"Christmas", []string{"Joulu"}},
	{"Ice Hockey", []string{"Jääkiekko"}},
	{"Cafes", []string{"Kahvilat"}},
	{"Meeting Place", []string{"Kokouspaikka"}},
	{"Cultural Heritage", []string{"Kulttuuriperintö"}},
	{"Handicrafts", []string{"Käsityöt"}},
	{"Walking and Hiking", []string{"Kävely ja vaeltaminen", "Patikointi"}},
	{"Children's Attraction", []string{"Lapsille"}},
	{"Museums and Galleries", []string{"Museot ja galleriat"}},
	{"Music", []string{"Musiikki"}},
	{"Other Indoor Activity", []string{"Muu sisäaktiviteetti"}},
	{"Others", []string{"Muut"}},
	{"Restaurant", []string{"Ravintola"}},
	{"Food Experiences", []string{"Ruokaelämykset", "Ruokaelämys"}},
	{"Stand Up", []string{"Stand up"}},
	{"Finnish Design and Fashion", []string{"Suomalainen design ja muoti"}},
	{"Art", []string{"Taide"}},
	{"Dance", []string{"Tanssi"}},
	{"Event", []string{"Tapahtuma"}},
	{"Event Venue", []string{"Tapahtumapaikka"}},
	{"Events and Festivals", []string{"Tapahtumat ja festivaalit"}},
	{"Theater", []string{"Teatteri"}},
	{"Markets", []string{"Torit"}},
	{"Sports", []string{"Urheilu"}},
}

var categoryIndex = func() map[string]map[string]struct{} {
	idx := make(map[string]map[string]struct{}, len(categoryBuckets))
	for _, b := range categoryBuckets {
		if b.raw == nil {
			continue
		}
		set := make(map[string]struct{}, len(b.raw))
		for _, r := range b.raw {
			set[r] = struct{}{}
		}
		idx[b.name] = set
	}
	return idx
}()

// CategoryNames returns the bucket names in display order.
func CategoryNames() []string {
	names := make([]string, 0, len(categoryBuckets))
	for _, b := range categoryBuckets {
		names = append(names, b.name)
	}
	return names
}

// IsCategory reports whether name is a known bucket, including CategoryAll.
func IsCategory(name string) bool {
	if name == CategoryAll {
		return true
	}
	_, ok := categoryIndex[name]
	return ok
}
