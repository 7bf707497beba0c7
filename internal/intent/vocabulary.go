package intent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"productshots/internal/domain"
)

// Vocabulary is the keyword table behind every signal. English and Indonesian
// terms live side by side; matching is diacritic-insensitive.
type Vocabulary struct {
	Outdoor     []string            `yaml:"outdoor"`
	Human       []string            `yaml:"human"`
	NoPeople    []string            `yaml:"no_people"`
	Realism     []string            `yaml:"realism"`
	Actions     map[string][]string `yaml:"actions"`
	NoisyStyles []string            `yaml:"noisy_styles"`
}

// ActionPriority resolves ties when several action keywords are present.
var ActionPriority = []domain.ActionType{
	domain.ActionEat,
	domain.ActionDrink,
	domain.ActionCook,
	domain.ActionServe,
	domain.ActionUse,
}

// DefaultNoisyStyles are stylized-look tokens that pull a renderer away from
// photorealism.
var DefaultNoisyStyles = []string{
	"anime", "cartoon", "manga", "chibi", "illustration", "illustrated",
	"3d render", "cgi", "pixar", "claymation", "watercolor", "sketch",
	"comic", "vector art", "kawaii", "animated", "painting",
	"kartun", "ilustrasi", "lukisan", "animasi",
}

// DefaultVocabulary returns a fresh copy of the built-in table.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Outdoor: []string{
			"outdoor", "outdoors", "outside", "open air", "open-air", "garden", "park",
			"beach", "street", "picnic", "forest", "mountain", "lake", "riverside",
			"field", "rooftop", "terrace", "patio", "balcony", "camping", "backyard",
			"nature", "poolside", "sunset", "sunrise",
			"luar ruangan", "luar ruang", "di luar", "alam terbuka", "alam", "taman",
			"pantai", "piknik", "hutan", "gunung", "danau", "sungai", "sawah", "kebun",
			"teras", "balkon", "berkemah", "matahari terbenam",
		},
		Human: []string{
			"person", "people", "human", "humans", "man", "woman", "men", "women",
			"model", "models", "hand", "hands", "girl", "boy", "child", "kid", "kids",
			"family", "chef", "barista", "customer", "someone", "somebody", "holding",
			"lady", "guy", "couple", "friends",
			"orang", "manusia", "wanita", "perempuan", "pria", "laki-laki", "tangan",
			"anak", "keluarga", "koki", "pelanggan", "seseorang", "memegang", "teman",
		},
		NoPeople: []string{
			"no people", "no person", "no persons", "no humans", "no human", "no hands",
			"no models", "no model", "without people", "without person", "without humans",
			"without hands", "without a model", "product only", "nobody", "no one",
			"tanpa orang", "tanpa manusia", "tanpa model", "tanpa tangan", "hanya produk",
			"tidak ada orang",
		},
		Realism: []string{
			"realistic", "photorealistic", "photo realistic", "photoreal", "real photo",
			"photograph", "photography", "lifelike", "true to life",
			"realistis", "nyata", "foto asli", "foto nyata", "seperti asli",
		},
		Actions: map[string][]string{
			string(domain.ActionEat): {
				"eat", "eats", "eating", "bite", "biting", "taste", "tasting", "dine", "dining",
				"makan", "memakan", "menyantap", "mencicipi", "menggigit", "sarapan",
			},
			string(domain.ActionDrink): {
				"drink", "drinks", "drinking", "sip", "sipping",
				"minum", "meminum", "menyeruput", "seruput",
			},
			string(domain.ActionCook): {
				"cook", "cooks", "cooking", "frying", "grilling", "baking", "stirring",
				"masak", "memasak", "menggoreng", "memanggang", "mengaduk",
			},
			string(domain.ActionServe): {
				"serve", "serves", "serving", "pour", "pouring", "plating",
				"menyajikan", "sajikan", "menyuguhkan", "menuang", "menuangkan",
				"menghidangkan", "hidangkan",
			},
			string(domain.ActionUse): {
				"uses", "using", "in use", "wear", "wears", "wearing", "apply", "applying",
				"memakai", "menggunakan", "mengenakan", "mengoleskan", "dipakai",
			},
		},
		NoisyStyles: append([]string(nil), DefaultNoisyStyles...),
	}
}

// Merge appends overlay keywords to v. Unknown action names are rejected.
func (v Vocabulary) Merge(overlay Vocabulary) (Vocabulary, error) {
	out := Vocabulary{
		Outdoor:     append(append([]string(nil), v.Outdoor...), overlay.Outdoor...),
		Human:       append(append([]string(nil), v.Human...), overlay.Human...),
		NoPeople:    append(append([]string(nil), v.NoPeople...), overlay.NoPeople...),
		Realism:     append(append([]string(nil), v.Realism...), overlay.Realism...),
		NoisyStyles: append(append([]string(nil), v.NoisyStyles...), overlay.NoisyStyles...),
		Actions:     make(map[string][]string, len(v.Actions)),
	}
	for name, kws := range v.Actions {
		out.Actions[name] = append([]string(nil), kws...)
	}
	for name, kws := range overlay.Actions {
		if !knownAction(name) {
			return Vocabulary{}, fmt.Errorf("unknown action %q in vocabulary", name)
		}
		out.Actions[name] = append(out.Actions[name], kws...)
	}
	return out, nil
}

// LoadVocabulary reads a YAML overlay and merges it onto the built-in table.
// An empty path returns the defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	base := DefaultVocabulary()
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	var overlay Vocabulary
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	return base.Merge(overlay)
}

func knownAction(name string) bool {
	for _, a := range ActionPriority {
		if string(a) == name {
			return true
		}
	}
	return false
}
