package services

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Categories that are not driven by the phrase table.
const (
	CategoryCulinary = "Fête gastronomique"
	CategoryOther    = "Autres fêtes populaires"
)

// CategoryRule maps a set of phrases to a category. Rules are evaluated in
// order and the first matching rule wins, so broader phrases belong later in
// the table.
type CategoryRule struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
}

// FilterConfig holds the keyword lists driving inclusion, exclusion and
// categorization. Lists are written in their accented French form only;
// matching folds accents on both sides, so no unaccented duplicates are
// needed.
type FilterConfig struct {
	Whitelist   []string       `yaml:"whitelist"`
	Blacklist   []string       `yaml:"blacklist"`
	Categories  []CategoryRule `yaml:"categories"`
	FoodWords   []string       `yaml:"food_words"`
	Determiners []string       `yaml:"determiners"`
}

// DefaultFilterConfig returns the built-in festival filter lists.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Whitelist: []string{
			"fest-noz", "fest noz", "fest", "fest-deiz", "fest deiz",
			"feria", "carnaval", "guinguette", "bal", "bals",
			"variété française", "buvette", "buvettes",
			"fête", "fêtes", "fête de village", "fête du village", "fête communale",
			"fanfare", "marché nocturne",
			"feu de la saint jean", "feu de la st jean",
			"feu de la st-jean", "feu de la saint-jean",
			"année 80", "années 80", "apéro",
			"fête municipale", "fête de l'été", "fête vosgienne", "soirée vosgienne",
		},
		Blacklist: []string{
			"contes", "théâtre", "lecture", "opéra", "comédie", "visite",
			"exposition", "conférence", "balade", "promenade", "randonnée",
			"pédestre", "nature", "théâtralisée", "livre", "performance",
			"running", "crossfit", "poésie", "cinéma", "goûter", "concert",
			"bien-être", "trail", "commémoratif", "cérémonie", "projection",
			"triathlon", "trésor", "abbaye", "téléthon", "trial", "art",
		},
		Categories: []CategoryRule{
			{Name: "Feria", Phrases: []string{"feria", "ferias"}},
			{Name: "Fest-noz", Phrases: []string{"fest-noz", "fest noz", "noz", "deiz"}},
			{Name: "Carnaval", Phrases: []string{"carnaval"}},
			{Name: "Fête de village", Phrases: []string{
				"village", "communal", "communale", "villageois",
				"municipal", "municipale",
				"fête locale", "fête votive", "fête patronale", "en fête",
			}},
			{Name: "Festival", Phrases: []string{"festival", "estival"}},
			{Name: "Guinguette", Phrases: []string{"guinguette", "apéro"}},
			{Name: "Bal populaire", Phrases: []string{"bal", "folk", "bals", "folks"}},
			{Name: "Foire artisanale", Phrases: []string{"foire artisanale", "foire", "marché", "marché nocturne"}},
			{Name: "Fête médiévale", Phrases: []string{"médiévale", "medieval"}},
		},
		FoodWords: []string{
			"jambon", "ananas", "vin", "fromage", "pain", "poulet", "agneau",
			"fruit", "fruits", "légume", "légumes", "bière", "huître", "huîtres",
			"saucisson", "truffe", "charcuterie", "chocolat", "confiture", "miel",
			"moutarde", "olive", "pâté", "pâtisserie", "crêpe", "galette",
			"gastronomie", "cuisine", "terroir", "châtaigne", "champignon",
			"cidre", "saucisse", "rôti", "poisson", "mer", "coquillage",
			"crustacé", "moule", "homard", "canard", "porc", "veau", "boeuf",
			"mouton", "salade", "tomate", "oignon", "ail", "épice", "pomme",
			"poire", "cerise", "fraise", "framboise", "mûre", "myrtille",
			"pêche", "abricot", "prune", "raisin", "vigne", "yaourt", "lait",
			"beurre", "crème", "riz", "pâtes", "gnocchi", "lasagne", "pizza",
			"tarte", "quiche", "cake", "biscuit", "gâteau", "glace", "sorbet",
			"sucre", "confiserie", "bonbon", "caramel", "nougat", "praliné",
			"liqueur", "eau-de-vie", "spiritueux", "cocktail", "café", "thé",
			"infusion", "jus", "soda", "limonade", "eau", "boisson",
			"champagne", "caviar", "boulangerie",
		},
		Determiners: []string{"du", "de", "la", "le", "des"},
	}
}

// LoadFilterConfig reads a FilterConfig from a YAML file. Sections left empty
// in the file keep their built-in defaults.
func LoadFilterConfig(path string) (FilterConfig, error) {
	cfg := DefaultFilterConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read filter config: %w", err)
	}

	var loaded FilterConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("parse filter config: %w", err)
	}

	if len(loaded.Whitelist) > 0 {
		cfg.Whitelist = loaded.Whitelist
	}
	if len(loaded.Blacklist) > 0 {
		cfg.Blacklist = loaded.Blacklist
	}
	if len(loaded.Categories) > 0 {
		cfg.Categories = loaded.Categories
	}
	if len(loaded.FoodWords) > 0 {
		cfg.FoodWords = loaded.FoodWords
	}
	if len(loaded.Determiners) > 0 {
		cfg.Determiners = loaded.Determiners
	}
	return cfg, nil
}

// categoryRule is a CategoryRule with its phrases pre-normalized.
type categoryRule struct {
	name    string
	phrases []string
}

// Classifier applies the whitelist/blacklist gates and derives the topical
// category from event text. All matching happens on lowercased, accent-folded
// text.
type Classifier struct {
	whitelist   [][]string
	blacklist   map[string]struct{}
	categories  []categoryRule
	foodWords   map[string]struct{}
	determiners map[string]struct{}
}

// NewClassifier compiles a FilterConfig into a Classifier. Normalization
// happens once here rather than per record.
func NewClassifier(cfg FilterConfig) *Classifier {
	c := &Classifier{
		blacklist:   make(map[string]struct{}, len(cfg.Blacklist)),
		foodWords:   make(map[string]struct{}, len(cfg.FoodWords)),
		determiners: make(map[string]struct{}, len(cfg.Determiners)),
	}

	for _, phrase := range cfg.Whitelist {
		tokens := strings.Fields(normalizeText(phrase))
		if len(tokens) > 0 {
			c.whitelist = append(c.whitelist, tokens)
		}
	}
	for _, word := range cfg.Blacklist {
		c.blacklist[normalizeText(word)] = struct{}{}
	}
	for _, rule := range cfg.Categories {
		compiled := categoryRule{name: rule.Name}
		for _, phrase := range rule.Phrases {
			compiled.phrases = append(compiled.phrases, normalizeText(phrase))
		}
		c.categories = append(c.categories, compiled)
	}
	for _, word := range cfg.FoodWords {
		c.foodWords[normalizeText(word)] = struct{}{}
	}
	for _, word := range cfg.Determiners {
		c.determiners[normalizeText(word)] = struct{}{}
	}
	return c
}

// Whitelisted reports whether the title contains at least one allow-list
// phrase as a contiguous run of whitespace-delimited tokens. Phrases match as
// ordered token sequences, not substrings, so "village" alone never satisfies
// an entry like "fête de village".
func (c *Classifier) Whitelisted(title string) bool {
	tokens := strings.Fields(normalizeText(title))
	for _, phrase := range c.whitelist {
		for i := 0; i+len(phrase) <= len(tokens); i++ {
			if tokensEqual(tokens[i:i+len(phrase)], phrase) {
				return true
			}
		}
	}
	return false
}

// Blacklisted reports whether any single whitespace-delimited token of the
// title exactly equals a deny-list entry. Multi-word deny phrases are not
// matched as phrases; the asymmetry with the whitelist gate is inherited
// behavior and kept as-is.
func (c *Classifier) Blacklisted(title string) bool {
	for _, token := range strings.Fields(normalizeText(title)) {
		if _, banned := c.blacklist[token]; banned {
			return true
		}
	}
	return false
}

// Categorize derives the topical category from title and description. The
// "fête <determiner> <food-word>" pattern takes precedence over the phrase
// table; when nothing matches the generic category is returned.
func (c *Classifier) Categorize(title, description string) string {
	text := normalizeText(title + " " + description)

	words := strings.Fields(text)
	for i := 2; i < len(words); i++ {
		if _, food := c.foodWords[words[i]]; !food {
			continue
		}
		if _, det := c.determiners[words[i-1]]; !det {
			continue
		}
		if words[i-2] == "fete" {
			return CategoryCulinary
		}
	}

	for _, rule := range c.categories {
		for _, phrase := range rule.phrases {
			if strings.Contains(text, phrase) {
				return rule.name
			}
		}
	}
	return CategoryOther
}

func tokensEqual(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeText lowercases and strips diacritics so a single accented list
// entry covers both spellings seen in the feeds.
func normalizeText(s string) string {
	folded, _, err := transform.String(accentFolder, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
