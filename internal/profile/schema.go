// Package profile forces loosely structured profile replies into a fixed
// schema of controlled vocabularies.
package profile

import "slices"

// Cardinality says how many vocabulary values a field may hold.
type Cardinality int

const (
	// Single fields hold exactly one value.
	Single Cardinality = iota
	// Multi fields hold any number of values.
	Multi
)

func (c Cardinality) String() string {
	if c == Multi {
		return "multi-select"
	}
	return "single-select"
}

// Unknown is the sentinel used by single-select fields.
const Unknown = "Unknown"

// Field is one profile attribute and its controlled vocabulary.
type Field struct {
	Name        string
	Description string
	Sentinel    string // Single-select default; empty means the last vocabulary entry
	Vocabulary  []string
	Cardinality Cardinality
}

// Allows reports whether v is in the field's vocabulary.
func (f Field) Allows(v string) bool {
	return slices.Contains(f.Vocabulary, v)
}

// Fallback is the value a single-select field takes when the reply is unusable.
func (f Field) Fallback() string {
	if f.Sentinel != "" {
		return f.Sentinel
	}
	if len(f.Vocabulary) == 0 {
		return ""
	}
	return f.Vocabulary[len(f.Vocabulary)-1]
}

// Schema is the ordered set of profile fields.
type Schema struct {
	Fields []Field
}

// Field looks a field up by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// DefaultSchema returns the profile fields requested from the inference service.
func DefaultSchema() Schema {
	return Schema{Fields: []Field{
		{
			Name:        "age",
			Description: "estimated age bracket",
			Cardinality: Single,
			Sentinel:    Unknown,
			Vocabulary:  []string{"Under 18", "18-24", "25-34", "35-44", "45-54", "55-64", "65+", Unknown},
		},
		{
			Name:        "gender",
			Description: "most likely gender",
			Cardinality: Single,
			Sentinel:    Unknown,
			Vocabulary:  []string{"Male", "Female", "Non-binary", Unknown},
		},
		{
			Name:        "profession",
			Description: "most likely occupation",
			Cardinality: Single,
			Sentinel:    Unknown,
			Vocabulary: []string{
				"Student", "Engineer", "Software Developer", "Healthcare Professional",
				"Educator", "Creative Professional", "Business Professional", "Skilled Trades",
				"Retail / Service", "Homemaker", "Self-employed", "Retired", Unknown,
			},
		},
		{
			Name:        "income_level",
			Description: "spending power relative to the general population",
			Cardinality: Single,
			Sentinel:    Unknown,
			Vocabulary:  []string{"Low", "Lower-middle", "Middle", "Upper-middle", "High", Unknown},
		},
		{
			Name:        "family_status",
			Description: "household situation",
			Cardinality: Single,
			Sentinel:    Unknown,
			Vocabulary: []string{
				"Single", "Couple", "Family with young children", "Family with teenagers",
				"Empty nester", Unknown,
			},
		},
		{
			Name:        "lifestyle",
			Description: "lifestyle traits",
			Cardinality: Multi,
			Vocabulary: []string{
				"Active", "Outdoorsy", "Homebody", "Urban", "Suburban", "Rural",
				"Health-conscious", "Eco-conscious", "Tech-savvy", "Pet owner", "Parent",
				"Frequent traveler", "Budget-conscious", "Luxury-oriented",
			},
		},
		{
			Name:        "personality",
			Description: "personality traits",
			Cardinality: Multi,
			Vocabulary: []string{
				"Practical", "Creative", "Curious", "Organized", "Adventurous", "Social",
				"Introverted", "Detail-oriented", "Spontaneous", "Nurturing",
			},
		},
		{
			Name:        "hobbies",
			Description: "hobbies and interests",
			Cardinality: Multi,
			Vocabulary: []string{
				"Reading", "Gaming", "Cooking", "Baking", "Gardening", "Fitness", "Running",
				"Cycling", "Hiking", "Camping", "Photography", "Music", "Arts & Crafts",
				"DIY / Home improvement", "Travel", "Sports", "Fashion", "Beauty", "Collecting",
				"Technology", "Movies & TV", "Pets",
			},
		},
		{
			Name:        "shopping_style",
			Description: "dominant shopping behaviour",
			Cardinality: Single,
			Sentinel:    Unknown,
			Vocabulary: []string{
				"Bargain hunter", "Brand loyal", "Impulse buyer", "Research-driven", "Bulk buyer",
				"Subscription-oriented", "Convenience-first", "Quality-focused", Unknown,
			},
		},
	}}
}
