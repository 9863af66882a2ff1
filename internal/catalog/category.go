package catalog

import "strings"

// Category is the coarse assessment classification used by the boost engine.
type Category string

const (
	CategoryPracticalCoding      Category = "practical_coding"
	CategoryTheoreticalKnowledge Category = "theoretical_knowledge"
	CategoryPersonality          Category = "personality"
	CategoryCognitive            Category = "cognitive"
	CategorySoftSkills           Category = "soft_skills"
	CategorySituational          Category = "situational"
	CategorySimulation           Category = "simulation"
	CategoryOther                Category = "other"
)

// Categories lists every valid category value.
func Categories() []Category {
	return []Category{
		CategoryPracticalCoding,
		CategoryTheoreticalKnowledge,
		CategoryPersonality,
		CategoryCognitive,
		CategorySoftSkills,
		CategorySituational,
		CategorySimulation,
		CategoryOther,
	}
}

// Label returns a human-readable name for the category.
func (c Category) Label() string {
	switch c {
	case CategoryPracticalCoding:
		return "Practical Coding"
	case CategoryTheoreticalKnowledge:
		return "Theoretical Knowledge"
	case CategoryPersonality:
		return "Personality & Behavior"
	case CategoryCognitive:
		return "Cognitive Ability"
	case CategorySoftSkills:
		return "Soft Skills"
	case CategorySituational:
		return "Situational Judgement"
	case CategorySimulation:
		return "Simulation"
	default:
		return "Other"
	}
}

// classificationRule matches a record by name/tag keywords or test type codes.
type classificationRule struct {
	category Category
	// keywords are substring-matched against the lowercased record name
	// and tags.
	keywords []string
	// codes are exact-matched against the record's test type codes. A rule
	// fires when either its keywords or its codes match.
	codes []string
}

// classificationRules is evaluated in order; the first matching rule wins.
// Precedence matters: hands-on coding products (Automata) also carry the K
// code, so practical_coding must come before theoretical_knowledge, and the
// specific product families (OPQ, Verify) before the generic code buckets.
var classificationRules = []classificationRule{
	{
		category: CategoryPracticalCoding,
		keywords: []string{"automata", "coding", "hands-on", "code review", "programming simulation"},
	},
	{
		category: CategoryPersonality,
		keywords: []string{"opq", "occupational personality", "personality", "behavioral", "behaviour", "motivation questionnaire"},
		codes:    []string{"P"},
	},
	{
		category: CategoryCognitive,
		keywords: []string{"verify", "cognitive", "numerical reasoning", "verbal reasoning", "inductive reasoning", "deductive", "aptitude", "general ability"},
		codes:    []string{"A"},
	},
	{
		category: CategorySituational,
		keywords: []string{"situational judgement", "situational judgment", "sjt", "scenarios"},
		codes:    []string{"B"},
	},
	{
		category: CategorySimulation,
		keywords: []string{"simulation", "contact center", "call center", "typing", "data entry"},
		codes:    []string{"S"},
	},
	{
		category: CategorySoftSkills,
		keywords: []string{"communication", "interpersonal", "collaboration", "teamwork", "listening", "writing skills"},
	},
	{
		category: CategoryTheoreticalKnowledge,
		keywords: []string{"knowledge", ".net", "java", "python", "sql", "javascript", "accounting", "excel", "aws", "azure", "selenium", "devops"},
		codes:    []string{"K"},
	},
}

// Classify derives the coarse category for a record. Classification is total:
// records matched by no rule land in CategoryOther, never empty.
func Classify(r *AssessmentRecord) Category {
	if r == nil {
		return CategoryOther
	}

	haystack := strings.ToLower(r.Name + " " + strings.Join(r.Tags, " "))

	codes := make(map[string]bool, len(r.TestTypeCodes))
	for _, code := range r.TestTypeCodes {
		codes[strings.ToUpper(strings.TrimSpace(code))] = true
	}

	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.category
			}
		}
		for _, code := range rule.codes {
			if codes[code] {
				return rule.category
			}
		}
	}

	return CategoryOther
}
